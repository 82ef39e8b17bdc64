package schedule

import (
	"hrdash/cmd/internal/domain/entity"
	"testing"
	"time"
)

func weekdayHours() []entity.BusinessHours {
	hours := make([]entity.BusinessHours, 0, 7)
	for dow := 0; dow < 7; dow++ {
		hours = append(hours, entity.BusinessHours{
			DayOfWeek:    dow,
			StartTime:    "09:00",
			EndTime:      "17:00",
			IsWorkingDay: dow >= 1 && dow <= 5,
		})
	}
	return hours
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateSlots(t *testing.T) {
	hours := weekdayHours()

	t.Run("SingleTuesday30Minutes", func(t *testing.T) {
		// 2026-03-03 is a Tuesday
		day := date(2026, time.March, 3)
		slots := GenerateSlots(day, day, 30, hours)

		if len(slots) != 16 {
			t.Fatalf("expected 16 slots, got %d", len(slots))
		}
		first := slots[0]
		if got := first.Start.Format("15:04"); got != "09:00" {
			t.Errorf("expected first slot at 09:00, got %s", got)
		}
		last := slots[len(slots)-1]
		if got := last.Start.Format("15:04"); got != "16:30" {
			t.Errorf("expected last slot at 16:30, got %s", got)
		}
		if got := last.End.Format("15:04"); got != "17:00" {
			t.Errorf("expected last slot to end at 17:00, got %s", got)
		}
	})

	t.Run("NeverOnWeekends", func(t *testing.T) {
		// Friday 2026-03-06 through Monday 2026-03-09
		slots := GenerateSlots(date(2026, time.March, 6), date(2026, time.March, 9), 60, hours)

		if len(slots) == 0 {
			t.Fatal("expected slots on the surrounding weekdays")
		}
		for _, slot := range slots {
			switch slot.Start.Weekday() {
			case time.Saturday, time.Sunday:
				t.Errorf("slot generated on weekend: %v", slot.Start)
			}
		}
	})

	t.Run("SlotsFitBeforeClosing", func(t *testing.T) {
		slots := GenerateSlots(date(2026, time.March, 2), date(2026, time.March, 6), 60, hours)

		for _, slot := range slots {
			closing := time.Date(slot.Start.Year(), slot.Start.Month(), slot.Start.Day(), 17, 0, 0, 0, time.UTC)
			if slot.End.After(closing) {
				t.Errorf("slot %v-%v runs past closing", slot.Start, slot.End)
			}
			if slot.Start.Day() != slot.End.Add(-time.Nanosecond).Day() {
				t.Errorf("slot %v-%v spans a day boundary", slot.Start, slot.End)
			}
		}
	})

	t.Run("AscendingOrder", func(t *testing.T) {
		slots := GenerateSlots(date(2026, time.March, 2), date(2026, time.March, 6), 45, hours)

		for i := 1; i < len(slots); i++ {
			if !slots[i-1].Start.Before(slots[i].Start) {
				t.Fatalf("slots out of order at %d: %v then %v", i, slots[i-1].Start, slots[i].Start)
			}
		}
	})

	t.Run("DurationLongerThanDay", func(t *testing.T) {
		day := date(2026, time.March, 3)
		if slots := GenerateSlots(day, day, 9*60, hours); len(slots) != 0 {
			t.Errorf("expected no slots for a 9h duration in an 8h day, got %d", len(slots))
		}
	})

	t.Run("NonWorkingDayRowSkipped", func(t *testing.T) {
		custom := weekdayHours()
		custom[2].IsWorkingDay = false // Tuesday off
		day := date(2026, time.March, 3)
		if slots := GenerateSlots(day, day, 30, custom); len(slots) != 0 {
			t.Errorf("expected no slots on a non-working day, got %d", len(slots))
		}
	})

	t.Run("MissingDayRowSkipped", func(t *testing.T) {
		onlyMonday := []entity.BusinessHours{{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsWorkingDay: true}}
		slots := GenerateSlots(date(2026, time.March, 2), date(2026, time.March, 6), 30, onlyMonday)
		for _, slot := range slots {
			if slot.Start.Weekday() != time.Monday {
				t.Errorf("slot outside configured days: %v", slot.Start)
			}
		}
	})

	t.Run("ZeroDuration", func(t *testing.T) {
		day := date(2026, time.March, 3)
		if slots := GenerateSlots(day, day, 0, weekdayHours()); slots != nil {
			t.Errorf("expected nil for zero duration, got %d slots", len(slots))
		}
	})
}
