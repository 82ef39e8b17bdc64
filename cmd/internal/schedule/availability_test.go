package schedule

import (
	"hrdash/cmd/internal/domain/entity"
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2026, time.March, 3, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	t.Run("Symmetry", func(t *testing.T) {
		cases := []struct {
			name           string
			aStart, aEnd   time.Time
			bStart, bEnd   time.Time
			expectsOverlap bool
		}{
			{"nested", at(10, 0), at(11, 0), at(10, 15), at(10, 45), true},
			{"partial", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
			{"disjoint", at(9, 0), at(10, 0), at(14, 0), at(15, 0), false},
			{"back-to-back", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				ab := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd)
				ba := Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd)
				if ab != ba {
					t.Errorf("overlap is not symmetric: ab=%v ba=%v", ab, ba)
				}
				if ab != tc.expectsOverlap {
					t.Errorf("expected overlap=%v, got %v", tc.expectsOverlap, ab)
				}
			})
		}
	})
}

func TestCheckAvailability(t *testing.T) {
	t.Run("BusyAttendeeConflicts", func(t *testing.T) {
		// a@x.com and b@x.com in a standup 10:00-11:00; slot 10:30-11:00
		events := []BusyEvent{{
			Title:          "Standup",
			Start:          at(10, 0),
			End:            at(11, 0),
			Status:         entity.EventStatusScheduled,
			AttendeeEmails: []string{"a@x.com", "b@x.com"},
		}}
		slots := []Slot{{Start: at(10, 30), End: at(11, 0)}}

		result := CheckAvailability(slots, events, []string{"a@x.com", "c@x.com"})
		if len(result) != 1 {
			t.Fatalf("expected 1 slot result, got %d", len(result))
		}

		sa := result[0]
		if sa.AvailableCount != 1 {
			t.Errorf("expected 1 available attendee, got %d", sa.AvailableCount)
		}
		if sa.Attendees[0].Email != "a@x.com" || sa.Attendees[0].Available {
			t.Errorf("expected a@x.com unavailable, got %+v", sa.Attendees[0])
		}
		if sa.Attendees[0].ConflictReason != "Standup" {
			t.Errorf("expected conflict reason 'Standup', got %q", sa.Attendees[0].ConflictReason)
		}
		if sa.Attendees[1].Email != "c@x.com" || !sa.Attendees[1].Available {
			t.Errorf("expected c@x.com available, got %+v", sa.Attendees[1])
		}
	})

	t.Run("AdjacentSlotDoesNotConflict", func(t *testing.T) {
		events := []BusyEvent{{
			Title:          "Standup",
			Start:          at(10, 0),
			End:            at(11, 0),
			Status:         entity.EventStatusScheduled,
			AttendeeEmails: []string{"a@x.com"},
		}}
		slots := []Slot{{Start: at(11, 0), End: at(11, 30)}}

		result := CheckAvailability(slots, events, []string{"a@x.com"})
		if !result[0].Attendees[0].Available {
			t.Error("slot starting exactly at event end must not conflict")
		}
	})

	t.Run("CancelledAndDeniedExcluded", func(t *testing.T) {
		events := []BusyEvent{
			{Title: "Old interview", Start: at(10, 0), End: at(11, 0), Status: entity.EventStatusCancelled, AttendeeEmails: []string{"a@x.com"}},
			{Title: "Denied leave", Start: at(10, 0), End: at(11, 0), Status: "denied", AttendeeEmails: []string{"a@x.com"}},
		}
		slots := []Slot{{Start: at(10, 0), End: at(11, 0)}}

		result := CheckAvailability(slots, events, []string{"a@x.com"})
		if !result[0].Attendees[0].Available {
			t.Error("cancelled and denied events must not make attendees busy")
		}
	})

	t.Run("NoEventsMeansEveryoneFree", func(t *testing.T) {
		slots := []Slot{
			{Start: at(9, 0), End: at(10, 0)},
			{Start: at(10, 0), End: at(11, 0)},
		}
		result := CheckAvailability(slots, nil, []string{"a@x.com", "b@x.com"})
		for _, sa := range result {
			if sa.AvailableCount != 2 {
				t.Errorf("expected everyone free, got %d/2 at %v", sa.AvailableCount, sa.Slot.Start)
			}
		}
	})

	t.Run("UntitledEventReportsBusy", func(t *testing.T) {
		events := []BusyEvent{{
			Start:          at(10, 0),
			End:            at(11, 0),
			Status:         entity.EventStatusApproved,
			AttendeeEmails: []string{"a@x.com"},
		}}
		slots := []Slot{{Start: at(10, 0), End: at(10, 30)}}

		result := CheckAvailability(slots, events, []string{"a@x.com"})
		if got := result[0].Attendees[0].ConflictReason; got != "Busy" {
			t.Errorf("expected fallback reason 'Busy', got %q", got)
		}
	})

	t.Run("AllDayEventOccupiesFullSpan", func(t *testing.T) {
		dayStart := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
		dayEnd := dayStart.Add(23*time.Hour + 59*time.Minute)
		events := []BusyEvent{{
			Title:          "PTO: Dana",
			Start:          dayStart,
			End:            dayEnd,
			Status:         entity.EventStatusApproved,
			AttendeeEmails: []string{"dana@x.com"},
		}}
		slots := []Slot{
			{Start: at(9, 0), End: at(9, 30)},
			{Start: at(16, 30), End: at(17, 0)},
		}

		result := CheckAvailability(slots, events, []string{"dana@x.com"})
		for _, sa := range result {
			if sa.Attendees[0].Available {
				t.Errorf("all-day event must block slot at %v", sa.Slot.Start)
			}
		}
	})
}
