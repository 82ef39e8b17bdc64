package schedule

import (
	"hrdash/cmd/internal/domain/entity"
	"hrdash/cmd/internal/utils"
	"time"
)

// Slot is a candidate meeting window [Start, End), independent of any
// attendee's busy schedule.
type Slot struct {
	Start time.Time
	End   time.Time
}

// slots are generated on a fixed half-hour walk through each working day
const strideMinutes = 30

// GenerateSlots walks every calendar day from startDate to endDate inclusive
// and emits the candidate slots that fit inside that day's business hours.
// Days with no matching row, or with IsWorkingDay false, produce nothing.
// The result is ordered ascending by start time and no slot crosses a day
// boundary. The function is pure.
func GenerateSlots(startDate, endDate time.Time, durationMinutes int, hours []entity.BusinessHours) []Slot {
	if durationMinutes <= 0 {
		return nil
	}

	byDay := make(map[int]entity.BusinessHours, len(hours))
	for _, h := range hours {
		byDay[h.DayOfWeek] = h
	}

	start := midnightUTC(startDate)
	end := midnightUTC(endDate)
	duration := time.Duration(durationMinutes) * time.Minute
	stride := strideMinutes * time.Minute

	var slots []Slot
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		row, ok := byDay[int(day.Weekday())]
		if !ok || !row.IsWorkingDay {
			continue
		}

		open, err := atClock(day, row.StartTime)
		if err != nil {
			continue
		}
		close, err := atClock(day, row.EndTime)
		if err != nil || !open.Before(close) {
			continue
		}

		for t := open; !t.Add(duration).After(close); t = t.Add(stride) {
			slots = append(slots, Slot{Start: t, End: t.Add(duration)})
		}
	}
	return slots
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func atClock(day time.Time, clock string) (time.Time, error) {
	hour, minute, err := utils.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}
