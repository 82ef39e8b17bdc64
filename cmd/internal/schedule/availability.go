package schedule

import (
	"hrdash/cmd/internal/domain/entity"
	"time"
)

// BusyEvent is the slice of an existing calendar event the checker needs:
// its span, its status and who is attending.
type BusyEvent struct {
	Title          string
	Start          time.Time
	End            time.Time
	Status         string
	AttendeeEmails []string
}

type AttendeeAvailability struct {
	Email          string
	Available      bool
	ConflictReason string
}

type SlotAvailability struct {
	Slot           Slot
	Attendees      []AttendeeAvailability
	AvailableCount int
}

// Overlaps reports whether two half-open intervals intersect: each must
// start strictly before the other ends. Back-to-back intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// CheckAvailability intersects each candidate slot with the existing events
// and reports, per requested attendee, whether they are free. Cancelled and
// denied events never make anyone busy. All-day events occupy their full
// span like any other event. O(slots x events); fine at this scale.
func CheckAvailability(slots []Slot, events []BusyEvent, attendeeEmails []string) []SlotAvailability {
	active := make([]BusyEvent, 0, len(events))
	for _, ev := range events {
		if ev.Status == entity.EventStatusCancelled || ev.Status == "denied" {
			continue
		}
		active = append(active, ev)
	}

	result := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		busy := map[string]string{} // email -> conflict reason
		for _, ev := range active {
			if !Overlaps(slot.Start, slot.End, ev.Start, ev.End) {
				continue
			}
			reason := ev.Title
			if reason == "" {
				reason = "Busy"
			}
			for _, email := range ev.AttendeeEmails {
				if _, seen := busy[email]; !seen {
					busy[email] = reason
				}
			}
		}

		sa := SlotAvailability{Slot: slot, Attendees: make([]AttendeeAvailability, 0, len(attendeeEmails))}
		for _, email := range attendeeEmails {
			reason, taken := busy[email]
			sa.Attendees = append(sa.Attendees, AttendeeAvailability{
				Email:          email,
				Available:      !taken,
				ConflictReason: reason,
			})
			if !taken {
				sa.AvailableCount++
			}
		}
		result = append(result, sa)
	}
	return result
}
