package entity

// Event status values. Cancellation is terminal; rows are never hard-deleted.
const (
	EventStatusScheduled = "scheduled"
	EventStatusApproved  = "approved"
	EventStatusCancelled = "cancelled"
)

// Event type values.
const (
	EventTypeInterview = "interview"
	EventTypePTO       = "pto"
	EventTypeHoliday   = "holiday"
	EventTypeOther     = "other"
)

type CalendarEvent struct {
	ID        int    `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	Type      string `gorm:"not null;default:other"`
	StartsAt  int64  `gorm:"not null;index"`
	EndsAt    int64  `gorm:"not null"`
	AllDay    bool   `gorm:"not null"`
	Status    string `gorm:"not null;default:scheduled"`
	CreatedAt int64  `gorm:"not null"`
	UpdatedAt int64  `gorm:"not null"`

	Description      *string
	Location         *string
	OrganizerID      *string
	GoogleMeetURL    *string
	GoogleCalendarID *string
	Meta             *string // opaque JSON bag

	// Relations
	Attendees []Attendee `gorm:"foreignKey:EventID;references:ID"`
}

// Attendee type values.
const (
	AttendeeTypeEmployee  = "employee"
	AttendeeTypeCandidate = "candidate"
	AttendeeTypeExternal  = "external"
)

type Attendee struct {
	ID           int    `gorm:"primaryKey"`
	EventID      int    `gorm:"not null;index"` // References: calendar_events(id)
	AttendeeType string `gorm:"not null;default:employee"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"not null"`

	AttendeeID     *string
	ResponseStatus *string
}
