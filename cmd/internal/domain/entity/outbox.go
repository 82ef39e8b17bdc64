package entity

// Outbox status values. `sent` is terminal; a re-send of a sent entry
// always produces a fresh row.
const (
	OutboxStatusQueued = "queued"
	OutboxStatusSent   = "sent"
	OutboxStatusFailed = "failed"
)

type OutboxEntry struct {
	ID         int    `gorm:"primaryKey"`
	EventID    int    `gorm:"not null;index"` // References: calendar_events(id)
	Channel    string `gorm:"not null;default:webhook"`
	Subject    string `gorm:"not null"`
	Recipients string `gorm:"not null"` // JSON array of emails
	Payload    string `gorm:"not null"`
	Status     string `gorm:"not null;default:queued"`
	CreatedAt  int64  `gorm:"not null"`

	MessageID *string
	Error     *string
	SentAt    *int64
}
