package entity

// Audit actions shared by both trails.
const (
	AuditActionCreated   = "created"
	AuditActionUpdated   = "updated"
	AuditActionCancelled = "cancelled"
	AuditActionConfirmed = "confirmed"
	AuditActionSubmitted = "submitted"
	AuditActionApproved  = "approved"
	AuditActionDenied    = "denied"
)

// CalendarAuditEntry is append-only and written in the same transaction
// as the event mutation it records.
type CalendarAuditEntry struct {
	ID        int    `gorm:"primaryKey"`
	EventID   int    `gorm:"not null;index"` // References: calendar_events(id)
	ActorID   string `gorm:"not null"`
	ActorName string `gorm:"not null"`
	Action    string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null"`

	BeforeState *string // JSON snapshot
	AfterState  *string
	Notes       *string
}

// PTOAuditEntry mirrors CalendarAuditEntry for the PTO trail.
type PTOAuditEntry struct {
	ID        int    `gorm:"primaryKey"`
	RequestID int    `gorm:"not null;index"` // References: pto_requests(id)
	ActorID   string `gorm:"not null"`
	ActorName string `gorm:"not null"`
	Action    string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null"`

	BeforeState *string
	AfterState  *string
	Notes       *string
}
