package entity

// PTO request status values. `rejected` and `cancelled` are terminal.
const (
	PTOStatusPending   = "pending"
	PTOStatusApproved  = "approved"
	PTOStatusRejected  = "rejected"
	PTOStatusCancelled = "cancelled"
)

type PTORequest struct {
	ID           int    `gorm:"primaryKey"`
	EmployeeID   int    `gorm:"not null;index"` // References: employees(id)
	EmployeeName string `gorm:"not null"`
	StartDate    string `gorm:"not null"` // "2006-01-02"
	EndDate      string `gorm:"not null"`
	IsFullDay    bool   `gorm:"not null"`
	Status       string `gorm:"not null;default:pending"`
	ManagerID    int    `gorm:"not null"` // References: employees(id)
	Department   string `gorm:"not null"`
	CreatedAt    int64  `gorm:"not null"`
	UpdatedAt    int64  `gorm:"not null"`

	// DaysRequested is counted in business days, or in eighths of a day
	// for partial-day requests (8-hour working day).
	DaysRequested float64 `gorm:"not null"`
	// BalanceBefore/BalanceAfter snapshot the employee balance at submission.
	// BalanceAfter is informational until the request is approved.
	BalanceBefore float64 `gorm:"not null"`
	BalanceAfter  float64 `gorm:"not null"`

	StartTime       *string // "15:04", partial-day only
	EndTime         *string
	Reason          *string
	ManagerComment  *string
	CalendarEventID *int // References: calendar_events(id), set on approval
}
