package entity

type Employee struct {
	ID         int     `gorm:"primaryKey"`
	Name       string  `gorm:"not null"`
	Email      string  `gorm:"not null;uniqueIndex"`
	Department string  `gorm:"not null"`
	PTOBalance float64 `gorm:"not null"` // in days; only the PTO ledger writes this
	CreatedAt  int64   `gorm:"not null"`
	UpdatedAt  int64   `gorm:"not null"`

	ManagerID *int // References: employees(id)
}
