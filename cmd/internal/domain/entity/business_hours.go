package entity

// BusinessHours is static reference data, one row per day of week.
// The scheduling engine only ever reads it.
type BusinessHours struct {
	ID           int    `gorm:"primaryKey"`
	DayOfWeek    int    `gorm:"not null;uniqueIndex"` // 0 = Sunday .. 6 = Saturday
	StartTime    string `gorm:"not null"`             // "09:00"
	EndTime      string `gorm:"not null"`             // "17:00"
	IsWorkingDay bool   `gorm:"not null"`
}
