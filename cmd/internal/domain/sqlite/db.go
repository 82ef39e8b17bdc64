package sqlite

import (
	"hrdash/cmd/internal/domain/entity"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Init(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&entity.Employee{},
		&entity.BusinessHours{},
		&entity.CalendarEvent{},
		&entity.Attendee{},
		&entity.PTORequest{},
		&entity.CalendarAuditEntry{},
		&entity.PTOAuditEntry{},
		&entity.OutboxEntry{},
	)
	if err != nil {
		return nil, err
	}

	if err = seedBusinessHours(db); err != nil {
		return nil, err
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// seedBusinessHours inserts the default Mon-Fri 09:00-17:00 week when the
// table is empty. The scheduling engine only ever reads these rows.
func seedBusinessHours(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.BusinessHours{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	week := make([]entity.BusinessHours, 0, 7)
	for dow := 0; dow < 7; dow++ {
		working := dow >= 1 && dow <= 5
		week = append(week, entity.BusinessHours{
			DayOfWeek:    dow,
			StartTime:    "09:00",
			EndTime:      "17:00",
			IsWorkingDay: working,
		})
	}
	return db.Create(&week).Error
}
