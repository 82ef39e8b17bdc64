package service

import (
	"hrdash/cmd/internal/domain/entity"
	"hrdash/cmd/internal/domain/sqlite"
	"hrdash/cmd/internal/utils"
	"hrdash/cmd/internal/utils/validators"
	"testing"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.Init(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("iso8601", validators.IsIso8601)
	_ = v.RegisterValidation("isodate", validators.IsIsoDate)
	_ = v.RegisterValidation("hourminute", validators.IsHourMinute)
	return v
}

func createEmployee(t *testing.T, db *gorm.DB, name, email, department string, balance float64, managerID *int) *entity.Employee {
	t.Helper()
	now := utils.NowUTC()
	emp := &entity.Employee{
		Name:       name,
		Email:      email,
		Department: department,
		PTOBalance: balance,
		ManagerID:  managerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(emp).Error; err != nil {
		t.Fatalf("failed to seed employee %s: %v", email, err)
	}
	return emp
}

func actorFor(emp *entity.Employee) *utils.TokenData {
	return &utils.TokenData{Sub: emp.Email, Email: emp.Email, Name: emp.Name}
}

func fetchEmployee(t *testing.T, db *gorm.DB, id int) *entity.Employee {
	t.Helper()
	var emp entity.Employee
	if err := db.First(&emp, id).Error; err != nil {
		t.Fatalf("failed to fetch employee %d: %v", id, err)
	}
	return &emp
}

func fetchEvent(t *testing.T, db *gorm.DB, id int) *entity.CalendarEvent {
	t.Helper()
	var event entity.CalendarEvent
	if err := db.Preload("Attendees").First(&event, id).Error; err != nil {
		t.Fatalf("failed to fetch event %d: %v", id, err)
	}
	return &event
}
