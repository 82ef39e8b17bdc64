package repository

import (
	"hrdash/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultBusinessHoursRepository struct {
	db *gorm.DB
}

func NewBusinessHoursRepository(db *gorm.DB) *DefaultBusinessHoursRepository {
	return &DefaultBusinessHoursRepository{db: db}
}

func (r *DefaultBusinessHoursRepository) FindAll() ([]entity.BusinessHours, error) {
	var hours []entity.BusinessHours
	err := r.db.Order("day_of_week asc").Find(&hours).Error
	return hours, err
}
