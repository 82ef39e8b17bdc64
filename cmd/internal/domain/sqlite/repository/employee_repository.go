package repository

import (
	"errors"
	"hrdash/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultEmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *DefaultEmployeeRepository {
	return &DefaultEmployeeRepository{db: db}
}

func (r *DefaultEmployeeRepository) FindByID(id int) (*entity.Employee, error) {
	var emp entity.Employee
	err := r.db.First(&emp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &emp, err
}

func (r *DefaultEmployeeRepository) FindByEmail(email string) (*entity.Employee, error) {
	var emp entity.Employee
	err := r.db.Where("email = ?", email).First(&emp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &emp, err
}

func (r *DefaultEmployeeRepository) FindAll() ([]*entity.Employee, error) {
	var emps []*entity.Employee
	err := r.db.Order("name asc").Find(&emps).Error
	return emps, err
}

func (r *DefaultEmployeeRepository) Save(emp *entity.Employee) error {
	return r.db.Save(emp).Error
}
