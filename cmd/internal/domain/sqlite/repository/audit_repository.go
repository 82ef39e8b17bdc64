package repository

import (
	"hrdash/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

// DefaultAuditRepository is the read side of both audit trails; entries are
// appended inside the mutation transactions, never through this type.
type DefaultAuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *DefaultAuditRepository {
	return &DefaultAuditRepository{db: db}
}

func (r *DefaultAuditRepository) ListCalendar(eventID int) ([]*entity.CalendarAuditEntry, error) {
	var entries []*entity.CalendarAuditEntry
	err := r.db.Where("event_id = ?", eventID).
		Order("created_at asc, id asc").
		Find(&entries).Error
	return entries, err
}

func (r *DefaultAuditRepository) ListPTO(requestID int) ([]*entity.PTOAuditEntry, error) {
	var entries []*entity.PTOAuditEntry
	err := r.db.Where("request_id = ?", requestID).
		Order("created_at asc, id asc").
		Find(&entries).Error
	return entries, err
}
