package repository

import (
	"errors"
	"hrdash/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultOutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *DefaultOutboxRepository {
	return &DefaultOutboxRepository{db: db}
}

func (r *DefaultOutboxRepository) Create(entry *entity.OutboxEntry) error {
	return r.db.Create(entry).Error
}

func (r *DefaultOutboxRepository) FindByID(id int) (*entity.OutboxEntry, error) {
	var entry entity.OutboxEntry
	err := r.db.First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &entry, err
}

func (r *DefaultOutboxRepository) FindByEvent(eventID int) ([]*entity.OutboxEntry, error) {
	var entries []*entity.OutboxEntry
	err := r.db.Where("event_id = ?", eventID).
		Order("created_at desc, id desc").
		Find(&entries).Error
	return entries, err
}

func (r *DefaultOutboxRepository) MarkSent(id int, messageID string, sentAt int64) error {
	return r.db.Model(&entity.OutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     entity.OutboxStatusSent,
			"message_id": messageID,
			"error":      nil,
			"sent_at":    sentAt,
		}).Error
}

func (r *DefaultOutboxRepository) MarkFailed(id int, errMsg string) error {
	return r.db.Model(&entity.OutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": entity.OutboxStatusFailed,
			"error":  errMsg,
		}).Error
}

// Requeue resets a failed entry to queued for an in-place retry. Guarded on
// the current status so two concurrent resends race for a single delivery.
func (r *DefaultOutboxRepository) Requeue(id int) error {
	res := r.db.Model(&entity.OutboxEntry{}).
		Where("id = ? AND status = ?", id, entity.OutboxStatusFailed).
		Updates(map[string]any{"status": entity.OutboxStatusQueued, "error": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
