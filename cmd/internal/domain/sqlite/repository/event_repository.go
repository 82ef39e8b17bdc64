package repository

import (
	"errors"
	"hrdash/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

// ErrStaleStatus is returned when a conditional status transition matched no
// row: the record moved underneath the caller.
var ErrStaleStatus = errors.New("status changed concurrently")

type DefaultEventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *DefaultEventRepository {
	return &DefaultEventRepository{db: db}
}

func (r *DefaultEventRepository) FindByID(id int) (*entity.CalendarEvent, error) {
	var event entity.CalendarEvent
	err := r.db.Preload("Attendees", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &event, err
}

// FindRange returns every event overlapping [from, to), any status,
// for calendar listings.
func (r *DefaultEventRepository) FindRange(from, to int64) ([]*entity.CalendarEvent, error) {
	var events []*entity.CalendarEvent
	err := r.db.Preload("Attendees").
		Where("starts_at < ?", to).
		Where("ends_at > ?", from).
		Order("starts_at asc").
		Find(&events).Error
	return events, err
}

// FindOverlapping returns the non-cancelled events overlapping [from, to),
// the busy universe for availability checks.
func (r *DefaultEventRepository) FindOverlapping(from, to int64) ([]*entity.CalendarEvent, error) {
	var events []*entity.CalendarEvent
	err := r.db.Preload("Attendees").
		Where("status <> ?", entity.EventStatusCancelled).
		Where("starts_at < ?", to).
		Where("ends_at > ?", from).
		Order("starts_at asc").
		Find(&events).Error
	return events, err
}

func (r *DefaultEventRepository) CreateWithAudit(event *entity.CalendarEvent, audit *entity.CalendarAuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		audit.EventID = event.ID
		return tx.Create(audit).Error
	})
}

// UpdateWithAudit persists a patched event. When replaceAttendees is set the
// existing attendee rows are dropped and reinserted from the supplied list;
// partial attendee updates are not a thing, callers resend the full set.
func (r *DefaultEventRepository) UpdateWithAudit(event *entity.CalendarEvent, replaceAttendees bool, attendees []entity.Attendee, audit *entity.CalendarAuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Attendees").Save(event).Error; err != nil {
			return err
		}

		if replaceAttendees {
			if err := tx.Where("event_id = ?", event.ID).Delete(&entity.Attendee{}).Error; err != nil {
				return err
			}
			for i := range attendees {
				attendees[i].ID = 0
				attendees[i].EventID = event.ID
			}
			if len(attendees) > 0 {
				if err := tx.Create(&attendees).Error; err != nil {
					return err
				}
			}
			event.Attendees = attendees
		}

		audit.EventID = event.ID
		return tx.Create(audit).Error
	})
}

// TransitionStatus flips an event's status only when its current status is in
// allowedFrom, and appends the audit entry in the same transaction. Returns
// ErrStaleStatus when the guard matched nothing.
func (r *DefaultEventRepository) TransitionStatus(id int, allowedFrom []string, to string, now int64, audit *entity.CalendarAuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.CalendarEvent{}).
			Where("id = ? AND status IN ?", id, allowedFrom).
			Updates(map[string]any{"status": to, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		audit.EventID = id
		return tx.Create(audit).Error
	})
}
