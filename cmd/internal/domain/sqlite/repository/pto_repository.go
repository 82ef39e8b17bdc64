package repository

import (
	"errors"
	"hrdash/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

// ErrInsufficientBalance is returned when the conditional balance decrement
// found less balance than the request consumes.
var ErrInsufficientBalance = errors.New("employee balance below requested days")

type DefaultPTORepository struct {
	db *gorm.DB
}

func NewPTORepository(db *gorm.DB) *DefaultPTORepository {
	return &DefaultPTORepository{db: db}
}

func (r *DefaultPTORepository) FindByID(id int) (*entity.PTORequest, error) {
	var req entity.PTORequest
	err := r.db.First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &req, err
}

// List filters by employee, manager and status; zero values mean "any".
func (r *DefaultPTORepository) List(employeeID, managerID int, status string) ([]*entity.PTORequest, error) {
	q := r.db.Model(&entity.PTORequest{})
	if employeeID != 0 {
		q = q.Where("employee_id = ?", employeeID)
	}
	if managerID != 0 {
		q = q.Where("manager_id = ?", managerID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var reqs []*entity.PTORequest
	err := q.Order("created_at desc").Find(&reqs).Error
	return reqs, err
}

func (r *DefaultPTORepository) SubmitWithAudit(req *entity.PTORequest, audit *entity.PTOAuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		audit.RequestID = req.ID
		return tx.Create(audit).Error
	})
}

// Approve applies the whole approval as one unit: flip the request out of
// pending, take the days off the employee balance, create the pto calendar
// event and write both audit trails. Either everything lands or nothing does.
// Both guarded updates are conditional, so a concurrent approval loses with
// ErrStaleStatus instead of decrementing twice.
func (r *DefaultPTORepository) Approve(req *entity.PTORequest, comment *string, now int64, event *entity.CalendarEvent, reqAudit *entity.PTOAuditEntry, eventAudit *entity.CalendarAuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.PTORequest{}).
			Where("id = ? AND status = ?", req.ID, entity.PTOStatusPending).
			Updates(map[string]any{
				"status":          entity.PTOStatusApproved,
				"manager_comment": comment,
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		res = tx.Model(&entity.Employee{}).
			Where("id = ? AND pto_balance >= ?", req.EmployeeID, req.DaysRequested).
			Updates(map[string]any{
				"pto_balance": gorm.Expr("pto_balance - ?", req.DaysRequested),
				"updated_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		if err := tx.Create(event).Error; err != nil {
			return err
		}
		err := tx.Model(&entity.PTORequest{}).
			Where("id = ?", req.ID).
			Update("calendar_event_id", event.ID).Error
		if err != nil {
			return err
		}

		eventAudit.EventID = event.ID
		if err := tx.Create(eventAudit).Error; err != nil {
			return err
		}
		reqAudit.RequestID = req.ID
		return tx.Create(reqAudit).Error
	})
}

// Reject flips pending to rejected. The balance was never touched.
func (r *DefaultPTORepository) Reject(id int, comment *string, now int64, audit *entity.PTOAuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.PTORequest{}).
			Where("id = ? AND status = ?", id, entity.PTOStatusPending).
			Updates(map[string]any{
				"status":          entity.PTOStatusRejected,
				"manager_comment": comment,
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		audit.RequestID = id
		return tx.Create(audit).Error
	})
}

// Cancel flips the request out of fromStatus. Cancelling an approved request
// also restores the employee balance and soft-deletes the linked event; the
// event guard tolerates an already-cancelled event.
func (r *DefaultPTORepository) Cancel(req *entity.PTORequest, fromStatus string, now int64, audit *entity.PTOAuditEntry, eventAudit *entity.CalendarAuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.PTORequest{}).
			Where("id = ? AND status = ?", req.ID, fromStatus).
			Updates(map[string]any{"status": entity.PTOStatusCancelled, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		audit.RequestID = req.ID
		if err := tx.Create(audit).Error; err != nil {
			return err
		}

		if fromStatus != entity.PTOStatusApproved {
			return nil
		}

		res = tx.Model(&entity.Employee{}).
			Where("id = ?", req.EmployeeID).
			Updates(map[string]any{
				"pto_balance": gorm.Expr("pto_balance + ?", req.DaysRequested),
				"updated_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}

		if req.CalendarEventID == nil {
			return nil
		}
		res = tx.Model(&entity.CalendarEvent{}).
			Where("id = ? AND status <> ?", *req.CalendarEventID, entity.EventStatusCancelled).
			Updates(map[string]any{"status": entity.EventStatusCancelled, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		eventAudit.EventID = *req.CalendarEventID
		return tx.Create(eventAudit).Error
	})
}
