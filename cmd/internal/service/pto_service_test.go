package service

import (
	"hrdash/cmd/internal/domain/entity"
	"hrdash/cmd/internal/domain/sqlite/repository"
	"hrdash/cmd/internal/utils/apierror"
	"testing"

	"gorm.io/gorm"
)

func newPTOFixture(t *testing.T) (*DefaultPTOService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewPTOService(
		repository.NewPTORepository(db),
		repository.NewEmployeeRepository(db),
		repository.NewBusinessHoursRepository(db),
		repository.NewAuditRepository(db),
		newValidator(),
	)
	return svc, db
}

func TestPTOSubmit(t *testing.T) {
	t.Run("InsufficientBalance", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 5, &manager.ID)

		// Mon 2026-03-02 .. Mon 2026-03-09 = 6 business days
		_, apierr := svc.Submit(&SubmitPTORequest{
			StartDate: "2026-03-02",
			EndDate:   "2026-03-09",
			IsFullDay: true,
		}, actorFor(emp))

		if apierr != apierror.InsufficientBalanceError {
			t.Fatalf("expected InsufficientBalanceError, got %v", apierr)
		}
		if got := fetchEmployee(t, db, emp.ID).PTOBalance; got != 5 {
			t.Errorf("balance must stay untouched, got %v", got)
		}
	})

	t.Run("PendingDoesNotTouchBalance", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)

		// Tue..Thu = 3 business days
		resp, apierr := svc.Submit(&SubmitPTORequest{
			StartDate: "2026-03-03",
			EndDate:   "2026-03-05",
			IsFullDay: true,
		}, actorFor(emp))
		if apierr != nil {
			t.Fatalf("submit failed: %v", apierr)
		}

		if resp.Status != entity.PTOStatusPending {
			t.Errorf("expected pending, got %s", resp.Status)
		}
		if resp.DaysRequested != 3 {
			t.Errorf("expected 3 days requested, got %v", resp.DaysRequested)
		}
		if resp.PTOBalanceBefore != 10 || resp.PTOBalanceAfter != 7 {
			t.Errorf("expected balance snapshot 10/7, got %v/%v", resp.PTOBalanceBefore, resp.PTOBalanceAfter)
		}
		if got := fetchEmployee(t, db, emp.ID).PTOBalance; got != 10 {
			t.Errorf("live balance must stay 10 while pending, got %v", got)
		}

		audit, apierr := svc.GetRequestAudit(resp.ID)
		if apierr != nil {
			t.Fatalf("audit fetch failed: %v", apierr)
		}
		if len(audit) != 1 || audit[0].Action != entity.AuditActionSubmitted {
			t.Errorf("expected a single submitted audit entry, got %+v", audit)
		}
	})

	t.Run("WeekendSkippedInCount", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)

		// Fri 2026-03-06 .. Mon 2026-03-09 = 2 business days
		resp, apierr := svc.Submit(&SubmitPTORequest{
			StartDate: "2026-03-06",
			EndDate:   "2026-03-09",
			IsFullDay: true,
		}, actorFor(emp))
		if apierr != nil {
			t.Fatalf("submit failed: %v", apierr)
		}
		if resp.DaysRequested != 2 {
			t.Errorf("expected 2 business days, got %v", resp.DaysRequested)
		}
	})

	t.Run("PartialDayHourFraction", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)

		start, end := "10:00", "14:00"
		resp, apierr := svc.Submit(&SubmitPTORequest{
			StartDate: "2026-03-03",
			EndDate:   "2026-03-03",
			IsFullDay: false,
			StartTime: &start,
			EndTime:   &end,
		}, actorFor(emp))
		if apierr != nil {
			t.Fatalf("submit failed: %v", apierr)
		}
		if resp.DaysRequested != 0.5 {
			t.Errorf("expected 4h = 0.5 days, got %v", resp.DaysRequested)
		}
	})

	t.Run("NoManagerRejected", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, nil)

		_, apierr := svc.Submit(&SubmitPTORequest{
			StartDate: "2026-03-03",
			EndDate:   "2026-03-05",
			IsFullDay: true,
		}, actorFor(emp))
		if apierr == nil || apierr.Code() != 422 {
			t.Fatalf("expected 422 for a request with no manager, got %v", apierr)
		}
	})
}

func submitPending(t *testing.T, svc *DefaultPTOService, emp *entity.Employee, startDate, endDate string) *PTOResponse {
	t.Helper()
	resp, apierr := svc.Submit(&SubmitPTORequest{
		StartDate: startDate,
		EndDate:   endDate,
		IsFullDay: true,
	}, actorFor(emp))
	if apierr != nil {
		t.Fatalf("submit failed: %v", apierr)
	}
	return resp
}

func TestPTOApprove(t *testing.T) {
	t.Run("DecrementsBalanceAndCreatesEvent", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)
		pending := submitPending(t, svc, emp, "2026-03-03", "2026-03-05")

		resp, apierr := svc.Approve(pending.ID, &PTODecisionRequest{}, actorFor(manager))
		if apierr != nil {
			t.Fatalf("approve failed: %v", apierr)
		}

		if resp.Status != entity.PTOStatusApproved {
			t.Errorf("expected approved, got %s", resp.Status)
		}
		if got := fetchEmployee(t, db, emp.ID).PTOBalance; got != 7 {
			t.Errorf("expected balance 7 after approval, got %v", got)
		}
		if resp.CalendarEventID == nil {
			t.Fatal("expected a linked calendar event")
		}

		event := fetchEvent(t, db, *resp.CalendarEventID)
		if event.Type != entity.EventTypePTO || !event.AllDay {
			t.Errorf("expected an all-day pto event, got type=%s allDay=%v", event.Type, event.AllDay)
		}
		if event.Status != entity.EventStatusApproved {
			t.Errorf("expected event approved, got %s", event.Status)
		}
		if len(event.Attendees) != 1 || event.Attendees[0].Email != emp.Email {
			t.Errorf("expected the employee as sole attendee, got %+v", event.Attendees)
		}

		audit, _ := svc.GetRequestAudit(pending.ID)
		if len(audit) != 2 || audit[1].Action != entity.AuditActionApproved {
			t.Errorf("expected submitted+approved audit trail, got %+v", audit)
		}
	})

	t.Run("OnlyAssignedManager", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
		other := createEmployee(t, db, "Omar", "omar@corp.test", "Sales", 20, nil)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)
		pending := submitPending(t, svc, emp, "2026-03-03", "2026-03-05")

		if _, apierr := svc.Approve(pending.ID, &PTODecisionRequest{}, actorFor(other)); apierr != apierror.UnauthorizedError {
			t.Errorf("expected UnauthorizedError for a non-manager, got %v", apierr)
		}
		if _, apierr := svc.Approve(pending.ID, &PTODecisionRequest{}, actorFor(emp)); apierr != apierror.UnauthorizedError {
			t.Errorf("expected UnauthorizedError for the requester, got %v", apierr)
		}
	})

	t.Run("SecondApprovalConflicts", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)
		pending := submitPending(t, svc, emp, "2026-03-03", "2026-03-05")

		if _, apierr := svc.Approve(pending.ID, &PTODecisionRequest{}, actorFor(manager)); apierr != nil {
			t.Fatalf("first approve failed: %v", apierr)
		}
		if _, apierr := svc.Approve(pending.ID, &PTODecisionRequest{}, actorFor(manager)); apierr != apierror.ConflictError {
			t.Fatalf("expected ConflictError on second approval, got %v", apierr)
		}
		if got := fetchEmployee(t, db, emp.ID).PTOBalance; got != 7 {
			t.Errorf("balance must be decremented exactly once, got %v", got)
		}
	})
}

func TestPTOReject(t *testing.T) {
	svc, db := newPTOFixture(t)
	manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
	emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)
	pending := submitPending(t, svc, emp, "2026-03-03", "2026-03-05")

	comment := "coverage gap that week"
	resp, apierr := svc.Reject(pending.ID, &PTODecisionRequest{ManagerComment: &comment}, actorFor(manager))
	if apierr != nil {
		t.Fatalf("reject failed: %v", apierr)
	}
	if resp.Status != entity.PTOStatusRejected {
		t.Errorf("expected rejected, got %s", resp.Status)
	}
	if got := fetchEmployee(t, db, emp.ID).PTOBalance; got != 10 {
		t.Errorf("rejection must not touch the balance, got %v", got)
	}

	audit, _ := svc.GetRequestAudit(pending.ID)
	if len(audit) != 2 || audit[1].Action != entity.AuditActionDenied {
		t.Errorf("expected a denied audit entry, got %+v", audit)
	}

	// rejected is terminal
	if _, apierr := svc.Cancel(pending.ID, actorFor(emp)); apierr != apierror.ConflictError {
		t.Errorf("expected ConflictError cancelling a rejected request, got %v", apierr)
	}
}

func TestPTOCancel(t *testing.T) {
	t.Run("BalanceConservation", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)
		pending := submitPending(t, svc, emp, "2026-03-03", "2026-03-05")

		approved, apierr := svc.Approve(pending.ID, &PTODecisionRequest{}, actorFor(manager))
		if apierr != nil {
			t.Fatalf("approve failed: %v", apierr)
		}
		if got := fetchEmployee(t, db, emp.ID).PTOBalance; got != 7 {
			t.Fatalf("expected balance 7 after approval, got %v", got)
		}

		resp, apierr := svc.Cancel(pending.ID, actorFor(emp))
		if apierr != nil {
			t.Fatalf("cancel failed: %v", apierr)
		}
		if resp.Status != entity.PTOStatusCancelled {
			t.Errorf("expected cancelled, got %s", resp.Status)
		}
		if got := fetchEmployee(t, db, emp.ID).PTOBalance; got != 10 {
			t.Errorf("expected balance restored to 10, got %v", got)
		}

		event := fetchEvent(t, db, *approved.CalendarEventID)
		if event.Status != entity.EventStatusCancelled {
			t.Errorf("expected linked event cancelled, got %s", event.Status)
		}
	})

	t.Run("CancelPendingLeavesBalance", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)
		pending := submitPending(t, svc, emp, "2026-03-03", "2026-03-05")

		if _, apierr := svc.Cancel(pending.ID, actorFor(emp)); apierr != nil {
			t.Fatalf("cancel failed: %v", apierr)
		}
		if got := fetchEmployee(t, db, emp.ID).PTOBalance; got != 10 {
			t.Errorf("cancelling a pending request must not touch balance, got %v", got)
		}
	})

	t.Run("ManagerMayCancel", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)
		pending := submitPending(t, svc, emp, "2026-03-03", "2026-03-05")

		if _, apierr := svc.Cancel(pending.ID, actorFor(manager)); apierr != nil {
			t.Errorf("the assigned manager must be able to cancel: %v", apierr)
		}
	})

	t.Run("StrangerMayNot", func(t *testing.T) {
		svc, db := newPTOFixture(t)
		manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
		other := createEmployee(t, db, "Omar", "omar@corp.test", "Sales", 20, nil)
		emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)
		pending := submitPending(t, svc, emp, "2026-03-03", "2026-03-05")

		if _, apierr := svc.Cancel(pending.ID, actorFor(other)); apierr != apierror.UnauthorizedError {
			t.Errorf("expected UnauthorizedError, got %v", apierr)
		}
	})
}

// TestPTOApproveRace drives the repository guard directly: two approvals of
// the same pending request, the second loses on the conditional update.
func TestPTOApproveRace(t *testing.T) {
	svc, db := newPTOFixture(t)
	manager := createEmployee(t, db, "Mara", "mara@corp.test", "Engineering", 20, nil)
	emp := createEmployee(t, db, "Dana", "dana@corp.test", "Engineering", 10, &manager.ID)
	pending := submitPending(t, svc, emp, "2026-03-03", "2026-03-05")

	repo := repository.NewPTORepository(db)
	request, err := repo.FindByID(pending.ID)
	if err != nil || request == nil {
		t.Fatalf("failed to load request: %v", err)
	}

	approveOnce := func() error {
		event := &entity.CalendarEvent{
			Title: "PTO: Dana", Type: entity.EventTypePTO, AllDay: true,
			Status: entity.EventStatusApproved, StartsAt: 1, EndsAt: 2,
		}
		return repo.Approve(request, nil, 1,
			event,
			&entity.PTOAuditEntry{ActorID: manager.Email, ActorName: manager.Name, Action: entity.AuditActionApproved, CreatedAt: 1},
			&entity.CalendarAuditEntry{ActorID: manager.Email, ActorName: manager.Name, Action: entity.AuditActionCreated, CreatedAt: 1},
		)
	}

	if err := approveOnce(); err != nil {
		t.Fatalf("first approval failed: %v", err)
	}
	if err := approveOnce(); err != repository.ErrStaleStatus {
		t.Fatalf("expected ErrStaleStatus from the losing approval, got %v", err)
	}
	if got := fetchEmployee(t, db, emp.ID).PTOBalance; got != 7 {
		t.Errorf("exactly one decrement expected, balance is %v", got)
	}
}
