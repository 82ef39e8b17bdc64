package service

import (
	"encoding/json"
	"errors"
	"hrdash/cmd/internal/domain/entity"
	"hrdash/cmd/internal/domain/sqlite/repository"
	"hrdash/cmd/internal/utils"
	"hrdash/cmd/internal/utils/apierror"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type PTORepository interface {
	FindByID(id int) (*entity.PTORequest, error)
	List(employeeID, managerID int, status string) ([]*entity.PTORequest, error)
	SubmitWithAudit(req *entity.PTORequest, audit *entity.PTOAuditEntry) error
	Approve(req *entity.PTORequest, comment *string, now int64, event *entity.CalendarEvent, reqAudit *entity.PTOAuditEntry, eventAudit *entity.CalendarAuditEntry) error
	Reject(id int, comment *string, now int64, audit *entity.PTOAuditEntry) error
	Cancel(req *entity.PTORequest, fromStatus string, now int64, audit *entity.PTOAuditEntry, eventAudit *entity.CalendarAuditEntry) error
}

type EmployeeRepository interface {
	FindByID(id int) (*entity.Employee, error)
	FindByEmail(email string) (*entity.Employee, error)
	FindAll() ([]*entity.Employee, error)
}

type BusinessHoursRepository interface {
	FindAll() ([]entity.BusinessHours, error)
}

// hoursPerDay converts partial-day requests into day fractions.
const hoursPerDay = 8.0

type SubmitPTORequest struct {
	EmployeeID int     `json:"employeeId"`
	StartDate  string  `json:"startDate" validate:"required,isodate"`
	EndDate    string  `json:"endDate" validate:"required,isodate"`
	IsFullDay  bool    `json:"isFullDay"`
	StartTime  *string `json:"startTime" validate:"omitempty,hourminute"`
	EndTime    *string `json:"endTime" validate:"omitempty,hourminute"`
	Reason     *string `json:"reason"`
	ManagerID  int     `json:"managerId"`
}

type PTODecisionRequest struct {
	ManagerComment *string `json:"managerComment" validate:"omitempty,max=500"`
}

type PTOResponse struct {
	ID               int     `json:"id"`
	EmployeeID       int     `json:"employeeId"`
	EmployeeName     string  `json:"employeeName"`
	StartDate        string  `json:"startDate"`
	EndDate          string  `json:"endDate"`
	IsFullDay        bool    `json:"isFullDay"`
	StartTime        *string `json:"startTime,omitempty"`
	EndTime          *string `json:"endTime,omitempty"`
	Reason           *string `json:"reason,omitempty"`
	Status           string  `json:"status"`
	ManagerID        int     `json:"managerId"`
	ManagerComment   *string `json:"managerComment,omitempty"`
	Department       string  `json:"department"`
	DaysRequested    float64 `json:"daysRequested"`
	PTOBalanceBefore float64 `json:"ptoBalanceBefore"`
	PTOBalanceAfter  float64 `json:"ptoBalanceAfter"`
	CalendarEventID  *int    `json:"calendarEventId,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

type DefaultPTOService struct {
	PTORepo      PTORepository
	EmployeeRepo EmployeeRepository
	HoursRepo    BusinessHoursRepository
	AuditRepo    AuditRepository
	Validate     *validator.Validate
}

func NewPTOService(ptoRepo PTORepository, employeeRepo EmployeeRepository, hoursRepo BusinessHoursRepository, auditRepo AuditRepository, validate *validator.Validate) *DefaultPTOService {
	return &DefaultPTOService{
		PTORepo:      ptoRepo,
		EmployeeRepo: employeeRepo,
		HoursRepo:    hoursRepo,
		AuditRepo:    auditRepo,
		Validate:     validate,
	}
}

// Submit files a pending PTO request. The employee balance is checked but
// NOT decremented here; only approval consumes balance.
func (s *DefaultPTOService) Submit(req *SubmitPTORequest, actor *utils.TokenData) (*PTOResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	employee, apierr := s.resolveEmployee(req.EmployeeID, actor)
	if apierr != nil {
		return nil, apierr
	}

	managerID := req.ManagerID
	if managerID == 0 && employee.ManagerID != nil {
		managerID = *employee.ManagerID
	}
	if managerID == 0 {
		return nil, apierror.NewSimple(422, "Request needs a manager to route approval to")
	}
	manager, err := s.EmployeeRepo.FindByID(managerID)
	if err != nil {
		log.Errorf("failed to fetch manager %d: %v", managerID, err)
		return nil, apierror.InternalServerError
	}
	if manager == nil {
		return nil, apierror.NewSimple(422, "Assigned manager does not exist")
	}

	days, apierr := s.computeDaysRequested(req)
	if apierr != nil {
		return nil, apierr
	}
	if days > employee.PTOBalance {
		return nil, apierror.InsufficientBalanceError
	}

	now := utils.NowUTC()
	request := &entity.PTORequest{
		EmployeeID:    employee.ID,
		EmployeeName:  employee.Name,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		IsFullDay:     req.IsFullDay,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Reason:        req.Reason,
		Status:        entity.PTOStatusPending,
		ManagerID:     managerID,
		Department:    employee.Department,
		DaysRequested: days,
		BalanceBefore: employee.PTOBalance,
		BalanceAfter:  employee.PTOBalance - days,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	audit := &entity.PTOAuditEntry{
		ActorID:    actor.Email,
		ActorName:  actor.Name,
		Action:     entity.AuditActionSubmitted,
		AfterState: snapshotPTO(request),
		CreatedAt:  now,
		Notes:      req.Reason,
	}

	if err := s.PTORepo.SubmitWithAudit(request, audit); err != nil {
		log.Errorf("failed to submit pto request for employee %d: %v", employee.ID, err)
		return nil, apierror.InternalServerError
	}
	return toPTOResponse(request), nil
}

// Approve is manager-only. Balance decrement, pto event creation and the
// status flip land in one transaction; a concurrent approval of the same
// request surfaces as ConflictError.
func (s *DefaultPTOService) Approve(id int, req *PTODecisionRequest, actor *utils.TokenData) (*PTOResponse, apierror.ErrorResponse) {
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	request, apierr := s.fetchRequest(id)
	if apierr != nil {
		return nil, apierr
	}
	if apierr := s.requireManager(request, actor); apierr != nil {
		return nil, apierr
	}
	if request.Status != entity.PTOStatusPending {
		return nil, apierror.ConflictError
	}

	employee, err := s.EmployeeRepo.FindByID(request.EmployeeID)
	if err != nil || employee == nil {
		log.Errorf("failed to fetch employee %d for approval: %v", request.EmployeeID, err)
		return nil, apierror.InternalServerError
	}

	startsAt, endsAt, apierr := ptoEventSpan(request)
	if apierr != nil {
		return nil, apierr
	}

	now := utils.NowUTC()
	before := snapshotPTO(request)

	event := &entity.CalendarEvent{
		Title:     "PTO: " + request.EmployeeName,
		Type:      entity.EventTypePTO,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		AllDay:    true,
		Status:    entity.EventStatusApproved,
		CreatedAt: now,
		UpdatedAt: now,
		Attendees: []entity.Attendee{{
			AttendeeType: entity.AttendeeTypeEmployee,
			Name:         employee.Name,
			Email:        employee.Email,
		}},
	}

	after := *request
	after.Status = entity.PTOStatusApproved
	after.ManagerComment = req.ManagerComment

	reqAudit := &entity.PTOAuditEntry{
		ActorID:     actor.Email,
		ActorName:   actor.Name,
		Action:      entity.AuditActionApproved,
		BeforeState: before,
		AfterState:  snapshotPTO(&after),
		Notes:       req.ManagerComment,
		CreatedAt:   now,
	}
	eventAudit := &entity.CalendarAuditEntry{
		ActorID:    actor.Email,
		ActorName:  actor.Name,
		Action:     entity.AuditActionCreated,
		AfterState: snapshotEvent(event),
		CreatedAt:  now,
	}

	err = s.PTORepo.Approve(request, req.ManagerComment, now, event, reqAudit, eventAudit)
	if errors.Is(err, repository.ErrStaleStatus) {
		return nil, apierror.ConflictError
	}
	if errors.Is(err, repository.ErrInsufficientBalance) {
		return nil, apierror.InsufficientBalanceError
	}
	if err != nil {
		log.Errorf("failed to approve pto request %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	request.Status = entity.PTOStatusApproved
	request.ManagerComment = req.ManagerComment
	request.UpdatedAt = now
	request.CalendarEventID = &event.ID
	return toPTOResponse(request), nil
}

// Reject is manager-only. The balance was never touched, so nothing to undo.
func (s *DefaultPTOService) Reject(id int, req *PTODecisionRequest, actor *utils.TokenData) (*PTOResponse, apierror.ErrorResponse) {
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	request, apierr := s.fetchRequest(id)
	if apierr != nil {
		return nil, apierr
	}
	if apierr := s.requireManager(request, actor); apierr != nil {
		return nil, apierr
	}
	if request.Status != entity.PTOStatusPending {
		return nil, apierror.ConflictError
	}

	now := utils.NowUTC()
	after := *request
	after.Status = entity.PTOStatusRejected
	after.ManagerComment = req.ManagerComment

	audit := &entity.PTOAuditEntry{
		ActorID:     actor.Email,
		ActorName:   actor.Name,
		Action:      entity.AuditActionDenied,
		BeforeState: snapshotPTO(request),
		AfterState:  snapshotPTO(&after),
		Notes:       req.ManagerComment,
		CreatedAt:   now,
	}

	err := s.PTORepo.Reject(id, req.ManagerComment, now, audit)
	if errors.Is(err, repository.ErrStaleStatus) {
		return nil, apierror.ConflictError
	}
	if err != nil {
		log.Errorf("failed to reject pto request %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	request.Status = entity.PTOStatusRejected
	request.ManagerComment = req.ManagerComment
	request.UpdatedAt = now
	return toPTOResponse(request), nil
}

// Cancel may be called by the request owner or its manager. Cancelling an
// approved request restores the balance and soft-deletes the linked event.
func (s *DefaultPTOService) Cancel(id int, actor *utils.TokenData) (*PTOResponse, apierror.ErrorResponse) {
	request, apierr := s.fetchRequest(id)
	if apierr != nil {
		return nil, apierr
	}

	actorEmp, err := s.EmployeeRepo.FindByEmail(actor.Email)
	if err != nil {
		log.Errorf("failed to resolve actor %s: %v", actor.Email, err)
		return nil, apierror.InternalServerError
	}
	if actorEmp == nil || (actorEmp.ID != request.EmployeeID && actorEmp.ID != request.ManagerID) {
		return nil, apierror.UnauthorizedError
	}

	fromStatus := request.Status
	if fromStatus != entity.PTOStatusPending && fromStatus != entity.PTOStatusApproved {
		return nil, apierror.ConflictError
	}

	now := utils.NowUTC()
	after := *request
	after.Status = entity.PTOStatusCancelled

	audit := &entity.PTOAuditEntry{
		ActorID:     actor.Email,
		ActorName:   actor.Name,
		Action:      entity.AuditActionCancelled,
		BeforeState: snapshotPTO(request),
		AfterState:  snapshotPTO(&after),
		CreatedAt:   now,
	}
	eventAudit := &entity.CalendarAuditEntry{
		ActorID:   actor.Email,
		ActorName: actor.Name,
		Action:    entity.AuditActionCancelled,
		CreatedAt: now,
	}

	err = s.PTORepo.Cancel(request, fromStatus, now, audit, eventAudit)
	if errors.Is(err, repository.ErrStaleStatus) {
		return nil, apierror.ConflictError
	}
	if err != nil {
		log.Errorf("failed to cancel pto request %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	request.Status = entity.PTOStatusCancelled
	request.UpdatedAt = now
	return toPTOResponse(request), nil
}

func (s *DefaultPTOService) GetRequest(id int) (*PTOResponse, apierror.ErrorResponse) {
	request, apierr := s.fetchRequest(id)
	if apierr != nil {
		return nil, apierr
	}
	return toPTOResponse(request), nil
}

func (s *DefaultPTOService) ListRequests(employeeID, managerID int, status string) ([]*PTOResponse, apierror.ErrorResponse) {
	requests, err := s.PTORepo.List(employeeID, managerID, status)
	if err != nil {
		log.Errorf("failed to list pto requests: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*PTOResponse, len(requests))
	for i, r := range requests {
		resp[i] = toPTOResponse(r)
	}
	return resp, nil
}

func (s *DefaultPTOService) GetRequestAudit(id int) ([]*AuditEntryResponse, apierror.ErrorResponse) {
	if _, apierr := s.fetchRequest(id); apierr != nil {
		return nil, apierr
	}

	entries, err := s.AuditRepo.ListPTO(id)
	if err != nil {
		log.Errorf("failed to list audit for pto request %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*AuditEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = &AuditEntryResponse{
			SubjectID:   e.RequestID,
			ActorID:     e.ActorID,
			ActorName:   e.ActorName,
			Action:      e.Action,
			BeforeState: e.BeforeState,
			AfterState:  e.AfterState,
			Notes:       e.Notes,
			Timestamp:   utils.FormatEpoch(e.CreatedAt),
		}
	}
	return resp, nil
}

func (s *DefaultPTOService) fetchRequest(id int) (*entity.PTORequest, apierror.ErrorResponse) {
	request, err := s.PTORepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch pto request %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if request == nil {
		return nil, apierror.NotFoundError
	}
	return request, nil
}

// resolveEmployee picks the request subject: an explicit employeeId wins,
// otherwise the actor's own employee row.
func (s *DefaultPTOService) resolveEmployee(employeeID int, actor *utils.TokenData) (*entity.Employee, apierror.ErrorResponse) {
	if employeeID != 0 {
		emp, err := s.EmployeeRepo.FindByID(employeeID)
		if err != nil {
			log.Errorf("failed to fetch employee %d: %v", employeeID, err)
			return nil, apierror.InternalServerError
		}
		if emp == nil {
			return nil, apierror.NotFoundError
		}
		return emp, nil
	}

	emp, err := s.EmployeeRepo.FindByEmail(actor.Email)
	if err != nil {
		log.Errorf("failed to resolve actor %s: %v", actor.Email, err)
		return nil, apierror.InternalServerError
	}
	if emp == nil {
		return nil, apierror.NotFoundError
	}
	return emp, nil
}

// requireManager gates approval decisions on the canonical employee id of
// the assigned manager, resolved from the actor's token email.
func (s *DefaultPTOService) requireManager(request *entity.PTORequest, actor *utils.TokenData) apierror.ErrorResponse {
	actorEmp, err := s.EmployeeRepo.FindByEmail(actor.Email)
	if err != nil {
		log.Errorf("failed to resolve actor %s: %v", actor.Email, err)
		return apierror.InternalServerError
	}
	if actorEmp == nil || actorEmp.ID != request.ManagerID {
		return apierror.UnauthorizedError
	}
	return nil
}

// computeDaysRequested counts business days at full-day granularity, or the
// requested hours as a fraction of an 8-hour day for partial requests.
func (s *DefaultPTOService) computeDaysRequested(req *SubmitPTORequest) (float64, apierror.ErrorResponse) {
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return 0, apierror.MalformedBodyError
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return 0, apierror.MalformedBodyError
	}
	if start.After(end) {
		return 0, apierror.InvalidDateRangeError
	}

	if !req.IsFullDay {
		if req.StartTime == nil || req.EndTime == nil {
			return 0, apierror.NewSimple(422, "Partial-day requests need startTime and endTime")
		}
		if !start.Equal(end) {
			return 0, apierror.NewSimple(422, "Partial-day requests cover a single date")
		}

		sh, sm, perr := utils.ParseClock(*req.StartTime)
		if perr != nil {
			return 0, apierror.MalformedBodyError
		}
		eh, em, perr := utils.ParseClock(*req.EndTime)
		if perr != nil {
			return 0, apierror.MalformedBodyError
		}

		hours := float64(eh-sh) + float64(em-sm)/60
		if hours <= 0 {
			return 0, apierror.InvalidTimeRangeError
		}
		return hours / hoursPerDay, nil
	}

	hours, herr := s.HoursRepo.FindAll()
	if herr != nil {
		log.Errorf("failed to load business hours: %v", herr)
		return 0, apierror.InternalServerError
	}
	working := map[int]bool{}
	for _, h := range hours {
		working[h.DayOfWeek] = h.IsWorkingDay
	}

	days := 0.0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if working[int(day.Weekday())] {
			days++
		}
	}
	if days == 0 {
		return 0, apierror.NewSimple(422, "Requested range contains no working days")
	}
	return days, nil
}

// ptoEventSpan is the all-day event window: startDate 00:00 through
// endDate 23:59 UTC.
func ptoEventSpan(request *entity.PTORequest) (int64, int64, apierror.ErrorResponse) {
	start, err := utils.ParseDate(request.StartDate)
	if err != nil {
		return 0, 0, apierror.InternalServerError
	}
	end, err := utils.ParseDate(request.EndDate)
	if err != nil {
		return 0, 0, apierror.InternalServerError
	}
	endOfDay := end.Add(23*time.Hour + 59*time.Minute)
	return start.UnixMilli(), endOfDay.UnixMilli(), nil
}

func toPTOResponse(request *entity.PTORequest) *PTOResponse {
	return &PTOResponse{
		ID:               request.ID,
		EmployeeID:       request.EmployeeID,
		EmployeeName:     request.EmployeeName,
		StartDate:        request.StartDate,
		EndDate:          request.EndDate,
		IsFullDay:        request.IsFullDay,
		StartTime:        request.StartTime,
		EndTime:          request.EndTime,
		Reason:           request.Reason,
		Status:           request.Status,
		ManagerID:        request.ManagerID,
		ManagerComment:   request.ManagerComment,
		Department:       request.Department,
		DaysRequested:    request.DaysRequested,
		PTOBalanceBefore: request.BalanceBefore,
		PTOBalanceAfter:  request.BalanceAfter,
		CalendarEventID:  request.CalendarEventID,
		CreatedAt:        utils.FormatEpoch(request.CreatedAt),
		UpdatedAt:        utils.FormatEpoch(request.UpdatedAt),
	}
}

func snapshotPTO(request *entity.PTORequest) *string {
	raw, err := json.Marshal(toPTOResponse(request))
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}
