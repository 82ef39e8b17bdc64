package service

import (
	"encoding/json"
	"hrdash/cmd/internal/domain/entity"
	"hrdash/cmd/internal/domain/sqlite/repository"
	"hrdash/cmd/internal/utils"
	"hrdash/cmd/internal/utils/apierror"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type EventRepository interface {
	FindByID(id int) (*entity.CalendarEvent, error)
	FindRange(from, to int64) ([]*entity.CalendarEvent, error)
	FindOverlapping(from, to int64) ([]*entity.CalendarEvent, error)
	CreateWithAudit(event *entity.CalendarEvent, audit *entity.CalendarAuditEntry) error
	UpdateWithAudit(event *entity.CalendarEvent, replaceAttendees bool, attendees []entity.Attendee, audit *entity.CalendarAuditEntry) error
	TransitionStatus(id int, allowedFrom []string, to string, now int64, audit *entity.CalendarAuditEntry) error
}

type AuditRepository interface {
	ListCalendar(eventID int) ([]*entity.CalendarAuditEntry, error)
	ListPTO(requestID int) ([]*entity.PTOAuditEntry, error)
}

type AttendeeRequest struct {
	AttendeeType   string  `json:"attendeeType" validate:"omitempty,oneof=employee candidate external"`
	AttendeeID     *string `json:"attendeeId"`
	Name           string  `json:"name" validate:"required,max=120"`
	Email          string  `json:"email" validate:"required,email"`
	ResponseStatus *string `json:"responseStatus"`
}

type CreateEventRequest struct {
	Title            string            `json:"title" validate:"required,max=200"`
	Type             string            `json:"type" validate:"omitempty,oneof=interview pto holiday other"`
	StartTime        string            `json:"startTime" validate:"required,iso8601"`
	EndTime          string            `json:"endTime" validate:"required,iso8601"`
	AllDay           bool              `json:"allDay"`
	Description      *string           `json:"description"`
	Location         *string           `json:"location"`
	OrganizerID      *string           `json:"organizerId"`
	GoogleMeetURL    *string           `json:"googleMeetUrl"`
	GoogleCalendarID *string           `json:"googleCalendarId"`
	Meta             map[string]any    `json:"meta"`
	Attendees        []AttendeeRequest `json:"attendees" validate:"dive"`
}

// UpdateEventRequest is a coalesce-style patch: nil keeps the stored value.
// A non-nil attendee list REPLACES the whole attendee set.
type UpdateEventRequest struct {
	Title            *string            `json:"title" validate:"omitempty,max=200"`
	Type             *string            `json:"type" validate:"omitempty,oneof=interview pto holiday other"`
	StartTime        *string            `json:"startTime" validate:"omitempty,iso8601"`
	EndTime          *string            `json:"endTime" validate:"omitempty,iso8601"`
	AllDay           *bool              `json:"allDay"`
	Description      *string            `json:"description"`
	Location         *string            `json:"location"`
	OrganizerID      *string            `json:"organizerId"`
	GoogleMeetURL    *string            `json:"googleMeetUrl"`
	GoogleCalendarID *string            `json:"googleCalendarId"`
	Meta             map[string]any     `json:"meta"`
	Attendees        *[]AttendeeRequest `json:"attendees" validate:"omitempty,dive"`
}

type AttendeeResponse struct {
	AttendeeType   string  `json:"attendeeType"`
	AttendeeID     *string `json:"attendeeId,omitempty"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	ResponseStatus *string `json:"responseStatus,omitempty"`
}

type EventResponse struct {
	ID               int                `json:"id"`
	Title            string             `json:"title"`
	Type             string             `json:"type"`
	StartTime        string             `json:"startTime"`
	EndTime          string             `json:"endTime"`
	AllDay           bool               `json:"allDay"`
	Status           string             `json:"status"`
	Description      *string            `json:"description,omitempty"`
	Location         *string            `json:"location,omitempty"`
	OrganizerID      *string            `json:"organizerId,omitempty"`
	GoogleMeetURL    *string            `json:"googleMeetUrl,omitempty"`
	GoogleCalendarID *string            `json:"googleCalendarId,omitempty"`
	Meta             map[string]any     `json:"meta,omitempty"`
	CreatedAt        string             `json:"createdAt"`
	UpdatedAt        string             `json:"updatedAt"`
	Attendees        []AttendeeResponse `json:"attendees"`
}

type AuditEntryResponse struct {
	SubjectID   int     `json:"subjectId"`
	ActorID     string  `json:"actorId"`
	ActorName   string  `json:"actorName"`
	Action      string  `json:"action"`
	BeforeState *string `json:"beforeState,omitempty"`
	AfterState  *string `json:"afterState,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Timestamp   string  `json:"timestamp"`
}

type DefaultEventService struct {
	EventRepo EventRepository
	AuditRepo AuditRepository
	Validate  *validator.Validate
}

func NewEventService(eventRepo EventRepository, auditRepo AuditRepository, validate *validator.Validate) *DefaultEventService {
	return &DefaultEventService{EventRepo: eventRepo, AuditRepo: auditRepo, Validate: validate}
}

func (s *DefaultEventService) GetEvent(id int) (*EventResponse, apierror.ErrorResponse) {
	event, err := s.EventRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch event %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if event == nil {
		return nil, apierror.NotFoundError
	}
	return toEventResponse(event), nil
}

func (s *DefaultEventService) ListEvents(from, to int64) ([]*EventResponse, apierror.ErrorResponse) {
	events, err := s.EventRepo.FindRange(from, to)
	if err != nil {
		log.Errorf("failed to list events [%d - %d]: %v", from, to, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*EventResponse, len(events))
	for i, ev := range events {
		resp[i] = toEventResponse(ev)
	}
	return resp, nil
}

func (s *DefaultEventService) CreateEvent(req *CreateEventRequest, actor *utils.TokenData) (*EventResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	begin, err := utils.FromEpoch(req.StartTime)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}
	end, err := utils.FromEpoch(req.EndTime)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}
	if !req.AllDay && begin >= end {
		return nil, apierror.InvalidTimeRangeError
	}

	now := utils.NowUTC()
	event := &entity.CalendarEvent{
		Title:            req.Title,
		Type:             defaultString(req.Type, entity.EventTypeOther),
		StartsAt:         begin,
		EndsAt:           end,
		AllDay:           req.AllDay,
		Status:           entity.EventStatusScheduled,
		Description:      req.Description,
		Location:         req.Location,
		OrganizerID:      req.OrganizerID,
		GoogleMeetURL:    req.GoogleMeetURL,
		GoogleCalendarID: req.GoogleCalendarID,
		Meta:             marshalMeta(req.Meta),
		CreatedAt:        now,
		UpdatedAt:        now,
		Attendees:        toAttendeeEntities(req.Attendees, 0),
	}

	audit := &entity.CalendarAuditEntry{
		ActorID:    actor.Email,
		ActorName:  actor.Name,
		Action:     entity.AuditActionCreated,
		AfterState: snapshotEvent(event),
		CreatedAt:  now,
	}

	if err := s.EventRepo.CreateWithAudit(event, audit); err != nil {
		log.Errorf("failed to create event: %v", err)
		return nil, apierror.InternalServerError
	}
	return toEventResponse(event), nil
}

func (s *DefaultEventService) UpdateEvent(id int, req *UpdateEventRequest, actor *utils.TokenData) (*EventResponse, apierror.ErrorResponse) {
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	event, err := s.EventRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch event %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if event == nil {
		return nil, apierror.NotFoundError
	}
	if event.Status == entity.EventStatusCancelled {
		return nil, apierror.ConflictError
	}

	before := snapshotEvent(event)

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Type != nil {
		event.Type = *req.Type
	}
	if req.StartTime != nil {
		begin, perr := utils.FromEpoch(*req.StartTime)
		if perr != nil {
			return nil, apierror.MalformedBodyError
		}
		event.StartsAt = begin
	}
	if req.EndTime != nil {
		end, perr := utils.FromEpoch(*req.EndTime)
		if perr != nil {
			return nil, apierror.MalformedBodyError
		}
		event.EndsAt = end
	}
	if req.AllDay != nil {
		event.AllDay = *req.AllDay
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.Location != nil {
		event.Location = req.Location
	}
	if req.OrganizerID != nil {
		event.OrganizerID = req.OrganizerID
	}
	if req.GoogleMeetURL != nil {
		event.GoogleMeetURL = req.GoogleMeetURL
	}
	if req.GoogleCalendarID != nil {
		event.GoogleCalendarID = req.GoogleCalendarID
	}
	if req.Meta != nil {
		event.Meta = marshalMeta(req.Meta)
	}

	if !event.AllDay && event.StartsAt >= event.EndsAt {
		return nil, apierror.InvalidTimeRangeError
	}

	now := utils.NowUTC()
	event.UpdatedAt = now

	replace := req.Attendees != nil
	var attendees []entity.Attendee
	if replace {
		attendees = toAttendeeEntities(*req.Attendees, event.ID)
		event.Attendees = attendees
	}

	audit := &entity.CalendarAuditEntry{
		ActorID:     actor.Email,
		ActorName:   actor.Name,
		Action:      entity.AuditActionUpdated,
		BeforeState: before,
		AfterState:  snapshotEvent(event),
		CreatedAt:   now,
	}

	if err := s.EventRepo.UpdateWithAudit(event, replace, attendees, audit); err != nil {
		log.Errorf("failed to update event %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toEventResponse(event), nil
}

// ConfirmEvent applies the external scheduled -> approved confirmation.
func (s *DefaultEventService) ConfirmEvent(id int, actor *utils.TokenData) apierror.ErrorResponse {
	return s.transition(id, []string{entity.EventStatusScheduled}, entity.EventStatusApproved, entity.AuditActionConfirmed, actor, true)
}

// CancelEvent soft-deletes: the row and its attendees stay, only the status
// flips. Cancelled is terminal.
func (s *DefaultEventService) CancelEvent(id int, actor *utils.TokenData) apierror.ErrorResponse {
	allowed := []string{entity.EventStatusScheduled, entity.EventStatusApproved}
	return s.transition(id, allowed, entity.EventStatusCancelled, entity.AuditActionCancelled, actor, false)
}

func (s *DefaultEventService) transition(id int, allowedFrom []string, to, action string, actor *utils.TokenData, withAfter bool) apierror.ErrorResponse {
	event, err := s.EventRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch event %d: %v", id, err)
		return apierror.InternalServerError
	}
	if event == nil {
		return apierror.NotFoundError
	}

	now := utils.NowUTC()
	audit := &entity.CalendarAuditEntry{
		ActorID:     actor.Email,
		ActorName:   actor.Name,
		Action:      action,
		BeforeState: snapshotEvent(event),
		CreatedAt:   now,
	}
	if withAfter {
		after := *event
		after.Status = to
		audit.AfterState = snapshotEvent(&after)
	}

	err = s.EventRepo.TransitionStatus(id, allowedFrom, to, now, audit)
	if errors.Is(err, repository.ErrStaleStatus) {
		return apierror.ConflictError
	}
	if err != nil {
		log.Errorf("failed to transition event %d to %s: %v", id, to, err)
		return apierror.InternalServerError
	}
	return nil
}

func (s *DefaultEventService) GetEventAudit(id int) ([]*AuditEntryResponse, apierror.ErrorResponse) {
	event, err := s.EventRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch event %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if event == nil {
		return nil, apierror.NotFoundError
	}

	entries, err := s.AuditRepo.ListCalendar(id)
	if err != nil {
		log.Errorf("failed to list audit for event %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*AuditEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = &AuditEntryResponse{
			SubjectID:   e.EventID,
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

func toAttendeeEntities(reqs []AttendeeRequest, eventID int) []entity.Attendee {
	attendees := make([]entity.Attendee, len(reqs))
	for i, a := range reqs {
		attendees[i] = entity.Attendee{
			EventID:        eventID,
			AttendeeType:   defaultString(a.AttendeeType, entity.AttendeeTypeEmployee),
			AttendeeID:     a.AttendeeID,
			Name:           a.Name,
			Email:          a.Email,
			ResponseStatus: a.ResponseStatus,
		}
	}
	return attendees
}

func toEventResponse(event *entity.CalendarEvent) *EventResponse {
	attendees := make([]AttendeeResponse, len(event.Attendees))
	for i, a := range event.Attendees {
		attendees[i] = AttendeeResponse{
			AttendeeType:   a.AttendeeType,
			AttendeeID:     a.AttendeeID,
			Name:           a.Name,
			Email:          a.Email,
			ResponseStatus: a.ResponseStatus,
		}
	}

	return &EventResponse{
		ID:               event.ID,
		Title:            event.Title,
		Type:             event.Type,
		StartTime:        utils.FormatEpoch(event.StartsAt),
		EndTime:          utils.FormatEpoch(event.EndsAt),
		AllDay:           event.AllDay,
		Status:           event.Status,
		Description:      event.Description,
		Location:         event.Location,
		OrganizerID:      event.OrganizerID,
		GoogleMeetURL:    event.GoogleMeetURL,
		GoogleCalendarID: event.GoogleCalendarID,
		Meta:             unmarshalMeta(event.Meta),
		CreatedAt:        utils.FormatEpoch(event.CreatedAt),
		UpdatedAt:        utils.FormatEpoch(event.UpdatedAt),
		Attendees:        attendees,
	}
}

// snapshotEvent serializes the full event for audit before/after states.
func snapshotEvent(event *entity.CalendarEvent) *string {
	raw, err := json.Marshal(toEventResponse(event))
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}

func marshalMeta(meta map[string]any) *string {
	if len(meta) == 0 {
		return nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}

func unmarshalMeta(meta *string) map[string]any {
	if meta == nil || *meta == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(*meta), &m); err != nil {
		return nil
	}
	return m
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
