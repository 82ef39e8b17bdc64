package service

import (
	"hrdash/cmd/internal/schedule"
	"hrdash/cmd/internal/utils"
	"hrdash/cmd/internal/utils/apierror"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type AvailabilityRequest struct {
	StartDate       string   `json:"startDate" validate:"required,isodate"`
	EndDate         string   `json:"endDate" validate:"required,isodate"`
	DurationMinutes int      `json:"durationMinutes" validate:"required,min=15,max=480"`
	AttendeeEmails  []string `json:"attendeeEmails" validate:"required,min=1,dive,email"`
}

type SlotResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type AttendeeAvailabilityResponse struct {
	Email          string `json:"email"`
	Available      bool   `json:"available"`
	ConflictReason string `json:"conflictReason,omitempty"`
}

type SlotAvailabilityResponse struct {
	StartTime      string                         `json:"startTime"`
	EndTime        string                         `json:"endTime"`
	AvailableCount int                            `json:"availableCount"`
	Attendees      []AttendeeAvailabilityResponse `json:"attendees"`
}

type DefaultAvailabilityService struct {
	EventRepo EventRepository
	HoursRepo BusinessHoursRepository
	Validate  *validator.Validate
}

func NewAvailabilityService(eventRepo EventRepository, hoursRepo BusinessHoursRepository, validate *validator.Validate) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{EventRepo: eventRepo, HoursRepo: hoursRepo, Validate: validate}
}

// GetSlots returns the bare time grid for a date range, nobody's busy
// schedule considered.
func (s *DefaultAvailabilityService) GetSlots(startDate, endDate string, durationMinutes int) ([]*SlotResponse, apierror.ErrorResponse) {
	slots, apierr := s.generate(startDate, endDate, durationMinutes)
	if apierr != nil {
		return nil, apierr
	}

	resp := make([]*SlotResponse, len(slots))
	for i, slot := range slots {
		resp[i] = &SlotResponse{
			StartTime: slot.Start.Format(time.RFC3339),
			EndTime:   slot.End.Format(time.RFC3339),
		}
	}
	return resp, nil
}

// CheckAvailability generates the grid and intersects it with the existing
// events of the requested attendees.
func (s *DefaultAvailabilityService) CheckAvailability(req *AvailabilityRequest) ([]*SlotAvailabilityResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	slots, apierr := s.generate(req.StartDate, req.EndDate, req.DurationMinutes)
	if apierr != nil {
		return nil, apierr
	}
	if len(slots) == 0 {
		return []*SlotAvailabilityResponse{}, nil
	}

	from := slots[0].Start.UnixMilli()
	to := slots[len(slots)-1].End.UnixMilli()
	events, err := s.EventRepo.FindOverlapping(from, to)
	if err != nil {
		log.Errorf("failed to fetch events for availability [%d - %d]: %v", from, to, err)
		return nil, apierror.InternalServerError
	}

	busy := make([]schedule.BusyEvent, len(events))
	for i, ev := range events {
		emails := make([]string, len(ev.Attendees))
		for j, a := range ev.Attendees {
			emails[j] = a.Email
		}
		busy[i] = schedule.BusyEvent{
			Title:          ev.Title,
			Start:          time.UnixMilli(ev.StartsAt).UTC(),
			End:            time.UnixMilli(ev.EndsAt).UTC(),
			Status:         ev.Status,
			AttendeeEmails: emails,
		}
	}

	checked := schedule.CheckAvailability(slots, busy, req.AttendeeEmails)
	resp := make([]*SlotAvailabilityResponse, len(checked))
	for i, sa := range checked {
		attendees := make([]AttendeeAvailabilityResponse, len(sa.Attendees))
		for j, a := range sa.Attendees {
			attendees[j] = AttendeeAvailabilityResponse{
				Email:          a.Email,
				Available:      a.Available,
				ConflictReason: a.ConflictReason,
			}
		}
		resp[i] = &SlotAvailabilityResponse{
			StartTime:      sa.Slot.Start.Format(time.RFC3339),
			EndTime:        sa.Slot.End.Format(time.RFC3339),
			AvailableCount: sa.AvailableCount,
			Attendees:      attendees,
		}
	}
	return resp, nil
}

func (s *DefaultAvailabilityService) generate(startDate, endDate string, durationMinutes int) ([]schedule.Slot, apierror.ErrorResponse) {
	start, err := utils.ParseDate(startDate)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}
	end, err := utils.ParseDate(endDate)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}
	if start.After(end) {
		return nil, apierror.InvalidDateRangeError
	}
	if durationMinutes <= 0 {
		return nil, apierror.NewSimple(422, "durationMinutes must be positive")
	}

	hours, herr := s.HoursRepo.FindAll()
	if herr != nil {
		log.Errorf("failed to load business hours: %v", herr)
		return nil, apierror.InternalServerError
	}

	return schedule.GenerateSlots(start, end, durationMinutes, hours), nil
}
