package service

import (
	"encoding/json"
	"hrdash/cmd/internal/domain/entity"
	"hrdash/cmd/internal/integration/webhook"
	"hrdash/cmd/internal/utils"
	"hrdash/cmd/internal/utils/apierror"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type OutboxRepository interface {
	Create(entry *entity.OutboxEntry) error
	FindByID(id int) (*entity.OutboxEntry, error)
	FindByEvent(eventID int) ([]*entity.OutboxEntry, error)
	MarkSent(id int, messageID string, sentAt int64) error
	MarkFailed(id int, errMsg string) error
	Requeue(id int) error
}

// RetryMode picks how Resend treats a failed entry. `new-entry` queues a
// fresh row per attempt; `in-place` resets and redelivers the same row.
const (
	RetryModeNewEntry = "new-entry"
	RetryModeInPlace  = "in-place"
)

type SendNotificationRequest struct {
	EventID    int      `json:"eventId" validate:"required"`
	Recipients []string `json:"recipients" validate:"omitempty,dive,email"`
	Subject    *string  `json:"subject" validate:"omitempty,max=200"`
	Message    *string  `json:"message" validate:"omitempty,max=4000"`
}

type OutboxResponse struct {
	ID         int      `json:"id"`
	EventID    int      `json:"eventId"`
	Channel    string   `json:"channel"`
	Subject    string   `json:"subject"`
	Recipients []string `json:"recipients"`
	Payload    string   `json:"payload"`
	Status     string   `json:"status"`
	MessageID  *string  `json:"messageId,omitempty"`
	Error      *string  `json:"error,omitempty"`
	CreatedAt  string   `json:"createdAt"`
	SentAt     *string  `json:"sentAt,omitempty"`
}

type DefaultNotificationService struct {
	OutboxRepo  OutboxRepository
	EventRepo   EventRepository
	Delivery    webhook.DeliveryClient
	Validate    *validator.Validate
	DeliveryURL string
	RetryMode   string
}

func NewNotificationService(outboxRepo OutboxRepository, eventRepo EventRepository, delivery webhook.DeliveryClient, validate *validator.Validate, deliveryURL, retryMode string) *DefaultNotificationService {
	if retryMode != RetryModeInPlace {
		retryMode = RetryModeNewEntry
	}
	return &DefaultNotificationService{
		OutboxRepo:  outboxRepo,
		EventRepo:   eventRepo,
		Delivery:    delivery,
		Validate:    validate,
		DeliveryURL: deliveryURL,
		RetryMode:   retryMode,
	}
}

// QueueAndSend durably queues the notification, then attempts delivery. The
// entry is inserted BEFORE the relay call so a crash mid-delivery leaves a
// queued record, never a lost send. Delivery failure is recorded on the
// entry and still reported as success to the caller.
func (s *DefaultNotificationService) QueueAndSend(req *SendNotificationRequest, actor *utils.TokenData) (*OutboxResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	event, err := s.EventRepo.FindByID(req.EventID)
	if err != nil {
		log.Errorf("failed to fetch event %d for notification: %v", req.EventID, err)
		return nil, apierror.InternalServerError
	}
	if event == nil {
		return nil, apierror.NotFoundError
	}

	recipients := resolveRecipients(req.Recipients, event)
	if len(recipients) == 0 {
		return nil, apierror.NoRecipientsError
	}

	subject := "Calendar update: " + event.Title
	if req.Subject != nil && *req.Subject != "" {
		subject = *req.Subject
	}

	payload := map[string]any{
		"subject":    subject,
		"recipients": recipients,
		"event":      toEventResponse(event),
		"sentBy":     actor.Email,
	}
	if req.Message != nil {
		payload["message"] = *req.Message
	}
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to marshal notification payload: %v", err)
		return nil, apierror.InternalServerError
	}
	rawRecipients, _ := json.Marshal(recipients)

	entry := &entity.OutboxEntry{
		EventID:    event.ID,
		Channel:    "webhook",
		Subject:    subject,
		Recipients: string(rawRecipients),
		Payload:    string(rawPayload),
		Status:     entity.OutboxStatusQueued,
		CreatedAt:  utils.NowUTC(),
	}
	if err := s.OutboxRepo.Create(entry); err != nil {
		log.Errorf("failed to queue notification for event %d: %v", event.ID, err)
		return nil, apierror.InternalServerError
	}

	s.deliver(entry)
	return toOutboxResponse(entry), nil
}

// Resend re-attempts a previously created entry. Sent entries are terminal
// and always clone into a new row; failed entries follow the configured
// retry mode; queued entries just get their pending delivery attempted.
func (s *DefaultNotificationService) Resend(id int, actor *utils.TokenData) (*OutboxResponse, apierror.ErrorResponse) {
	entry, err := s.OutboxRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch outbox entry %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if entry == nil {
		return nil, apierror.NotFoundError
	}

	switch {
	case entry.Status == entity.OutboxStatusQueued:
		// never dispatched, just try now
		s.deliver(entry)
		return toOutboxResponse(entry), nil

	case entry.Status == entity.OutboxStatusFailed && s.RetryMode == RetryModeInPlace:
		if err := s.OutboxRepo.Requeue(id); err != nil {
			return nil, apierror.ConflictError
		}
		entry.Status = entity.OutboxStatusQueued
		entry.Error = nil
		s.deliver(entry)
		return toOutboxResponse(entry), nil

	default:
		clone := &entity.OutboxEntry{
			EventID:    entry.EventID,
			Channel:    entry.Channel,
			Subject:    entry.Subject,
			Recipients: entry.Recipients,
			Payload:    entry.Payload,
			Status:     entity.OutboxStatusQueued,
			CreatedAt:  utils.NowUTC(),
		}
		if err := s.OutboxRepo.Create(clone); err != nil {
			log.Errorf("failed to clone outbox entry %d: %v", id, err)
			return nil, apierror.InternalServerError
		}
		s.deliver(clone)
		return toOutboxResponse(clone), nil
	}
}

func (s *DefaultNotificationService) ListByEvent(eventID int) ([]*OutboxResponse, apierror.ErrorResponse) {
	entries, err := s.OutboxRepo.FindByEvent(eventID)
	if err != nil {
		log.Errorf("failed to list outbox for event %d: %v", eventID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*OutboxResponse, len(entries))
	for i, e := range entries {
		resp[i] = toOutboxResponse(e)
	}
	return resp, nil
}

// deliver pushes one queued entry through the relay and records the outcome
// on the same row. With no configured target the entry simply stays queued.
func (s *DefaultNotificationService) deliver(entry *entity.OutboxEntry) {
	if s.DeliveryURL == "" {
		return
	}

	result, err := s.Delivery.Send(s.DeliveryURL, json.RawMessage(entry.Payload))
	if err != nil || !result.OK {
		msg := "delivery failed"
		if err != nil {
			msg = err.Error()
		} else if result.Error != "" {
			msg = result.Error
		}
		if uerr := s.OutboxRepo.MarkFailed(entry.ID, msg); uerr != nil {
			log.Errorf("failed to record delivery failure for outbox %d: %v", entry.ID, uerr)
			return
		}
		entry.Status = entity.OutboxStatusFailed
		entry.Error = &msg
		return
	}

	messageID := result.ID
	if messageID == "" {
		messageID = uuid.NewString()
	}
	sentAt := utils.NowUTC()
	if uerr := s.OutboxRepo.MarkSent(entry.ID, messageID, sentAt); uerr != nil {
		log.Errorf("failed to record delivery for outbox %d: %v", entry.ID, uerr)
		return
	}
	entry.Status = entity.OutboxStatusSent
	entry.MessageID = &messageID
	entry.Error = nil
	entry.SentAt = &sentAt
}

// resolveRecipients unions the explicit recipients with everyone the event
// itself knows about: its attendees plus candidate/panel emails stashed in
// meta. Values are trimmed, then deduped case-sensitively in first-seen order.
func resolveRecipients(explicit []string, event *entity.CalendarEvent) []string {
	var out []string
	seen := map[string]bool{}
	add := func(email string) {
		email = strings.TrimSpace(email)
		if email == "" || seen[email] {
			return
		}
		seen[email] = true
		out = append(out, email)
	}

	for _, email := range explicit {
		add(email)
	}
	for _, a := range event.Attendees {
		add(a.Email)
	}

	meta := unmarshalMeta(event.Meta)
	if candidate, ok := meta["candidateEmail"].(string); ok {
		add(candidate)
	}
	for _, key := range []string{"panelEmails", "attendeeEmails"} {
		if list, ok := meta[key].([]any); ok {
			for _, v := range list {
				if email, ok := v.(string); ok {
					add(email)
				}
			}
		}
	}
	return out
}

func toOutboxResponse(entry *entity.OutboxEntry) *OutboxResponse {
	var recipients []string
	_ = json.Unmarshal([]byte(entry.Recipients), &recipients)

	resp := &OutboxResponse{
		ID:         entry.ID,
		EventID:    entry.EventID,
		Channel:    entry.Channel,
		Subject:    entry.Subject,
		Recipients: recipients,
		Payload:    entry.Payload,
		Status:     entry.Status,
		MessageID:  entry.MessageID,
		Error:      entry.Error,
		CreatedAt:  utils.FormatEpoch(entry.CreatedAt),
	}
	if entry.SentAt != nil {
		sentAt := utils.FormatEpoch(*entry.SentAt)
		resp.SentAt = &sentAt
	}
	return resp
}
