package routes

import (
	"hrdash/cmd/internal/service"
	"hrdash/cmd/internal/utils"
	"hrdash/cmd/internal/utils/apierror"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type EventService interface {
	GetEvent(id int) (*service.EventResponse, apierror.ErrorResponse)
	ListEvents(from, to int64) ([]*service.EventResponse, apierror.ErrorResponse)
	CreateEvent(req *service.CreateEventRequest, actor *utils.TokenData) (*service.EventResponse, apierror.ErrorResponse)
	UpdateEvent(id int, req *service.UpdateEventRequest, actor *utils.TokenData) (*service.EventResponse, apierror.ErrorResponse)
	ConfirmEvent(id int, actor *utils.TokenData) apierror.ErrorResponse
	CancelEvent(id int, actor *utils.TokenData) apierror.ErrorResponse
	GetEventAudit(id int) ([]*service.AuditEntryResponse, apierror.ErrorResponse)
}

type DefaultEventRoute struct {
	EventService EventService
}

func NewEventDefault(eventService EventService) *DefaultEventRoute {
	return &DefaultEventRoute{EventService: eventService}
}

func (e *DefaultEventRoute) GetEvents(c echo.Context) error {
	from, to, err := parseRangeParams(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "Could not understand from/to range")
		return c.JSON(errResp.Code(), errResp)
	}

	events, apierr := e.EventService.ListEvents(from, to)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"events": events}
	return c.JSON(http.StatusOK, &resp)
}

func (e *DefaultEventRoute) GetEvent(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	event, apierr := e.EventService.GetEvent(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, event)
}

func (e *DefaultEventRoute) CreateEvent(c echo.Context) error {
	var req service.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	event, apierr := e.EventService.CreateEvent(&req, data)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, event)
}

func (e *DefaultEventRoute) UpdateEvent(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	var req service.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	event, apierr := e.EventService.UpdateEvent(id, &req, data)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, event)
}

func (e *DefaultEventRoute) ConfirmEvent(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	if apierr := e.EventService.ConfirmEvent(id, data); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (e *DefaultEventRoute) CancelEvent(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	if apierr := e.EventService.CancelEvent(id, data); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (e *DefaultEventRoute) GetEventAudit(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	entries, apierr := e.EventService.GetEventAudit(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"audit": entries}
	return c.JSON(http.StatusOK, &resp)
}

func parseIDParam(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

// parseRangeParams reads the from/to RFC3339 query params, defaulting to a
// window around now when absent.
func parseRangeParams(c echo.Context) (int64, int64, error) {
	now := utils.NowUTC()
	from := now - (30 * 24 * time.Hour).Milliseconds()
	to := now + (90 * 24 * time.Hour).Milliseconds()

	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := utils.FromEpoch(raw)
		if err != nil {
			return 0, 0, err
		}
		from = parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := utils.FromEpoch(raw)
		if err != nil {
			return 0, 0, err
		}
		to = parsed
	}
	return from, to, nil
}
