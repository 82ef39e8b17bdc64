package routes

import (
	"hrdash/cmd/internal/service"
	"hrdash/cmd/internal/utils/apierror"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type AvailabilityService interface {
	GetSlots(startDate, endDate string, durationMinutes int) ([]*service.SlotResponse, apierror.ErrorResponse)
	CheckAvailability(req *service.AvailabilityRequest) ([]*service.SlotAvailabilityResponse, apierror.ErrorResponse)
}

type DefaultAvailabilityRoute struct {
	AvailabilityService AvailabilityService
}

func NewAvailabilityDefault(availabilityService AvailabilityService) *DefaultAvailabilityRoute {
	return &DefaultAvailabilityRoute{AvailabilityService: availabilityService}
}

// GetSlots returns the raw time grid: ?startDate=&endDate=&duration=
func (a *DefaultAvailabilityRoute) GetSlots(c echo.Context) error {
	startDate := c.QueryParam("startDate")
	if startDate == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("startDate"))
	}
	endDate := c.QueryParam("endDate")
	if endDate == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("endDate"))
	}

	duration := 60
	if raw := c.QueryParam("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			errResp := apierror.NewSimple(400, "duration is not a positive number")
			return c.JSON(errResp.Code(), errResp)
		}
		duration = parsed
	}

	slots, apierr := a.AvailabilityService.GetSlots(startDate, endDate, duration)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"slots": slots}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAvailabilityRoute) CheckAvailability(c echo.Context) error {
	var req service.AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	slots, apierr := a.AvailabilityService.CheckAvailability(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"slots": slots}
	return c.JSON(http.StatusOK, &resp)
}
