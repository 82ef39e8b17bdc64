package routes

import (
	"hrdash/cmd/internal/service"
	"hrdash/cmd/internal/utils"
	"hrdash/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type NotificationService interface {
	QueueAndSend(req *service.SendNotificationRequest, actor *utils.TokenData) (*service.OutboxResponse, apierror.ErrorResponse)
	Resend(id int, actor *utils.TokenData) (*service.OutboxResponse, apierror.ErrorResponse)
	ListByEvent(eventID int) ([]*service.OutboxResponse, apierror.ErrorResponse)
}

type DefaultNotificationRoute struct {
	NotificationService NotificationService
}

func NewNotificationDefault(notificationService NotificationService) *DefaultNotificationRoute {
	return &DefaultNotificationRoute{NotificationService: notificationService}
}

func (n *DefaultNotificationRoute) SendNotification(c echo.Context) error {
	var req service.SendNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	entry, apierr := n.NotificationService.QueueAndSend(&req, data)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (n *DefaultNotificationRoute) ResendNotification(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	entry, apierr := n.NotificationService.Resend(id, data)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, entry)
}

func (n *DefaultNotificationRoute) GetNotifications(c echo.Context) error {
	eventID := parseOptionalIntParam(c, "eventId")
	if eventID == 0 {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("eventId"))
	}

	entries, apierr := n.NotificationService.ListByEvent(eventID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"notifications": entries}
	return c.JSON(http.StatusOK, &resp)
}
