package routes

import (
	"hrdash/cmd/internal/service"
	"hrdash/cmd/internal/utils"
	"hrdash/cmd/internal/utils/apierror"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type PTOService interface {
	Submit(req *service.SubmitPTORequest, actor *utils.TokenData) (*service.PTOResponse, apierror.ErrorResponse)
	Approve(id int, req *service.PTODecisionRequest, actor *utils.TokenData) (*service.PTOResponse, apierror.ErrorResponse)
	Reject(id int, req *service.PTODecisionRequest, actor *utils.TokenData) (*service.PTOResponse, apierror.ErrorResponse)
	Cancel(id int, actor *utils.TokenData) (*service.PTOResponse, apierror.ErrorResponse)
	GetRequest(id int) (*service.PTOResponse, apierror.ErrorResponse)
	ListRequests(employeeID, managerID int, status string) ([]*service.PTOResponse, apierror.ErrorResponse)
	GetRequestAudit(id int) ([]*service.AuditEntryResponse, apierror.ErrorResponse)
}

type DefaultPTORoute struct {
	PTOService PTOService
}

func NewPTODefault(ptoService PTOService) *DefaultPTORoute {
	return &DefaultPTORoute{PTOService: ptoService}
}

func (p *DefaultPTORoute) SubmitRequest(c echo.Context) error {
	var req service.SubmitPTORequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	request, apierr := p.PTOService.Submit(&req, data)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, request)
}

func (p *DefaultPTORoute) GetRequests(c echo.Context) error {
	employeeID := parseOptionalIntParam(c, "employeeId")
	managerID := parseOptionalIntParam(c, "managerId")
	status := c.QueryParam("status")

	requests, apierr := p.PTOService.ListRequests(employeeID, managerID, status)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"requests": requests}
	return c.JSON(http.StatusOK, &resp)
}

func (p *DefaultPTORoute) GetRequest(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	request, apierr := p.PTOService.GetRequest(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, request)
}

func (p *DefaultPTORoute) ApproveRequest(c echo.Context) error {
	return p.decide(c, p.PTOService.Approve)
}

func (p *DefaultPTORoute) RejectRequest(c echo.Context) error {
	return p.decide(c, p.PTOService.Reject)
}

func (p *DefaultPTORoute) decide(c echo.Context, decision func(int, *service.PTODecisionRequest, *utils.TokenData) (*service.PTOResponse, apierror.ErrorResponse)) error {
	id, err := parseIDParam(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	var req service.PTODecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	request, apierr := decision(id, &req, data)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, request)
}

func (p *DefaultPTORoute) CancelRequest(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	request, apierr := p.PTOService.Cancel(id, data)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, request)
}

func (p *DefaultPTORoute) GetRequestAudit(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	entries, apierr := p.PTOService.GetRequestAudit(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"audit": entries}
	return c.JSON(http.StatusOK, &resp)
}

func parseOptionalIntParam(c echo.Context, name string) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return val
}
