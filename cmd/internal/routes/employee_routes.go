package routes

import (
	"hrdash/cmd/internal/service"
	"hrdash/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type EmployeeService interface {
	GetEmployees() ([]*service.EmployeeResponse, apierror.ErrorResponse)
	GetEmployee(id int) (*service.EmployeeResponse, apierror.ErrorResponse)
}

type DefaultEmployeeRoute struct {
	EmployeeService EmployeeService
}

func NewEmployeeDefault(employeeService EmployeeService) *DefaultEmployeeRoute {
	return &DefaultEmployeeRoute{EmployeeService: employeeService}
}

func (e *DefaultEmployeeRoute) GetEmployees(c echo.Context) error {
	emps, apierr := e.EmployeeService.GetEmployees()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"employees": emps}
	return c.JSON(http.StatusOK, &resp)
}

func (e *DefaultEmployeeRoute) GetEmployee(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	emp, apierr := e.EmployeeService.GetEmployee(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, emp)
}
