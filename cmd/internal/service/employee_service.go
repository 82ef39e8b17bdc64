package service

import (
	"hrdash/cmd/internal/domain/entity"
	"hrdash/cmd/internal/utils"
	"hrdash/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

type EmployeeResponse struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department string  `json:"department"`
	PTOBalance float64 `json:"ptoBalance"`
	ManagerID  *int    `json:"managerId,omitempty"`
	CreatedAt  string  `json:"createdAt"`
	UpdatedAt  string  `json:"updatedAt"`
}

// DefaultEmployeeService is the read-only directory surface; balances are
// mutated solely through the PTO ledger.
type DefaultEmployeeService struct {
	EmployeeRepo EmployeeRepository
}

func NewEmployeeService(employeeRepo EmployeeRepository) *DefaultEmployeeService {
	return &DefaultEmployeeService{EmployeeRepo: employeeRepo}
}

func (s *DefaultEmployeeService) GetEmployees() ([]*EmployeeResponse, apierror.ErrorResponse) {
	emps, err := s.EmployeeRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch all employees: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*EmployeeResponse, len(emps))
	for i, emp := range emps {
		resp[i] = toEmployeeResponse(emp)
	}
	return resp, nil
}

func (s *DefaultEmployeeService) GetEmployee(id int) (*EmployeeResponse, apierror.ErrorResponse) {
	emp, err := s.EmployeeRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch employee %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if emp == nil {
		return nil, apierror.NotFoundError
	}
	return toEmployeeResponse(emp), nil
}

func toEmployeeResponse(emp *entity.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:         emp.ID,
		Name:       emp.Name,
		Email:      emp.Email,
		Department: emp.Department,
		PTOBalance: emp.PTOBalance,
		ManagerID:  emp.ManagerID,
		CreatedAt:  utils.FormatEpoch(emp.CreatedAt),
		UpdatedAt:  utils.FormatEpoch(emp.UpdatedAt),
	}
}
