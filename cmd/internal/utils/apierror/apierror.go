package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the error contract between services and routes. Values
// serialize directly as the JSON error body.
type ErrorResponse interface {
	error
	Code() int
}

type simpleError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (s *simpleError) Code() int {
	return s.StatusCode
}

func (s *simpleError) Error() string {
	return s.Message
}

func NewSimple(code int, message string) ErrorResponse {
	return &simpleError{StatusCode: code, Message: message}
}

func NewMissingParamError(param string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Missing required parameter '%s'", param))
}

var (
	InternalServerError      = NewSimple(http.StatusInternalServerError, "Something went wrong")
	MalformedBodyError       = NewSimple(http.StatusBadRequest, "Could not understand request body")
	InvalidAuthTokenError    = NewSimple(http.StatusUnauthorized, "Invalid or missing auth token")
	NotFoundError            = NewSimple(http.StatusNotFound, "Resource not found")
	UnauthorizedError        = NewSimple(http.StatusForbidden, "You are not allowed to perform this action")
	ConflictError            = NewSimple(http.StatusConflict, "The resource changed underneath you, re-fetch and retry")
	InsufficientBalanceError = NewSimple(http.StatusConflict, "Not enough PTO balance for this request")
	NoRecipientsError        = NewSimple(http.StatusUnprocessableEntity, "Notification has no recipients")
	InvalidTimeRangeError    = NewSimple(http.StatusUnprocessableEntity, "startTime must be before endTime")
	InvalidDateRangeError    = NewSimple(http.StatusUnprocessableEntity, "startDate must not be after endDate")
)

type validationError struct {
	StatusCode int               `json:"-"`
	Message    string            `json:"error"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func (v *validationError) Code() int {
	return v.StatusCode
}

func (v *validationError) Error() string {
	return v.Message
}

// FromValidationError flattens validator.v10 field errors into a 422 body.
func FromValidationError(err error) ErrorResponse {
	resp := &validationError{
		StatusCode: http.StatusUnprocessableEntity,
		Message:    "Validation failed",
		Fields:     map[string]string{},
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return resp
	}

	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		resp.Fields[field] = fmt.Sprintf("failed '%s' constraint", fe.Tag())
	}
	return resp
}
