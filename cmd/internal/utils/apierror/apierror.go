package apierror

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"net/http"
)

// ErrorResponse is what services hand back to the routes: an error that
// knows its HTTP status and serializes as {"error": "..."}.
type ErrorResponse interface {
	error
	Code() int
}

type SimpleError struct {
	code    int
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func NewSimple(code int, message string) *SimpleError {
	return &SimpleError{code: code, Message: message}
}

func (e *SimpleError) Error() string {
	return e.Message
}

func (e *SimpleError) Code() int {
	return e.code
}

var (
	InternalServerError   = NewSimple(http.StatusInternalServerError, "internal server error")
	MissingAuthTokenError = NewSimple(http.StatusUnauthorized, "token not provided")
	InvalidAuthTokenError = NewSimple(http.StatusUnauthorized, "token invalid")
	NotProviderError      = NewSimple(http.StatusUnauthorized, "user is not a provider")

	ValidationFailsError = NewSimple(http.StatusUnauthorized, "Validation fails")
	InvalidProviderError = NewSimple(http.StatusUnauthorized, "invalid provider")
	SelfBookingError     = NewSimple(http.StatusUnauthorized, "self-booking")
	PastDateError        = NewSimple(http.StatusBadRequest, "past date")
	SlotTakenError       = NewSimple(http.StatusBadRequest, "slot unavailable")

	NotFoundError             = NewSimple(http.StatusNotFound, "appointment not found")
	PermissionError           = NewSimple(http.StatusForbidden, "permission")
	AlreadyCanceledError      = NewSimple(http.StatusBadRequest, "appointment already canceled")
	TooLateError              = NewSimple(http.StatusBadRequest, "too late to cancel")
	NotificationNotFoundError = NewSimple(http.StatusNotFound, "notification not found")
	ProviderNotFoundError     = NewSimple(http.StatusNotFound, "provider not found")
)

func NewMissingParamError(name string) *SimpleError {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("missing parameter: %s", name))
}

func NewInvalidParamTypeError(name, typ string) *SimpleError {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("parameter %s must be of type %s", name, typ))
}

// FromValidationError converts validator output into a "Validation fails"
// response listing the failed rule per json field.
func FromValidationError(err error) ErrorResponse {
	resp := &SimpleError{
		code:    ValidationFailsError.code,
		Message: ValidationFailsError.Message,
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return resp
	}

	resp.Fields = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		resp.Fields[fe.Field()] = fe.Tag()
	}
	return resp
}
