package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
)

// Error kinds the transport layer maps to status codes. Services wrap these
// with context; callers test with errors.Is.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ServiceUnavailableError marks a transient dependency failure. The request
// may succeed if retried.
type ServiceUnavailableError struct {
	Service string
	Err     error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *ServiceUnavailableError) Unwrap() []error {
	return []error{ErrServiceUnavailable, e.Err}
}

func (e *ServiceUnavailableError) Retryable() bool { return true }

// TransitionError reports a decision attempted on a resource that is no
// longer pending.
type TransitionError struct {
	ResourceID string
	From       string
	To         string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("resource %s is already %s and cannot become %s", e.ResourceID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// RequestError is a user-fixable rejection of a request. It matches
// ErrValidationFailed and carries the offending fields, if any.
type RequestError struct {
	Message string
	Fields  validator.ValidationErrors
}

func (e *RequestError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("%s: %s %s", e.Message, e.Fields[0].Field, e.Fields[0].Message)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error { return ErrValidationFailed }

// invalid wraps validator output from Validate or Var.
func invalid(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		fields = validator.ValidationErrors{{Field: "request", Message: err.Error()}}
	}
	return &RequestError{Message: "Validation failed", Fields: fields}
}

// invalidf builds a rejection with a custom message and optional fields.
func invalidf(message string, fields ...validator.ValidationError) error {
	return &RequestError{Message: message, Fields: fields}
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}
