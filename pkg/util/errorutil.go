package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError is the error shape every API response is rendered from.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithCause attaches the underlying error, kept for logs but never rendered.
func (e *DomainError) WithCause(err error) *DomainError {
	e.Err = err
	return e
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports bad input; details usually map field to problem.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError("NOT_FOUND", resource+" not found", http.StatusNotFound, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewConflict reports a state clash such as a duplicate registration or an
// attendee already inside.
func NewConflict(code, message string, details map[string]any) error {
	if code == "" {
		code = "CONFLICT"
	}
	return NewDomainError(code, message, http.StatusConflict, details)
}

// NewGone reports a resource that existed but can no longer be used.
func NewGone(code, message string, details map[string]any) error {
	return NewDomainError(code, message, http.StatusGone, details)
}

// NewUnavailable reports a dependency failure the caller may retry:
// the camera, the image host or an attendance write.
func NewUnavailable(code, message string, details map[string]any) *DomainError {
	return NewDomainError(code, message, http.StatusServiceUnavailable, details)
}

func NewInternalError(err error) error {
	return NewDomainError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError, nil).WithCause(err)
}

// ToDomainError finds the DomainError in err's chain; anything else is internal.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewDomainError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError, nil).WithCause(err)
}

// HasCode reports whether err carries a DomainError with code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
