// Package apperror provides a typed application error with an HTTP
// status and stable code, convertible to an echo response at the
// request boundary.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error represents an application error with HTTP status and error code.
type Error struct {
	HTTPStatus int
	Code       string
	Message    string
	Internal   error
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the internal error so errors.Is/As work across the boundary.
func (e *Error) Unwrap() error {
	return e.Internal
}

// ToEchoError converts the app error to an echo.HTTPError.
func (e *Error) ToEchoError() *echo.HTTPError {
	body := map[string]any{
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	return echo.NewHTTPError(e.HTTPStatus, map[string]any{"error": body})
}

// WithInternal returns a copy of the error with an internal cause attached.
func (e *Error) WithInternal(err error) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   err,
		Details:    e.Details,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    message,
		Internal:   e.Internal,
		Details:    e.Details,
	}
}

// WithDetails returns a copy of the error with details attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   e.Internal,
		Details:    details,
	}
}

// New creates a new application error.
func New(status int, code, message string) *Error {
	return &Error{HTTPStatus: status, Code: code, Message: message}
}

// Common error kinds named in the error-handling design.
var (
	ErrBadRequest = New(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrNotFound   = New(http.StatusNotFound, "not_found", "Resource not found")
	ErrConflict   = New(http.StatusConflict, "conflict", "Resource already exists")
	ErrDatabase   = New(http.StatusInternalServerError, "database_error", "Database operation failed")
	ErrInternal   = New(http.StatusInternalServerError, "internal_error", "An internal error occurred")
)

// NewBadRequest creates a bad-request error with a custom message.
func NewBadRequest(message string) *Error {
	return ErrBadRequest.WithMessage(message)
}

// NewNotFound creates a not-found error for a resource type and identifier.
func NewNotFound(resourceType, id string) *Error {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s %q not found", resourceType, id))
}

// AsAppError unwraps err into an *Error if possible.
func AsAppError(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
