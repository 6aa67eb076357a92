package apperror

import (
	"errors"
	"net/http"
)

// AppError is an error that knows the HTTP status it maps to. Message is
// always safe to show to the operator.
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	// logged server side, never rendered
	cause error
}

// FieldError points at one offending request field by its JSON name
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.cause }

// Is matches sentinels by status and message, so a copied sentinel still
// satisfies errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

var (
	ErrUnauthorized       = newError(http.StatusUnauthorized, "Unauthorized")
	ErrForbidden          = newError(http.StatusForbidden, "Forbidden")
	ErrInternalServer     = newError(http.StatusInternalServerError, "Internal server error")
	ErrInvalidCredentials = newError(http.StatusUnauthorized, "Invalid email or password")
	ErrInvalidToken       = newError(http.StatusUnauthorized, "Invalid token")
)

func newError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewValidationError is a 400 carrying one entry per invalid field
func NewValidationError(fieldErrors []FieldError) *AppError {
	e := newError(http.StatusBadRequest, "Validation failed")
	e.Errors = fieldErrors
	return e
}

// NewFieldError is a validation error for a single field
func NewFieldError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewNotFoundError reports a missing resource as "<resource> not found"
func NewNotFoundError(resource string) *AppError {
	return newError(http.StatusNotFound, resource+" not found")
}

// NewConflictError reports a unique constraint violation. The dashboard
// expects these as 400 with the domain message.
func NewConflictError(message string) *AppError {
	return newError(http.StatusBadRequest, message)
}

func NewBadRequestError(message string) *AppError {
	return newError(http.StatusBadRequest, message)
}

// NewInternalError hides cause behind a generic message
func NewInternalError(cause error) *AppError {
	e := newError(http.StatusInternalServerError, ErrInternalServer.Message)
	e.cause = cause
	return e
}

// IsNotFound reports whether err is a 404 AppError
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == http.StatusNotFound
}

// GetAppError returns the AppError in err's chain. Anything else becomes a
// generic internal error that keeps the cause for logging.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}
