package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
	}{
		{"validation", NewFieldError("amount", "must not be negative"), http.StatusBadRequest},
		{"conflict", NewConflictError("duplicate"), http.StatusBadRequest},
		{"not found", NewNotFoundError("Terminal"), http.StatusNotFound},
		{"internal", NewInternalError(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestGetAppErrorHidesUnknownCauses(t *testing.T) {
	cause := errors.New("pq: connection refused")
	appErr := GetAppError(fmt.Errorf("list sales: %w", cause))

	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "Internal server error", appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}

func TestGetAppErrorUnwrapsWrapped(t *testing.T) {
	wrapped := fmt.Errorf("create sale: %w", NewNotFoundError("Terminal"))

	appErr := GetAppError(wrapped)
	assert.Equal(t, "Terminal not found", appErr.Message)
	assert.True(t, IsNotFound(wrapped))
}

func TestSentinelsMatchByStatusAndMessage(t *testing.T) {
	copied := *ErrForbidden
	assert.ErrorIs(t, fmt.Errorf("google login: %w", &copied), ErrForbidden)
	assert.NotErrorIs(t, ErrUnauthorized, ErrInvalidCredentials)
}
