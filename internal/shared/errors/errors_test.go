package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantCode int
	}{
		{"validation", NewValidationError("horizon_days must be non-negative"), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("account not found"), ErrorTypeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("expiry cycle already in progress"), ErrorTypeConflict, http.StatusConflict},
		{"forbidden", NewForbiddenError("admin role required"), ErrorTypeForbidden, http.StatusForbidden},
		{"unavailable", NewUnavailableError("account store unavailable"), ErrorTypeUnavailable, http.StatusServiceUnavailable},
		{"internal", NewInternalError("boom"), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantCode, tt.err.Code)
		})
	}
}

func TestAppError_ErrorIncludesDetails(t *testing.T) {
	err := NewUnavailableError("account store unavailable", "dial tcp: refused")
	assert.Equal(t, "service_unavailable: account store unavailable (dial tcp: refused)", err.Error())
	assert.Equal(t, "not_found: missing", NewNotFoundError("missing").Error())
}

func TestGetAppError_UnwrapsChains(t *testing.T) {
	wrapped := fmt.Errorf("statistics: %w", NewUnavailableError("account store unavailable"))

	assert.True(t, IsAppError(wrapped))
	assert.True(t, IsUnavailableError(wrapped))
	assert.False(t, IsValidationError(wrapped))
	assert.Nil(t, GetAppError(fmt.Errorf("plain")))
}
