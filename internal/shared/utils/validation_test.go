package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomag/echomag/internal/shared/errors"
)

type listRequest struct {
	Days  int `json:"days" validate:"gte=0,lte=365"`
	Limit int `mapstructure:"limit" validate:"gte=1"`
}

func TestValidateStruct_UsesTagNames(t *testing.T) {
	err := ValidateStruct(&listRequest{Days: -1, Limit: 0})
	require.Error(t, err)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Details, "days must be greater than or equal to 0")
	assert.Contains(t, appErr.Details, "limit must be greater than or equal to 1")

	assert.NoError(t, ValidateStruct(&listRequest{Days: 7, Limit: 5}))
}

func TestParseOptionalIntQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		url     string
		want    *int
		wantErr bool
	}{
		{"missing", "/x", nil, false},
		{"empty", "/x?days=", nil, false},
		{"value", "/x?days=7", intPtr(7), false},
		{"negative", "/x?days=-3", intPtr(-3), false},
		{"not a number", "/x?days=week", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)

			got, err := ParseOptionalIntQuery(c, "days")
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorResponseWithError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	ErrorResponseWithError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	ErrorResponseWithError(c, errors.NewConflictError("expiry cycle already in progress"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "expiry cycle already in progress")
}

func intPtr(v int) *int { return &v }
