package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/bootstrap"
	"github.com/echomag/echomag/internal/infrastructure/auth"
	"github.com/echomag/echomag/internal/infrastructure/config"
	"github.com/echomag/echomag/internal/infrastructure/database"
	"github.com/echomag/echomag/internal/infrastructure/persistence/models"
	sharedConfig "github.com/echomag/echomag/internal/shared/config"
	"github.com/echomag/echomag/internal/shared/constants"
	"github.com/echomag/echomag/internal/shared/logger"
)

const (
	testTriggerToken = "cron-secret"
	testJWTSecret    = "admin-secret"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return setupRouterWith(t, nil)
}

func setupRouterWith(t *testing.T, adjust func(cfg *config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Database: sharedConfig.DatabaseConfig{
			Driver:         constants.DriverSQLite,
			SQLitePath:     filepath.Join(t.TempDir(), "echomag.db"),
			ConnectRetries: 1,
		},
		Expiry: sharedConfig.ExpiryConfig{
			Interval:           time.Hour,
			CycleTimeout:       10 * time.Second,
			WriteTimeout:       5 * time.Second,
			Concurrency:        1,
			DefaultHorizonDays: 30,
			StatsCacheTTL:      time.Minute,
			TriggerToken:       testTriggerToken,
		},
		Admin: sharedConfig.AdminConfig{
			RoleCacheSize: 16,
			RoleCacheTTL:  time.Minute,
			JWTSecret:     testJWTSecret,
			TokenTTL:      time.Minute,
		},
	}
	if adjust != nil {
		adjust(cfg)
	}

	ctx := context.Background()
	container, err := bootstrap.NewContainer(ctx, cfg, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close(context.Background()) })

	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)
	inFiveDays := now.Add(5 * 24 * time.Hour)
	lastMonth := now.AddDate(0, -1, 0)
	seed := []models.AccountModel{
		{UID: 1, Username: "admin", UserType: "admin", Plan: "free"},
		{UID: 2, Username: "reader", UserType: "user", Plan: "free"},
		{UID: 10, Username: "lapsed", UserType: "user", Plan: "echopro", PlanStart: &lastMonth, PlanExpiry: &yesterday},
		{UID: 11, Username: "renewing", UserType: "user", Plan: "echoproplus", PlanStart: &lastMonth, PlanExpiry: &inFiveDays},
	}
	require.NoError(t, database.Get().Create(&seed).Error)

	router := NewRouter(container, logger.NewNopLogger())
	router.SetupRoutes()
	return router.GetEngine()
}

func serve(engine *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	return serveBody(engine, method, path, nil, headers)
}

func serveBody(engine *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(constants.HeaderContentType, "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func adminHeaders(t *testing.T, uid int64) map[string]string {
	t.Helper()
	token, err := auth.NewJWTService(testJWTSecret, time.Minute).Generate(uid)
	require.NoError(t, err)
	return map[string]string{constants.HeaderAuthorization: "Bearer " + token}
}

func accountPlan(t *testing.T, uid int64) string {
	t.Helper()
	var m models.AccountModel
	require.NoError(t, database.Get().Where("uid = ?", uid).First(&m).Error)
	return m.Plan
}

func decode(t *testing.T, w *httptest.ResponseRecorder, target interface{}) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if target != nil {
		require.NoError(t, json.Unmarshal(resp.Data, target))
	}
	return resp
}

func TestRouter_Health(t *testing.T) {
	engine := setupRouter(t)

	w := serve(engine, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(constants.HeaderXRequestID))
}

func TestRouter_AdminRoutesRequireAdmin(t *testing.T) {
	engine := setupRouter(t)

	tests := []struct {
		name    string
		headers map[string]string
		status  int
	}{
		{"no token", nil, http.StatusUnauthorized},
		{"uid header only", map[string]string{"X-Admin-Uid": "1"}, http.StatusUnauthorized},
		{"unknown account", adminHeaders(t, 404), http.StatusUnauthorized},
		{"regular user", adminHeaders(t, 2), http.StatusForbidden},
		{"admin", adminHeaders(t, 1), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(engine, http.MethodGet, "/admin/expiry/statistics", tt.headers)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRouter_Statistics(t *testing.T) {
	engine := setupRouter(t)

	w := serve(engine, http.MethodGet, "/admin/expiry/statistics?horizon_days=7", adminHeaders(t, 1))
	require.Equal(t, http.StatusOK, w.Code)

	var stats dto.ExpiryStatisticsDTO
	decode(t, w, &stats)
	assert.Equal(t, 2, stats.TotalPaidAccounts)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 1, stats.ExpiringSoon)
	assert.Equal(t, 7, stats.HorizonDays)
}

func TestRouter_InternalTriggerRequiresToken(t *testing.T) {
	engine := setupRouter(t)

	w := serve(engine, http.MethodPost, "/internal/expiry/run", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(engine, http.MethodPost, "/internal/expiry/run",
		map[string]string{constants.HeaderCronToken: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_InternalTriggerDisabledWithoutToken(t *testing.T) {
	engine := setupRouterWith(t, func(cfg *config.Config) { cfg.Expiry.TriggerToken = "" })

	w := serve(engine, http.MethodPost, "/internal/expiry/run", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "echopro", accountPlan(t, 10))
}

func TestRouter_AdminRoutesClosedWithoutSecret(t *testing.T) {
	engine := setupRouterWith(t, func(cfg *config.Config) { cfg.Admin.JWTSecret = "" })

	w := serve(engine, http.MethodGet, "/admin/expiry/statistics", adminHeaders(t, 1))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RunRejectsFutureNow(t *testing.T) {
	engine := setupRouter(t)
	body := []byte(`{"now":"2099-01-01T00:00:00Z"}`)

	w := serveBody(engine, http.MethodPost, "/internal/expiry/run", body,
		map[string]string{constants.HeaderCronToken: testTriggerToken})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serveBody(engine, http.MethodPost, "/admin/expiry/run", body, adminHeaders(t, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, "echopro", accountPlan(t, 10))
	assert.Equal(t, "echoproplus", accountPlan(t, 11))
}

func TestRouter_RunAcceptsPastNow(t *testing.T) {
	engine := setupRouter(t)
	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)

	w := serveBody(engine, http.MethodPost, "/internal/expiry/run", []byte(fmt.Sprintf(`{"now":%q}`, past)),
		map[string]string{constants.HeaderCronToken: testTriggerToken})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "free", accountPlan(t, 10))
	assert.Equal(t, "echoproplus", accountPlan(t, 11))
}

func TestRouter_InternalTriggerDowngradesExpired(t *testing.T) {
	engine := setupRouter(t)

	w := serve(engine, http.MethodPost, "/internal/expiry/run",
		map[string]string{constants.HeaderCronToken: testTriggerToken})
	require.Equal(t, http.StatusOK, w.Code)

	var result dto.ExpiryCycleResultDTO
	decode(t, w, &result)
	assert.True(t, result.Success)
	assert.Equal(t, "api", result.Trigger)
	assert.Equal(t, 1, result.Statistics.TotalExpired)
	require.Len(t, result.UpdatedAccounts, 1)
	assert.Equal(t, int64(10), result.UpdatedAccounts[0].UID)

	var lapsed models.AccountModel
	require.NoError(t, database.Get().Where("uid = ?", 10).First(&lapsed).Error)
	assert.Equal(t, "free", lapsed.Plan)
	assert.Nil(t, lapsed.PlanExpiry)
	assert.Nil(t, lapsed.PlanStart)

	var renewing models.AccountModel
	require.NoError(t, database.Get().Where("uid = ?", 11).First(&renewing).Error)
	assert.Equal(t, "echoproplus", renewing.Plan)

	w = serve(engine, http.MethodGet, "/admin/expiry/runs", adminHeaders(t, 1))
	require.Equal(t, http.StatusOK, w.Code)
	var runs []dto.ExpiryRunDTO
	decode(t, w, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].RunID)
	assert.Equal(t, 1, runs[0].Succeeded)
}
