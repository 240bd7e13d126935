package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/echomag/echomag/internal/application/expiry/usecases"
	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/shared/biztime"
	"github.com/echomag/echomag/internal/shared/errors"
	"github.com/echomag/echomag/internal/shared/logger"
	"github.com/echomag/echomag/internal/shared/utils"
)

type ExpiryHandler struct {
	runCycleUC       runExpiryCycleUseCase
	getStatisticsUC  getExpiryStatisticsUseCase
	listExpiringUC   listExpiringAccountsUseCase
	schedulerStateUC getSchedulerStatusUseCase
	listRunsUC       listExpiryRunsUseCase
	cycleTimeout     time.Duration
	clock            func() time.Time
	logger           logger.Interface
}

func NewExpiryHandler(
	runCycleUC runExpiryCycleUseCase,
	getStatisticsUC getExpiryStatisticsUseCase,
	listExpiringUC listExpiringAccountsUseCase,
	schedulerStateUC getSchedulerStatusUseCase,
	listRunsUC listExpiryRunsUseCase,
	cycleTimeout time.Duration,
	logger logger.Interface,
) *ExpiryHandler {
	return &ExpiryHandler{
		runCycleUC:       runCycleUC,
		getStatisticsUC:  getStatisticsUC,
		listExpiringUC:   listExpiringUC,
		schedulerStateUC: schedulerStateUC,
		listRunsUC:       listRunsUC,
		cycleTimeout:     cycleTimeout,
		clock:            biztime.NowUTC,
		logger:           logger,
	}
}

// RunExpiryCycleRequest pins the evaluation instant. An empty body runs the
// cycle at the current time. A pinned instant may replay the past but never
// run ahead of the server clock.
type RunExpiryCycleRequest struct {
	Now *time.Time `json:"now"`
}

// RunCycle handles POST /admin/expiry/run and POST /internal/expiry/run
func (h *ExpiryHandler) RunCycle(c *gin.Context) {
	var req RunExpiryCycleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
			return
		}
	}

	if req.Now != nil && req.Now.After(h.clock()) {
		utils.ErrorResponseWithError(c, errors.NewValidationError("now must not be in the future", req.Now.UTC().Format(time.RFC3339)))
		return
	}

	// the batch outlives a dropped client connection
	ctx := context.WithoutCancel(c.Request.Context())
	if h.cycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cycleTimeout)
		defer cancel()
	}

	result := h.runCycleUC.Execute(ctx, usecases.RunExpiryCycleCommand{
		Now:     req.Now,
		Trigger: expiry.TriggerAPI,
	})

	switch {
	case result.InProgress:
		c.JSON(http.StatusConflict, utils.APIResponse{
			Success: false,
			Data:    result,
			Message: result.Message,
		})
	case !result.Success:
		h.logger.Errorw("on-demand expiry cycle failed", "run_id", result.RunID, "error", result.Error)
		c.JSON(http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Data:    result,
			Message: result.Message,
		})
	default:
		utils.SuccessResponse(c, http.StatusOK, result.Message, result)
	}
}

// GetStatistics handles GET /admin/expiry/statistics
func (h *ExpiryHandler) GetStatistics(c *gin.Context) {
	horizon, err := utils.ParseOptionalIntQuery(c, "horizon_days")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	stats, err := h.getStatisticsUC.Execute(c.Request.Context(), usecases.GetExpiryStatisticsQuery{HorizonDays: horizon})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", stats)
}

// ListExpiring handles GET /admin/expiry/expiring
func (h *ExpiryHandler) ListExpiring(c *gin.Context) {
	days, err := utils.ParseOptionalIntQuery(c, "days")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listExpiringUC.Execute(c.Request.Context(), usecases.ListExpiringAccountsQuery{Days: days})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetSchedulerStatus handles GET /admin/expiry/scheduler
func (h *ExpiryHandler) GetSchedulerStatus(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.schedulerStateUC.Execute(c.Request.Context()))
}

// ListRuns handles GET /admin/expiry/runs
func (h *ExpiryHandler) ListRuns(c *gin.Context) {
	limit, err := utils.ParseOptionalIntQuery(c, "limit")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	runs, err := h.listRunsUC.Execute(c.Request.Context(), usecases.ListExpiryRunsQuery{Limit: limit})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", runs)
}
