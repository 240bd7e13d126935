package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	revenueusecases "github.com/echomag/echomag/internal/application/revenue/usecases"
	"github.com/echomag/echomag/internal/shared/logger"
	"github.com/echomag/echomag/internal/shared/utils"
)

type RevenueHandler struct {
	getSummaryUC getRevenueSummaryUseCase
	logger       logger.Interface
}

func NewRevenueHandler(getSummaryUC getRevenueSummaryUseCase, logger logger.Interface) *RevenueHandler {
	return &RevenueHandler{
		getSummaryUC: getSummaryUC,
		logger:       logger,
	}
}

// GetSummary handles GET /admin/revenue/summary
func (h *RevenueHandler) GetSummary(c *gin.Context) {
	months, err := utils.ParseOptionalIntQuery(c, "months")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	summary, err := h.getSummaryUC.Execute(c.Request.Context(), revenueusecases.GetRevenueSummaryQuery{Months: months})
	if err != nil {
		h.logger.Warnw("revenue summary failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}
