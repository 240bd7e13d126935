package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/echomag/echomag/internal/interfaces/http/handlers"
	"github.com/echomag/echomag/internal/interfaces/http/middleware"
)

// ExpiryRouteConfig holds dependencies for the expiry and reporting routes.
type ExpiryRouteConfig struct {
	ExpiryHandler   *handlers.ExpiryHandler
	RevenueHandler  *handlers.RevenueHandler
	AdminMiddleware *middleware.AdminAuthMiddleware
	TriggerToken    string
}

// SetupExpiryRoutes configures the admin console routes and the internal
// trigger used by external cron.
func SetupExpiryRoutes(engine *gin.Engine, cfg *ExpiryRouteConfig) {
	internal := engine.Group("/internal")
	internal.Use(middleware.CronToken(cfg.TriggerToken))
	{
		internal.POST("/expiry/run", cfg.ExpiryHandler.RunCycle)
	}

	admin := engine.Group("/admin")
	admin.Use(cfg.AdminMiddleware.RequireAdmin())
	{
		expiry := admin.Group("/expiry")
		expiry.GET("/statistics", cfg.ExpiryHandler.GetStatistics)
		expiry.GET("/expiring", cfg.ExpiryHandler.ListExpiring)
		expiry.GET("/scheduler", cfg.ExpiryHandler.GetSchedulerStatus)
		expiry.GET("/runs", cfg.ExpiryHandler.ListRuns)
		expiry.POST("/run", cfg.ExpiryHandler.RunCycle)

		admin.GET("/revenue/summary", cfg.RevenueHandler.GetSummary)
	}
}
