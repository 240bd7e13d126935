package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/echomag/echomag/internal/bootstrap"
	"github.com/echomag/echomag/internal/interfaces/http/handlers"
	"github.com/echomag/echomag/internal/interfaces/http/middleware"
	"github.com/echomag/echomag/internal/interfaces/http/routes"
	"github.com/echomag/echomag/internal/shared/logger"
	"github.com/echomag/echomag/internal/shared/utils"
)

// Router represents the HTTP router configuration
type Router struct {
	engine          *gin.Engine
	container       *bootstrap.Container
	expiryHandler   *handlers.ExpiryHandler
	revenueHandler  *handlers.RevenueHandler
	adminMiddleware *middleware.AdminAuthMiddleware
	logger          logger.Interface
}

func NewRouter(container *bootstrap.Container, log logger.Interface) *Router {
	engine := gin.New()
	cfg := container.Config()
	uc := container.UseCases

	expiryHandler := handlers.NewExpiryHandler(
		uc.RunExpiryCycle,
		uc.GetExpiryStatistics,
		uc.ListExpiringAccounts,
		uc.GetSchedulerStatus,
		uc.ListExpiryRuns,
		cfg.Expiry.CycleTimeout,
		log.Named("handler.expiry"),
	)
	revenueHandler := handlers.NewRevenueHandler(uc.GetRevenueSummary, log.Named("handler.revenue"))

	adminMiddleware := middleware.NewAdminAuthMiddleware(
		container.Tokens,
		container.AccountRepository(),
		container.Enforcer,
		cfg.Admin.RoleCacheSize,
		cfg.Admin.RoleCacheTTL,
		log.Named("middleware.admin"),
	)

	return &Router{
		engine:          engine,
		container:       container,
		expiryHandler:   expiryHandler,
		revenueHandler:  revenueHandler,
		adminMiddleware: adminMiddleware,
		logger:          log,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	cfg := r.container.Config()

	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CustomLogger(r.logger.Named("http")))
	r.engine.Use(middleware.Recovery(r.logger.Named("http")))
	r.engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())

	r.engine.GET("/health", r.healthCheck)

	routes.SetupExpiryRoutes(r.engine, &routes.ExpiryRouteConfig{
		ExpiryHandler:   r.expiryHandler,
		RevenueHandler:  r.revenueHandler,
		AdminMiddleware: r.adminMiddleware,
		TriggerToken:    cfg.Expiry.TriggerToken,
	})
}

func (r *Router) healthCheck(c *gin.Context) {
	state := r.container.Scheduler.State()
	utils.SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"status":            "healthy",
		"scheduler_running": state.Running,
		"cycle_in_progress": r.container.UseCases.RunExpiryCycle.InProgress(),
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
