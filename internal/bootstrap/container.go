// Package bootstrap wires stores, use cases and background services from the
// loaded configuration. The server, worker and one-off CLI commands share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/echomag/echomag/internal/application/expiry/usecases"
	revenueUsecases "github.com/echomag/echomag/internal/application/revenue/usecases"
	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/domain/payment"
	"github.com/echomag/echomag/internal/infrastructure/auth"
	"github.com/echomag/echomag/internal/infrastructure/config"
	"github.com/echomag/echomag/internal/infrastructure/database"
	"github.com/echomag/echomag/internal/infrastructure/permission"
	"github.com/echomag/echomag/internal/infrastructure/scheduler"
	"github.com/echomag/echomag/internal/shared/logger"
)

type repositories struct {
	accounts account.Repository
	payments payment.Repository
	runs     expiry.RunRepository
}

// UseCases groups the application operations exposed to the interfaces.
type UseCases struct {
	RunExpiryCycle       *usecases.RunExpiryCycleUseCase
	GetExpiryStatistics  *usecases.GetExpiryStatisticsUseCase
	ListExpiringAccounts *usecases.ListExpiringAccountsUseCase
	ListExpiryRuns       *usecases.ListExpiryRunsUseCase
	GetSchedulerStatus   *usecases.GetSchedulerStatusUseCase
	GetRevenueSummary    *revenueUsecases.GetRevenueSummaryUseCase
}

// Container holds every long-lived component and knows how to release them.
type Container struct {
	cfg *config.Config
	log logger.Interface

	sqlDB *gorm.DB
	mongo *database.MongoStore
	redis *redis.Client

	repos      *repositories
	statsCache usecases.StatisticsCache

	UseCases  *UseCases
	Scheduler *scheduler.SchedulerManager
	Enforcer  *permission.Enforcer
	Tokens    *auth.JWTService
}

// NewContainer connects the configured backends and builds the use cases.
// Nothing is started; callers decide whether to run the scheduler.
func NewContainer(ctx context.Context, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{cfg: cfg, log: log}

	repos, err := c.initRepositories(ctx)
	if err != nil {
		c.Close(ctx)
		return nil, err
	}
	c.repos = repos
	c.statsCache = c.initStatsCache(ctx)
	c.initUseCases()

	enforcer, err := permission.NewEnforcer(log.Named("permission"))
	if err != nil {
		c.Close(ctx)
		return nil, fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	c.Enforcer = enforcer

	c.Tokens = auth.NewJWTService(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
	if cfg.Admin.JWTSecret == "" {
		log.Warnw("admin.jwt_secret is empty, admin routes will refuse every request")
	}

	return c, nil
}

// AccountRepository is exposed for the admin guard.
func (c *Container) AccountRepository() account.Repository {
	return c.repos.accounts
}

func (c *Container) Config() *config.Config {
	return c.cfg
}

// Close stops the scheduler, draining an in-flight cycle, then releases the
// store connections.
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	if c.Scheduler != nil {
		if err := c.Scheduler.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if c.mongo != nil {
		if err := c.mongo.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.sqlDB != nil {
		if err := database.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
