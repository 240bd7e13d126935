package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/echomag/echomag/internal/application/expiry/usecases"
	"github.com/echomag/echomag/internal/infrastructure/cache"
	"github.com/echomag/echomag/internal/infrastructure/database"
	"github.com/echomag/echomag/internal/infrastructure/migration"
	"github.com/echomag/echomag/internal/infrastructure/mongostore"
	"github.com/echomag/echomag/internal/infrastructure/repository"
	"github.com/echomag/echomag/internal/shared/constants"
)

func (c *Container) initRepositories(ctx context.Context) (*repositories, error) {
	switch c.cfg.Database.Driver {
	case constants.DriverMongoDB:
		return c.initMongoRepositories(ctx)
	case constants.DriverMySQL, constants.DriverSQLite, "":
		return c.initSQLRepositories(ctx)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.cfg.Database.Driver)
	}
}

func (c *Container) initSQLRepositories(ctx context.Context) (*repositories, error) {
	if err := database.Init(ctx, &c.cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.sqlDB = database.Get()

	// SQLite has no migration scripts; its schema follows the models.
	if c.cfg.Database.Driver != constants.DriverMySQL {
		manager, err := migration.NewManager(constants.DriverSQLite, c.log)
		if err != nil {
			return nil, err
		}
		if err := manager.Migrate(c.sqlDB); err != nil {
			return nil, err
		}
	}

	return &repositories{
		accounts: repository.NewAccountRepository(c.sqlDB, c.log.Named("repository.account")),
		payments: repository.NewPaymentRepository(c.sqlDB, c.log.Named("repository.payment")),
		runs:     repository.NewExpiryRunRepository(c.sqlDB, c.log.Named("repository.expiry_run")),
	}, nil
}

func (c *Container) initMongoRepositories(ctx context.Context) (*repositories, error) {
	store, err := database.ConnectMongo(ctx, &c.cfg.Mongo, c.cfg.Database.ConnectRetries)
	if err != nil {
		return nil, err
	}
	c.mongo = store

	if err := mongostore.EnsureIndexes(ctx, store.Database); err != nil {
		c.log.Warnw("failed to ensure mongo indexes", "error", err)
	}

	return &repositories{
		accounts: mongostore.NewAccountRepository(store.Database, c.log.Named("mongostore.account")),
		payments: mongostore.NewPaymentRepository(store.Database, c.log.Named("mongostore.payment")),
		runs:     mongostore.NewExpiryRunRepository(store.Database, c.log.Named("mongostore.expiry_run")),
	}, nil
}

// initStatsCache prefers Redis and falls back to an in-process cache when
// Redis is disabled or unreachable.
func (c *Container) initStatsCache(ctx context.Context) usecases.StatisticsCache {
	ttl := c.cfg.Expiry.StatsCacheTTL

	if !c.cfg.Redis.Enabled {
		return cache.NewLocalExpiryStatsCache(ttl)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.cfg.Redis.GetAddr(),
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		c.log.Warnw("redis unreachable, using in-process statistics cache",
			"address", c.cfg.Redis.GetAddr(),
			"error", err)
		_ = client.Close()
		return cache.NewLocalExpiryStatsCache(ttl)
	}

	c.log.Infow("redis connection established", "address", c.cfg.Redis.GetAddr())
	c.redis = client
	return cache.NewRedisExpiryStatsCache(client, ttl, c.log.Named("cache.expiry_stats"))
}
