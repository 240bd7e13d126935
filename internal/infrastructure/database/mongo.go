package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/echomag/echomag/internal/shared/config"
	appLogger "github.com/echomag/echomag/internal/shared/logger"
)

// MongoStore bundles the client with the configured database.
type MongoStore struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// ConnectMongo dials the document store and pings the primary, retrying with
// backoff up to retries attempts.
func ConnectMongo(ctx context.Context, cfg *config.MongoConfig, retries uint) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is not configured")
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	if err := pingWithRetry(ctx, retries, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	appLogger.Info("successfully connected to MongoDB", "database", cfg.Database)

	return &MongoStore{
		Client:   client,
		Database: client.Database(cfg.Database),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s == nil || s.Client == nil {
		return nil
	}
	if err := s.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	appLogger.Info("successfully disconnected from MongoDB")
	return nil
}
