package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/shared/logger"
)

const (
	expiryStatsKeyPrefix = "expiry:stats:"
	expiryStatsScanCount = 100
	defaultStatsTTL      = 60 * time.Second
)

// RedisExpiryStatsCache keeps serialized expiry statistics per horizon so the
// dashboard does not rescan every paid account on each refresh.
type RedisExpiryStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

func NewRedisExpiryStatsCache(client *redis.Client, ttl time.Duration, logger logger.Interface) *RedisExpiryStatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &RedisExpiryStatsCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisExpiryStatsCache) key(horizonDays int) string {
	return fmt.Sprintf("%s%d", expiryStatsKeyPrefix, horizonDays)
}

// Get returns (nil, false, nil) on a miss.
func (c *RedisExpiryStatsCache) Get(ctx context.Context, horizonDays int) (*dto.ExpiryStatisticsDTO, bool, error) {
	raw, err := c.client.Get(ctx, c.key(horizonDays)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get expiry stats from cache: %w", err)
	}

	var stats dto.ExpiryStatisticsDTO
	if err := json.Unmarshal(raw, &stats); err != nil {
		// treat a corrupt entry as a miss and drop it
		c.logger.Warnw("discarding unreadable expiry stats cache entry", "horizon_days", horizonDays, "error", err)
		_ = c.client.Del(ctx, c.key(horizonDays)).Err()
		return nil, false, nil
	}
	return &stats, true, nil
}

func (c *RedisExpiryStatsCache) Set(ctx context.Context, horizonDays int, stats *dto.ExpiryStatisticsDTO) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal expiry stats: %w", err)
	}
	if err := c.client.Set(ctx, c.key(horizonDays), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store expiry stats in cache: %w", err)
	}
	return nil
}

// Invalidate removes every cached horizon.
func (c *RedisExpiryStatsCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, expiryStatsKeyPrefix+"*", expiryStatsScanCount).Result()
		if err != nil {
			return fmt.Errorf("failed to scan expiry stats keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete expiry stats keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
