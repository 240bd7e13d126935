package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/shared/logger"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return mr, client
}

func sampleStats(horizon int) *dto.ExpiryStatisticsDTO {
	return &dto.ExpiryStatisticsDTO{
		TotalPaidAccounts: 3,
		Active:            2,
		Expired:           1,
		ExpiringSoon:      1,
		PerTier: map[string]dto.TierStatisticsDTO{
			"echopro": {Total: 2, Active: 1, Expired: 1, ExpiringSoon: 1},
		},
		HorizonDays: horizon,
		GeneratedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRedisExpiryStatsCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		_, client := setupTestRedis(t)
		c := NewRedisExpiryStatsCache(client, time.Minute, logger.NewNopLogger())

		stats, ok, err := c.Get(ctx, 30)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, stats)
	})

	t.Run("set then get", func(t *testing.T) {
		mr, client := setupTestRedis(t)
		c := NewRedisExpiryStatsCache(client, time.Minute, logger.NewNopLogger())

		require.NoError(t, c.Set(ctx, 30, sampleStats(30)))
		assert.True(t, mr.Exists("expiry:stats:30"))

		stats, ok, err := c.Get(ctx, 30)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 3, stats.TotalPaidAccounts)
		assert.Equal(t, 1, stats.PerTier["echopro"].Expired)
	})

	t.Run("entries expire after ttl", func(t *testing.T) {
		mr, client := setupTestRedis(t)
		c := NewRedisExpiryStatsCache(client, time.Minute, logger.NewNopLogger())

		require.NoError(t, c.Set(ctx, 7, sampleStats(7)))
		mr.FastForward(2 * time.Minute)

		_, ok, err := c.Get(ctx, 7)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate drops every horizon", func(t *testing.T) {
		mr, client := setupTestRedis(t)
		c := NewRedisExpiryStatsCache(client, time.Minute, logger.NewNopLogger())

		require.NoError(t, c.Set(ctx, 7, sampleStats(7)))
		require.NoError(t, c.Set(ctx, 30, sampleStats(30)))
		require.NoError(t, mr.Set("unrelated", "keep"))

		require.NoError(t, c.Invalidate(ctx))

		assert.False(t, mr.Exists("expiry:stats:7"))
		assert.False(t, mr.Exists("expiry:stats:30"))
		assert.True(t, mr.Exists("unrelated"))
	})

	t.Run("corrupt entry is a miss", func(t *testing.T) {
		mr, client := setupTestRedis(t)
		c := NewRedisExpiryStatsCache(client, time.Minute, logger.NewNopLogger())

		require.NoError(t, mr.Set("expiry:stats:30", "{not json"))

		_, ok, err := c.Get(ctx, 30)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, mr.Exists("expiry:stats:30"))
	})

	t.Run("redis down surfaces an error", func(t *testing.T) {
		mr, client := setupTestRedis(t)
		c := NewRedisExpiryStatsCache(client, time.Minute, logger.NewNopLogger())
		mr.Close()

		_, _, err := c.Get(ctx, 30)
		assert.Error(t, err)
	})
}

func TestLocalExpiryStatsCache(t *testing.T) {
	ctx := context.Background()
	c := NewLocalExpiryStatsCache(time.Minute)

	_, ok, err := c.Get(ctx, 30)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, 30, sampleStats(30)))
	stats, ok, err := c.Get(ctx, 30)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30, stats.HorizonDays)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, _ = c.Get(ctx, 30)
	assert.False(t, ok)
}
