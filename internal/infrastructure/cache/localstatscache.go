package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/echomag/echomag/internal/application/expiry/dto"
)

const localStatsCacheSize = 64

// LocalExpiryStatsCache is the in-process fallback used when Redis is
// disabled. Entries are shared pointers and must not be mutated by callers.
type LocalExpiryStatsCache struct {
	lru *expirable.LRU[int, *dto.ExpiryStatisticsDTO]
}

func NewLocalExpiryStatsCache(ttl time.Duration) *LocalExpiryStatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &LocalExpiryStatsCache{
		lru: expirable.NewLRU[int, *dto.ExpiryStatisticsDTO](localStatsCacheSize, nil, ttl),
	}
}

func (c *LocalExpiryStatsCache) Get(_ context.Context, horizonDays int) (*dto.ExpiryStatisticsDTO, bool, error) {
	stats, ok := c.lru.Get(horizonDays)
	return stats, ok, nil
}

func (c *LocalExpiryStatsCache) Set(_ context.Context, horizonDays int, stats *dto.ExpiryStatisticsDTO) error {
	c.lru.Add(horizonDays, stats)
	return nil
}

func (c *LocalExpiryStatsCache) Invalidate(_ context.Context) error {
	c.lru.Purge()
	return nil
}
