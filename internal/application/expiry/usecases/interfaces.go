package usecases

import (
	"context"
	"time"

	"github.com/echomag/echomag/internal/application/expiry/dto"
)

// StatisticsCache stores computed statistics per horizon. Implementations
// must treat a miss as (nil, false, nil).
type StatisticsCache interface {
	Get(ctx context.Context, horizonDays int) (*dto.ExpiryStatisticsDTO, bool, error)
	Set(ctx context.Context, horizonDays int, stats *dto.ExpiryStatisticsDTO) error
	Invalidate(ctx context.Context) error
}

// SchedulerState is a point-in-time view of the recurring expiry job.
type SchedulerState struct {
	Running  bool
	Interval time.Duration
	NextRun  *time.Time
	LastRun  *time.Time
}

// SchedulerStateProvider exposes the scheduler without importing it.
type SchedulerStateProvider interface {
	State() SchedulerState
}

// CycleGuard reports whether an expiry cycle is currently executing.
type CycleGuard interface {
	InProgress() bool
}
