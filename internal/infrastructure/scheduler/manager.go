// Package scheduler runs the recurring plan-expiry cycle using gocron v2.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/application/expiry/usecases"
	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/shared/biztime"
	"github.com/echomag/echomag/internal/shared/config"
	"github.com/echomag/echomag/internal/shared/goroutine"
	"github.com/echomag/echomag/internal/shared/logger"
)

const (
	expiryJobName      = "plan-expiry"
	defaultInterval    = 24 * time.Hour
	defaultJobTimeout  = 10 * time.Minute
	defaultStopTimeout = 30 * time.Second
)

// ExpiryCycleJob is the cycle the scheduler fires on every tick.
type ExpiryCycleJob interface {
	Execute(ctx context.Context, cmd usecases.RunExpiryCycleCommand) *dto.ExpiryCycleResultDTO
}

// SchedulerManager owns the gocron scheduler for the expiry job. A fresh
// gocron scheduler is built on every Start, so the manager can be stopped and
// started again.
//
// lifecycle serialises Start and Stop. mu only guards the fields below it and
// is never held while waiting on a running cycle.
type SchedulerManager struct {
	job          ExpiryCycleJob
	interval     time.Duration
	runOnStart   bool
	cycleTimeout time.Duration
	stopTimeout  time.Duration
	logger       logger.Interface

	lifecycle sync.Mutex
	mu        sync.RWMutex
	scheduler gocron.Scheduler
	expiryJob gocron.Job
	started   bool

	lastRun atomic.Pointer[time.Time]
}

// NewSchedulerManager creates an idle manager. Zero durations in cfg fall back
// to the defaults.
func NewSchedulerManager(job ExpiryCycleJob, cfg config.ExpiryConfig, log logger.Interface) *SchedulerManager {
	m := &SchedulerManager{
		job:          job,
		interval:     cfg.Interval,
		runOnStart:   cfg.RunOnStart,
		cycleTimeout: cfg.CycleTimeout,
		stopTimeout:  cfg.ShutdownTimeout,
		logger:       log.Named("expiry.scheduler"),
	}
	if m.interval <= 0 {
		m.interval = defaultInterval
	}
	if m.cycleTimeout <= 0 {
		m.cycleTimeout = defaultJobTimeout
	}
	if m.stopTimeout <= 0 {
		m.stopTimeout = defaultStopTimeout
	}
	return m
}

// Start registers the expiry job and starts the scheduler. Calling Start on a
// running manager is a no-op.
func (m *SchedulerManager) Start() error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if m.IsStarted() {
		return nil
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
		gocron.WithStopTimeout(m.stopTimeout),
		gocron.WithLogger(m.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	opts := []gocron.JobOption{
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(expiryJobName),
		gocron.WithTags("expiry", "downgrade"),
	}
	if m.runOnStart {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	j, err := s.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(m.runCycle),
		opts...,
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to register expiry job: %w", err)
	}

	m.mu.Lock()
	m.scheduler = s
	m.expiryJob = j
	m.started = true
	m.mu.Unlock()
	s.Start()

	m.logger.Infow("expiry scheduler started",
		"interval", m.interval.String(),
		"run_on_start", m.runOnStart,
		"cycle_timeout", m.cycleTimeout.String(),
	)
	return nil
}

// Stop shuts the scheduler down, waiting up to the stop timeout for an
// in-flight cycle to finish. State stays readable while it waits.
func (m *SchedulerManager) Stop() error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil
	}
	s := m.scheduler
	m.started = false
	m.scheduler = nil
	m.expiryJob = nil
	m.mu.Unlock()

	m.logger.Infow("stopping expiry scheduler")

	err := s.Shutdown()

	if err != nil {
		m.logger.Errorw("expiry scheduler shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("expiry scheduler stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.started
}

// State reports the scheduler for the status endpoint.
func (m *SchedulerManager) State() usecases.SchedulerState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := usecases.SchedulerState{
		Running:  m.started,
		Interval: m.interval,
	}
	if last := m.lastRun.Load(); last != nil {
		l := *last
		state.LastRun = &l
	}
	if m.started && m.expiryJob != nil {
		if next, err := m.expiryJob.NextRun(); err == nil && !next.IsZero() {
			n := next.UTC()
			state.NextRun = &n
		}
	}
	return state
}

func (m *SchedulerManager) runCycle() {
	startedAt := biztime.NowUTC()
	m.lastRun.Store(&startedAt)

	ctx, cancel := context.WithTimeout(context.Background(), m.cycleTimeout)
	defer cancel()

	err := goroutine.SafeCall(m.logger, expiryJobName, func() error {
		result := m.job.Execute(ctx, usecases.RunExpiryCycleCommand{Trigger: expiry.TriggerScheduled})
		if result == nil {
			return nil
		}
		if !result.Success {
			m.logger.Warnw("scheduled expiry cycle did not succeed",
				"message", result.Message,
				"error", result.Error,
				"in_progress", result.InProgress,
			)
			return nil
		}
		m.logger.Infow("scheduled expiry cycle finished",
			"run_id", result.RunID,
			"message", result.Message,
			"duration", time.Since(startedAt),
		)
		return nil
	})
	if err != nil {
		m.logger.Errorw("scheduled expiry cycle aborted", "error", err)
	}
}
