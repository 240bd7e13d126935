package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/application/expiry/usecases"
	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/shared/config"
	"github.com/echomag/echomag/internal/shared/logger"
)

type countingJob struct {
	hold     time.Duration
	calls    atomic.Int32
	running  atomic.Int32
	maxSeen  atomic.Int32
	mu       sync.Mutex
	triggers []expiry.Trigger
}

func (j *countingJob) Execute(ctx context.Context, cmd usecases.RunExpiryCycleCommand) *dto.ExpiryCycleResultDTO {
	n := j.running.Add(1)
	defer j.running.Add(-1)
	for {
		seen := j.maxSeen.Load()
		if n <= seen || j.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	j.mu.Lock()
	j.triggers = append(j.triggers, cmd.Trigger)
	j.mu.Unlock()

	select {
	case <-time.After(j.hold):
	case <-ctx.Done():
	}
	j.calls.Add(1)
	return &dto.ExpiryCycleResultDTO{Success: true, Message: "ok"}
}

type panickingJob struct {
	calls atomic.Int32
}

func (j *panickingJob) Execute(context.Context, usecases.RunExpiryCycleCommand) *dto.ExpiryCycleResultDTO {
	j.calls.Add(1)
	panic("boom")
}

// blockingJob holds each cycle until release is closed.
type blockingJob struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingJob() *blockingJob {
	return &blockingJob{entered: make(chan struct{}), release: make(chan struct{})}
}

func (j *blockingJob) Execute(ctx context.Context, _ usecases.RunExpiryCycleCommand) *dto.ExpiryCycleResultDTO {
	j.once.Do(func() { close(j.entered) })
	select {
	case <-j.release:
	case <-ctx.Done():
	}
	return &dto.ExpiryCycleResultDTO{Success: true, Message: "ok"}
}

func testConfig(interval time.Duration, runOnStart bool) config.ExpiryConfig {
	return config.ExpiryConfig{
		Interval:        interval,
		RunOnStart:      runOnStart,
		CycleTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	}
}

func TestSchedulerManager_RunsImmediatelyOnStart(t *testing.T) {
	job := &countingJob{}
	m := NewSchedulerManager(job, testConfig(time.Hour, true), logger.NewNopLogger())

	require.NoError(t, m.Start())
	defer m.Stop()

	assert.Eventually(t, func() bool { return job.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	job.mu.Lock()
	assert.Equal(t, []expiry.Trigger{expiry.TriggerScheduled}, job.triggers)
	job.mu.Unlock()

	state := m.State()
	assert.True(t, state.Running)
	assert.Equal(t, time.Hour, state.Interval)
	require.NotNil(t, state.LastRun)
	require.NotNil(t, state.NextRun)
	assert.True(t, state.NextRun.After(*state.LastRun))
}

func TestSchedulerManager_NoImmediateRunWhenDisabled(t *testing.T) {
	job := &countingJob{}
	m := NewSchedulerManager(job, testConfig(time.Hour, false), logger.NewNopLogger())

	require.NoError(t, m.Start())
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, m.Stop())

	assert.Equal(t, int32(0), job.calls.Load())
}

func TestSchedulerManager_NeverOverlaps(t *testing.T) {
	job := &countingJob{hold: 120 * time.Millisecond}
	m := NewSchedulerManager(job, testConfig(20*time.Millisecond, true), logger.NewNopLogger())

	require.NoError(t, m.Start())
	assert.Eventually(t, func() bool { return job.calls.Load() >= 3 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, m.Stop())

	assert.Equal(t, int32(1), job.maxSeen.Load())
}

func TestSchedulerManager_StopHaltsFurtherRuns(t *testing.T) {
	job := &countingJob{}
	m := NewSchedulerManager(job, testConfig(30*time.Millisecond, true), logger.NewNopLogger())

	require.NoError(t, m.Start())
	assert.Eventually(t, func() bool { return job.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.False(t, m.IsStarted())
	assert.False(t, m.State().Running)
	assert.Nil(t, m.State().NextRun)

	after := job.calls.Load()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, after, job.calls.Load())
}

func TestSchedulerManager_StopDuringCycleKeepsStateReadable(t *testing.T) {
	job := newBlockingJob()
	cfg := testConfig(time.Hour, true)
	cfg.CycleTimeout = 5 * time.Second
	cfg.ShutdownTimeout = 5 * time.Second
	m := NewSchedulerManager(job, cfg, logger.NewNopLogger())

	require.NoError(t, m.Start())
	select {
	case <-job.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle never started")
	}

	stopped := make(chan error, 1)
	go func() { stopped <- m.Stop() }()

	// Stop waits on the cycle; reads must not queue behind it
	assert.Eventually(t, func() bool { return !m.State().Running && !m.IsStarted() }, time.Second, 10*time.Millisecond)
	assert.NotNil(t, m.State().LastRun)
	select {
	case <-stopped:
		t.Fatal("Stop returned before the running cycle finished")
	default:
	}

	close(job.release)
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the cycle finished")
	}
}

func TestSchedulerManager_StartStopIdempotent(t *testing.T) {
	job := &countingJob{}
	m := NewSchedulerManager(job, testConfig(time.Hour, true), logger.NewNopLogger())

	require.NoError(t, m.Stop())
	require.NoError(t, m.Start())
	require.NoError(t, m.Start())
	assert.Eventually(t, func() bool { return job.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, m.Stop())
	require.NoError(t, m.Stop())

	require.NoError(t, m.Start())
	assert.Eventually(t, func() bool { return job.calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, m.Stop())
}

func TestSchedulerManager_PanicDoesNotKillScheduler(t *testing.T) {
	job := &panickingJob{}
	m := NewSchedulerManager(job, testConfig(30*time.Millisecond, true), logger.NewNopLogger())

	require.NoError(t, m.Start())
	defer m.Stop()

	assert.Eventually(t, func() bool { return job.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, m.IsStarted())
}

func TestNewSchedulerManager_Defaults(t *testing.T) {
	m := NewSchedulerManager(&countingJob{}, config.ExpiryConfig{}, logger.NewNopLogger())

	assert.Equal(t, defaultInterval, m.interval)
	assert.Equal(t, defaultJobTimeout, m.cycleTimeout)
	assert.Equal(t, defaultStopTimeout, m.stopTimeout)
	assert.False(t, m.IsStarted())
}
