package usecases

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/shared/biztime"
	"github.com/echomag/echomag/internal/shared/logger"
)

const (
	MessageCycleInProgress = "expiry cycle already in progress"
	MessageNothingExpired  = "No expired subscriptions found"

	recordTimeout = 5 * time.Second
)

type RunExpiryCycleCommand struct {
	// Now overrides the evaluation instant; nil means the current time.
	Now     *time.Time
	Trigger expiry.Trigger
}

// RunExpiryCycleUseCase runs one scan-then-downgrade cycle. The scheduler, the
// HTTP trigger and the CLI all go through Execute, and at most one cycle runs
// at a time per process.
type RunExpiryCycleUseCase struct {
	scanner    *ScanExpiredAccountsUseCase
	downgrader *DowngradeAccountsUseCase
	runRepo    expiry.RunRepository
	statsCache StatisticsCache
	logger     logger.Interface
	now        func() time.Time

	inProgress atomic.Bool
}

func NewRunExpiryCycleUseCase(
	scanner *ScanExpiredAccountsUseCase,
	downgrader *DowngradeAccountsUseCase,
	runRepo expiry.RunRepository,
	statsCache StatisticsCache,
	logger logger.Interface,
) *RunExpiryCycleUseCase {
	return &RunExpiryCycleUseCase{
		scanner:    scanner,
		downgrader: downgrader,
		runRepo:    runRepo,
		statsCache: statsCache,
		logger:     logger,
		now:        biztime.NowUTC,
	}
}

// InProgress reports whether a cycle is executing right now.
func (uc *RunExpiryCycleUseCase) InProgress() bool {
	return uc.inProgress.Load()
}

// Execute always returns a result; failures are reported in it rather than
// as an error.
func (uc *RunExpiryCycleUseCase) Execute(ctx context.Context, cmd RunExpiryCycleCommand) *dto.ExpiryCycleResultDTO {
	trigger := cmd.Trigger
	if !trigger.IsValid() {
		trigger = expiry.TriggerAPI
	}

	now := uc.now()
	if cmd.Now != nil {
		now = cmd.Now.UTC()
	}

	result := &dto.ExpiryCycleResultDTO{
		Trigger:         string(trigger),
		Timestamp:       now,
		Statistics:      dto.CycleStatisticsDTO{PerTierExpired: emptyTierCounts(), PerTierDowngraded: emptyTierCounts()},
		UpdatedAccounts: []dto.UpdatedAccountDTO{},
		Failures:        []dto.FailedAccountDTO{},
	}

	if !uc.inProgress.CompareAndSwap(false, true) {
		uc.logger.Warnw("expiry cycle refused, another cycle is running", "trigger", trigger)
		result.Message = MessageCycleInProgress
		result.InProgress = true
		return result
	}
	defer uc.inProgress.Store(false)

	run, err := expiry.NewRun(trigger, now)
	if err != nil {
		// trigger was normalised above
		result.Message = "Expiry cycle failed"
		result.Error = err.Error()
		return result
	}
	result.RunID = run.ID()

	uc.logger.Infow("starting expiry cycle", "run_id", run.ID(), "trigger", trigger, "now", now)

	expired, err := uc.scanner.Execute(ctx, now)
	if err != nil {
		result.Message = "Expiry cycle failed: account store unavailable"
		result.Error = err.Error()
		_ = run.Fail(uc.now(), result.Message, err)
		uc.record(ctx, run)
		uc.logger.Errorw("expiry cycle failed", "run_id", run.ID(), "trigger", trigger, "error", err)
		return result
	}

	if len(expired) == 0 {
		result.Success = true
		result.Message = MessageNothingExpired
		_ = run.Complete(uc.now(), result.Message, expiry.Counts{}, nil)
		uc.record(ctx, run)
		uc.logger.Infow("expiry cycle finished", "run_id", run.ID(), "expired", 0)
		return result
	}

	batch := uc.downgrader.Execute(ctx, expired, now)

	result.Success = true
	result.Message = cycleMessage(batch)
	result.UpdatedAccounts = batch.Updated
	result.Failures = batch.Failures
	result.Statistics = dto.CycleStatisticsDTO{
		TotalExpired:      batch.Total,
		PerTierExpired:    tierCounts(batch.PerTier),
		PerTierDowngraded: tierCounts(batch.PerTierDowngraded),
		Succeeded:         batch.Succeeded,
		Failed:            batch.Failed,
		Skipped:           batch.Skipped,
	}

	_ = run.Complete(uc.now(), result.Message, expiry.Counts{
		Candidates: batch.Total,
		Succeeded:  batch.Succeeded,
		Failed:     batch.Failed,
		Skipped:    batch.Skipped,
		PerTier:    result.Statistics.PerTierExpired,
	}, dto.ToFailures(batch.Failures))
	uc.record(ctx, run)

	if batch.Succeeded > 0 {
		uc.invalidateStatistics(ctx)
	}

	uc.logger.Infow("expiry cycle finished",
		"run_id", run.ID(),
		"trigger", trigger,
		"expired", batch.Total,
		"succeeded", batch.Succeeded,
		"failed", batch.Failed,
		"skipped", batch.Skipped,
	)

	return result
}

// record persists the run even when the caller's context is already done.
func (uc *RunExpiryCycleUseCase) record(ctx context.Context, run *expiry.Run) {
	if uc.runRepo == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := uc.runRepo.Create(recordCtx, run); err != nil {
		uc.logger.Warnw("failed to record expiry run", "run_id", run.ID(), "error", err)
	}
}

func (uc *RunExpiryCycleUseCase) invalidateStatistics(ctx context.Context) {
	if uc.statsCache == nil {
		return
	}
	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := uc.statsCache.Invalidate(cacheCtx); err != nil {
		uc.logger.Warnw("failed to invalidate expiry statistics cache", "error", err)
	}
}

func cycleMessage(batch *DowngradeResult) string {
	if batch.Failed == 0 && batch.Skipped == 0 {
		return fmt.Sprintf("Automatically updated %d expired subscriptions to free plan", batch.Succeeded)
	}
	return fmt.Sprintf("Updated %d of %d expired subscriptions to free plan (%d failed, %d skipped)",
		batch.Succeeded, batch.Total, batch.Failed, batch.Skipped)
}

func emptyTierCounts() map[string]int {
	out := make(map[string]int)
	for _, p := range account.PaidPlans() {
		out[string(p)] = 0
	}
	return out
}

func tierCounts(perTier map[account.Plan]int) map[string]int {
	out := emptyTierCounts()
	for plan, n := range perTier {
		out[string(plan)] += n
	}
	return out
}

