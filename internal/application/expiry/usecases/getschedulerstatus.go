package usecases

import (
	"context"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/shared/logger"
)

const (
	SchedulerStatusActive = "active"
	SchedulerStatusIdle   = "idle"
)

// GetSchedulerStatusUseCase reports the recurring job together with the most
// recent recorded run.
type GetSchedulerStatusUseCase struct {
	scheduler SchedulerStateProvider
	guard     CycleGuard
	runRepo   expiry.RunRepository
	logger    logger.Interface
}

func NewGetSchedulerStatusUseCase(
	scheduler SchedulerStateProvider,
	guard CycleGuard,
	runRepo expiry.RunRepository,
	logger logger.Interface,
) *GetSchedulerStatusUseCase {
	return &GetSchedulerStatusUseCase{
		scheduler: scheduler,
		guard:     guard,
		runRepo:   runRepo,
		logger:    logger,
	}
}

// Execute never fails; a missing scheduler or run log yields an idle status
// without a last run.
func (uc *GetSchedulerStatusUseCase) Execute(ctx context.Context) *dto.SchedulerStatusDTO {
	status := &dto.SchedulerStatusDTO{Status: SchedulerStatusIdle}

	if uc.scheduler != nil {
		state := uc.scheduler.State()
		if state.Running {
			status.Status = SchedulerStatusActive
		}
		status.Interval = state.Interval.String()
		status.NextRunEstimate = state.NextRun
		status.LastRunEstimate = state.LastRun
	}

	if uc.guard != nil {
		status.CycleInProgress = uc.guard.InProgress()
	}

	if uc.runRepo != nil {
		latest, err := uc.runRepo.GetLatest(ctx)
		if err != nil {
			uc.logger.Warnw("failed to load latest expiry run", "error", err)
		} else if latest != nil {
			status.LastRun = dto.ToExpiryRunDTO(latest)
			if status.LastRunEstimate == nil {
				started := latest.StartedAt()
				status.LastRunEstimate = &started
			}
		}
	}

	return status
}
