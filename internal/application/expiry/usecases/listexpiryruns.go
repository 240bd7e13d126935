package usecases

import (
	"context"
	"fmt"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/shared/errors"
	"github.com/echomag/echomag/internal/shared/logger"
)

const (
	DefaultRunListLimit = 20
	MaxRunListLimit     = 100
)

type ListExpiryRunsQuery struct {
	Limit *int
}

type ListExpiryRunsUseCase struct {
	runRepo expiry.RunRepository
	logger  logger.Interface
}

func NewListExpiryRunsUseCase(runRepo expiry.RunRepository, logger logger.Interface) *ListExpiryRunsUseCase {
	return &ListExpiryRunsUseCase{
		runRepo: runRepo,
		logger:  logger,
	}
}

func (uc *ListExpiryRunsUseCase) Execute(ctx context.Context, query ListExpiryRunsQuery) ([]*dto.ExpiryRunDTO, error) {
	limit := DefaultRunListLimit
	if query.Limit != nil {
		limit = *query.Limit
	}
	if limit < 1 || limit > MaxRunListLimit {
		return nil, errors.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxRunListLimit))
	}

	runs, err := uc.runRepo.ListRecent(ctx, limit)
	if err != nil {
		uc.logger.Errorw("failed to list expiry runs", "limit", limit, "error", err)
		return nil, errors.NewUnavailableError("run log unavailable")
	}

	return dto.ToExpiryRunDTOs(runs), nil
}
