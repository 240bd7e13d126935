package handlers

import (
	"context"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/application/expiry/usecases"
	revenuedto "github.com/echomag/echomag/internal/application/revenue/dto"
	revenueusecases "github.com/echomag/echomag/internal/application/revenue/usecases"
)

// Use case interfaces for ExpiryHandler and RevenueHandler

type runExpiryCycleUseCase interface {
	Execute(ctx context.Context, cmd usecases.RunExpiryCycleCommand) *dto.ExpiryCycleResultDTO
}

type getExpiryStatisticsUseCase interface {
	Execute(ctx context.Context, query usecases.GetExpiryStatisticsQuery) (*dto.ExpiryStatisticsDTO, error)
}

type listExpiringAccountsUseCase interface {
	Execute(ctx context.Context, query usecases.ListExpiringAccountsQuery) (*dto.ExpiringAccountsDTO, error)
}

type getSchedulerStatusUseCase interface {
	Execute(ctx context.Context) *dto.SchedulerStatusDTO
}

type listExpiryRunsUseCase interface {
	Execute(ctx context.Context, query usecases.ListExpiryRunsQuery) ([]*dto.ExpiryRunDTO, error)
}

type getRevenueSummaryUseCase interface {
	Execute(ctx context.Context, query revenueusecases.GetRevenueSummaryQuery) (*revenuedto.RevenueSummaryDTO, error)
}
