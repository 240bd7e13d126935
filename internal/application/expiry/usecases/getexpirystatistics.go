package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/shared/biztime"
	"github.com/echomag/echomag/internal/shared/errors"
	"github.com/echomag/echomag/internal/shared/logger"
)

type GetExpiryStatisticsQuery struct {
	HorizonDays *int
	// Now pins the evaluation instant. Pinned queries bypass the cache.
	Now *time.Time
}

// GetExpiryStatisticsUseCase reports active, expired and expiring-soon paid
// accounts. It is read-only.
type GetExpiryStatisticsUseCase struct {
	accountRepo    account.Repository
	cache          StatisticsCache
	defaultHorizon int
	logger         logger.Interface
	now            func() time.Time
}

func NewGetExpiryStatisticsUseCase(
	accountRepo account.Repository,
	cache StatisticsCache,
	defaultHorizon int,
	logger logger.Interface,
) *GetExpiryStatisticsUseCase {
	if defaultHorizon < 0 {
		defaultHorizon = DefaultHorizonDays
	}
	return &GetExpiryStatisticsUseCase{
		accountRepo:    accountRepo,
		cache:          cache,
		defaultHorizon: defaultHorizon,
		logger:         logger,
		now:            biztime.NowUTC,
	}
}

func (uc *GetExpiryStatisticsUseCase) Execute(ctx context.Context, query GetExpiryStatisticsQuery) (*dto.ExpiryStatisticsDTO, error) {
	horizon, err := resolveHorizon(query.HorizonDays, uc.defaultHorizon, "horizon_days")
	if err != nil {
		return nil, err
	}

	useCache := uc.cache != nil && query.Now == nil
	if useCache {
		cached, ok, err := uc.cache.Get(ctx, horizon)
		if err != nil {
			uc.logger.Warnw("failed to read expiry statistics cache", "horizon_days", horizon, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	now := uc.now()
	if query.Now != nil {
		now = query.Now.UTC()
	}

	paid, err := uc.accountRepo.FindPaid(ctx)
	if err != nil {
		uc.logger.Errorw("failed to load paid accounts for statistics", "error", err)
		return nil, errors.NewUnavailableError("account store unavailable")
	}

	stats := buildStatistics(paid, now, horizon)

	if useCache {
		if err := uc.cache.Set(ctx, horizon, stats); err != nil {
			uc.logger.Warnw("failed to cache expiry statistics", "horizon_days", horizon, "error", err)
		}
	}

	return stats, nil
}

func buildStatistics(paid []*account.Account, now time.Time, horizon int) *dto.ExpiryStatisticsDTO {
	stats := &dto.ExpiryStatisticsDTO{
		PerTier:      make(map[string]dto.TierStatisticsDTO),
		ExpiringList: []dto.ExpiringAccountDTO{},
		HorizonDays:  horizon,
		GeneratedAt:  now,
	}
	for _, p := range account.PaidPlans() {
		stats.PerTier[string(p)] = dto.TierStatisticsDTO{}
	}

	for _, acc := range paid {
		if acc == nil || !acc.Plan().IsPaid() {
			continue
		}
		st := classify(acc, now, horizon)

		tier := stats.PerTier[string(acc.Plan())]
		tier.Total++
		stats.TotalPaidAccounts++

		if st.expired {
			tier.Expired++
			stats.Expired++
		}
		if st.active {
			tier.Active++
			stats.Active++
		}
		if st.expiringSoon {
			tier.ExpiringSoon++
			stats.ExpiringSoon++
			stats.ExpiringList = append(stats.ExpiringList, toExpiringAccountDTO(acc, st.days))
		}
		stats.PerTier[string(acc.Plan())] = tier
	}

	sortExpiring(stats.ExpiringList)
	return stats
}

func resolveHorizon(value *int, fallback int, field string) (int, error) {
	if value == nil {
		return fallback, nil
	}
	if *value < 0 {
		return 0, errors.NewValidationError(
			fmt.Sprintf("%s must be a non-negative integer", field),
			fmt.Sprintf("got %d", *value),
		)
	}
	if *value > MaxHorizonDays {
		return 0, errors.NewValidationError(
			fmt.Sprintf("%s must be at most %d", field, MaxHorizonDays),
			fmt.Sprintf("got %d", *value),
		)
	}
	return *value, nil
}
