package usecases

import (
	"context"
	"time"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/shared/biztime"
	"github.com/echomag/echomag/internal/shared/errors"
	"github.com/echomag/echomag/internal/shared/logger"
)

const (
	expiringTodayDays    = 1
	expiringThisWeekDays = 7
)

type ListExpiringAccountsQuery struct {
	Days *int
	Now  *time.Time
}

// ListExpiringAccountsUseCase lists paid accounts that expire within the next
// Days days, soonest first.
type ListExpiringAccountsUseCase struct {
	accountRepo account.Repository
	defaultDays int
	logger      logger.Interface
	now         func() time.Time
}

func NewListExpiringAccountsUseCase(
	accountRepo account.Repository,
	defaultDays int,
	logger logger.Interface,
) *ListExpiringAccountsUseCase {
	if defaultDays < 0 {
		defaultDays = DefaultHorizonDays
	}
	return &ListExpiringAccountsUseCase{
		accountRepo: accountRepo,
		defaultDays: defaultDays,
		logger:      logger,
		now:         biztime.NowUTC,
	}
}

func (uc *ListExpiringAccountsUseCase) Execute(ctx context.Context, query ListExpiringAccountsQuery) (*dto.ExpiringAccountsDTO, error) {
	days, err := resolveHorizon(query.Days, uc.defaultDays, "days")
	if err != nil {
		return nil, err
	}

	now := uc.now()
	if query.Now != nil {
		now = query.Now.UTC()
	}

	paid, err := uc.accountRepo.FindPaid(ctx)
	if err != nil {
		uc.logger.Errorw("failed to load paid accounts for expiring list", "error", err)
		return nil, errors.NewUnavailableError("account store unavailable")
	}

	result := &dto.ExpiringAccountsDTO{
		Days:        days,
		PerTier:     emptyTierCounts(),
		Accounts:    []dto.ExpiringAccountDTO{},
		GeneratedAt: now,
	}

	for _, acc := range paid {
		if acc == nil || !acc.Plan().IsPaid() {
			continue
		}
		st := classify(acc, now, days)
		if !st.expiringSoon {
			continue
		}

		result.Accounts = append(result.Accounts, toExpiringAccountDTO(acc, st.days))
		result.PerTier[string(acc.Plan())]++
		if st.days <= expiringTodayDays {
			result.ExpiringToday++
		}
		if st.days <= expiringThisWeekDays {
			result.ExpiringThisWeek++
		}
	}

	sortExpiring(result.Accounts)
	result.TotalExpiring = len(result.Accounts)

	uc.logger.Debugw("listed expiring accounts", "days", days, "count", result.TotalExpiring)

	return result, nil
}
