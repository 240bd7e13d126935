package usecases

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/echomag/echomag/internal/application/revenue/dto"
	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/domain/payment"
	"github.com/echomag/echomag/internal/shared/biztime"
	"github.com/echomag/echomag/internal/shared/errors"
	"github.com/echomag/echomag/internal/shared/logger"
)

const (
	DefaultRevenueMonths = 12
	MaxRevenueMonths     = 36
)

type GetRevenueSummaryQuery struct {
	Months *int
	Now    *time.Time
}

// GetRevenueSummaryUseCase sums completed payments per business month and per
// tier, alongside the number of currently active paid accounts.
type GetRevenueSummaryUseCase struct {
	paymentRepo payment.Repository
	accountRepo account.Repository
	logger      logger.Interface
	now         func() time.Time
}

func NewGetRevenueSummaryUseCase(
	paymentRepo payment.Repository,
	accountRepo account.Repository,
	logger logger.Interface,
) *GetRevenueSummaryUseCase {
	return &GetRevenueSummaryUseCase{
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		logger:      logger,
		now:         biztime.NowUTC,
	}
}

func (uc *GetRevenueSummaryUseCase) Execute(ctx context.Context, query GetRevenueSummaryQuery) (*dto.RevenueSummaryDTO, error) {
	months := DefaultRevenueMonths
	if query.Months != nil {
		months = *query.Months
	}
	if months < 1 || months > MaxRevenueMonths {
		return nil, errors.NewValidationError(fmt.Sprintf("months must be between 1 and %d", MaxRevenueMonths))
	}

	now := uc.now()
	if query.Now != nil {
		now = query.Now.UTC()
	}

	to := biztime.AddMonthsUTC(biztime.StartOfMonthUTC(now), 1)
	from := biztime.AddMonthsUTC(to, -months)

	payments, err := uc.paymentRepo.FindCompletedBetween(ctx, from, to)
	if err != nil {
		uc.logger.Errorw("failed to load completed payments", "from", from, "to", to, "error", err)
		return nil, errors.NewUnavailableError("payment store unavailable")
	}

	paid, err := uc.accountRepo.FindPaid(ctx)
	if err != nil {
		uc.logger.Errorw("failed to load paid accounts for revenue summary", "error", err)
		return nil, errors.NewUnavailableError("account store unavailable")
	}

	summary := &dto.RevenueSummaryDTO{
		Months:      months,
		From:        from,
		To:          to,
		Currencies:  []string{},
		Monthly:     make([]dto.MonthlyRevenueDTO, 0, months),
		PerTier:     make(map[string]dto.TierRevenueDTO),
		GeneratedAt: now,
	}

	monthIndex := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := biztime.MonthKey(biztime.AddMonthsUTC(from, i))
		monthIndex[key] = i
		summary.Monthly = append(summary.Monthly, dto.MonthlyRevenueDTO{Month: key})
	}
	for _, p := range account.PaidPlans() {
		summary.PerTier[string(p)] = dto.TierRevenueDTO{}
	}

	currencies := make(map[string]struct{})
	for _, p := range payments {
		if p == nil || !p.IsCompleted() {
			continue
		}
		i, ok := monthIndex[biztime.MonthKey(p.RevenueTime())]
		if !ok {
			continue
		}
		amount := p.NetAmount()

		summary.Monthly[i].Revenue += amount
		summary.Monthly[i].Payments++
		summary.TotalRevenue += amount
		summary.Payments++

		tier := summary.PerTier[string(p.PlanType())]
		tier.Revenue += amount
		tier.Payments++
		summary.PerTier[string(p.PlanType())] = tier

		if p.Currency() != "" {
			currencies[p.Currency()] = struct{}{}
		}
	}

	for _, acc := range paid {
		if acc == nil || !acc.IsActiveAt(now) {
			continue
		}
		tier := summary.PerTier[string(acc.Plan())]
		tier.ActiveAccounts++
		summary.PerTier[string(acc.Plan())] = tier
	}

	for c := range currencies {
		summary.Currencies = append(summary.Currencies, c)
	}
	sort.Strings(summary.Currencies)

	summary.TotalRevenue = roundCents(summary.TotalRevenue)
	for i := range summary.Monthly {
		summary.Monthly[i].Revenue = roundCents(summary.Monthly[i].Revenue)
	}
	for k, v := range summary.PerTier {
		v.Revenue = roundCents(v.Revenue)
		summary.PerTier[k] = v
	}

	return summary, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
