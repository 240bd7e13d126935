package usecases

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/shared/goroutine"
	"github.com/echomag/echomag/internal/shared/logger"
)

const (
	DefaultDowngradeConcurrency = 8
	DefaultWriteTimeout         = 10 * time.Second
)

// DowngradeResult summarises one downgrade batch.
type DowngradeResult struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	// PerTier counts every candidate by the plan held before, so it always
	// sums to Total. PerTierDowngraded counts only the accounts written.
	PerTier           map[account.Plan]int
	PerTierDowngraded map[account.Plan]int
	Updated           []dto.UpdatedAccountDTO
	Failures          []dto.FailedAccountDTO
}

type downgradeOutcome int

const (
	outcomeUpdated downgradeOutcome = iota
	outcomeSkipped
	outcomeFailed
)

type accountOutcome struct {
	kind     downgradeOutcome
	previous account.Plan
	err      error
}

// DowngradeAccountsUseCase resets expired accounts to the free tier. Every
// account is written independently so one failure never stops the batch.
type DowngradeAccountsUseCase struct {
	accountRepo  account.Repository
	logger       logger.Interface
	concurrency  int
	writeTimeout time.Duration
}

func NewDowngradeAccountsUseCase(
	accountRepo account.Repository,
	concurrency int,
	writeTimeout time.Duration,
	logger logger.Interface,
) *DowngradeAccountsUseCase {
	if concurrency <= 0 {
		concurrency = DefaultDowngradeConcurrency
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &DowngradeAccountsUseCase{
		accountRepo:  accountRepo,
		logger:       logger,
		concurrency:  concurrency,
		writeTimeout: writeTimeout,
	}
}

// Execute downgrades accounts concurrently and waits for the whole batch.
// Each write is guarded on the previous plan and on planExpiry < now, so a
// renewal that lands mid-cycle is skipped rather than overwritten.
func (uc *DowngradeAccountsUseCase) Execute(ctx context.Context, accounts []*account.Account, now time.Time) *DowngradeResult {
	outcomes := make([]accountOutcome, len(accounts))

	var g errgroup.Group
	g.SetLimit(uc.concurrency)

	for i, acc := range accounts {
		g.Go(func() error {
			name := fmt.Sprintf("downgrade account %d", acc.UID())
			err := goroutine.SafeCall(uc.logger, name, func() error {
				outcomes[i] = uc.downgradeOne(ctx, acc, now)
				return nil
			})
			if err != nil {
				outcomes[i] = accountOutcome{kind: outcomeFailed, previous: acc.Plan(), err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	return uc.summarise(accounts, outcomes)
}

func (uc *DowngradeAccountsUseCase) downgradeOne(ctx context.Context, acc *account.Account, now time.Time) accountOutcome {
	previous := acc.Plan()
	if !previous.IsPaid() {
		return accountOutcome{kind: outcomeSkipped, previous: previous}
	}

	writeCtx, cancel := context.WithTimeout(ctx, uc.writeTimeout)
	defer cancel()

	matched, err := uc.accountRepo.DowngradeToFree(writeCtx, acc.UID(), previous, now)
	if err != nil {
		uc.logger.Errorw("failed to downgrade expired account",
			"uid", acc.UID(),
			"previous_plan", previous,
			"error", err,
		)
		return accountOutcome{kind: outcomeFailed, previous: previous, err: err}
	}

	if !matched {
		uc.logger.Infow("account changed since scan, skipping downgrade",
			"uid", acc.UID(),
			"previous_plan", previous,
		)
		return accountOutcome{kind: outcomeSkipped, previous: previous}
	}

	acc.Downgrade()
	uc.logger.Debugw("account downgraded to free plan", "uid", acc.UID(), "previous_plan", previous)

	return accountOutcome{kind: outcomeUpdated, previous: previous}
}

func (uc *DowngradeAccountsUseCase) summarise(accounts []*account.Account, outcomes []accountOutcome) *DowngradeResult {
	result := &DowngradeResult{
		Total:             len(accounts),
		PerTier:           make(map[account.Plan]int),
		PerTierDowngraded: make(map[account.Plan]int),
		Updated:           []dto.UpdatedAccountDTO{},
		Failures:          []dto.FailedAccountDTO{},
	}

	for i, acc := range accounts {
		o := outcomes[i]
		result.PerTier[o.previous]++
		switch o.kind {
		case outcomeUpdated:
			result.Succeeded++
			result.PerTierDowngraded[o.previous]++
			result.Updated = append(result.Updated, dto.UpdatedAccountDTO{
				UID:          acc.UID(),
				Username:     acc.Username(),
				PreviousPlan: string(o.previous),
				NewPlan:      string(account.PlanFree),
			})
		case outcomeSkipped:
			result.Skipped++
		case outcomeFailed:
			result.Failed++
			result.Failures = append(result.Failures, dto.FailedAccountDTO{
				UID:          acc.UID(),
				PreviousPlan: string(o.previous),
				Error:        o.err.Error(),
			})
		}
	}

	sort.Slice(result.Updated, func(i, j int) bool { return result.Updated[i].UID < result.Updated[j].UID })
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].UID < result.Failures[j].UID })

	return result
}
