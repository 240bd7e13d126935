package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/shared/logger"
)

// ScanExpiredAccountsUseCase reads the set of paid accounts whose plan expiry
// has passed. It never writes.
type ScanExpiredAccountsUseCase struct {
	accountRepo account.Repository
	logger      logger.Interface
}

func NewScanExpiredAccountsUseCase(
	accountRepo account.Repository,
	logger logger.Interface,
) *ScanExpiredAccountsUseCase {
	return &ScanExpiredAccountsUseCase{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Execute returns paid accounts with planExpiry strictly before now. Rows the
// store returns that do not satisfy the domain predicate are dropped.
func (uc *ScanExpiredAccountsUseCase) Execute(ctx context.Context, now time.Time) ([]*account.Account, error) {
	rows, err := uc.accountRepo.FindExpiredPaid(ctx, now)
	if err != nil {
		if !errors.Is(err, account.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", account.ErrStoreUnavailable, err)
		}
		uc.logger.Errorw("failed to scan expired accounts", "error", err, "now", now)
		return nil, fmt.Errorf("failed to scan expired accounts: %w", err)
	}

	expired := make([]*account.Account, 0, len(rows))
	for _, acc := range rows {
		if acc == nil || !acc.IsExpiredAt(now) {
			continue
		}
		expired = append(expired, acc)
	}

	if dropped := len(rows) - len(expired); dropped > 0 {
		uc.logger.Warnw("store returned accounts that are not expired",
			"dropped", dropped,
			"now", now,
		)
	}

	uc.logger.Debugw("scanned expired accounts", "count", len(expired), "now", now)

	return expired, nil
}
