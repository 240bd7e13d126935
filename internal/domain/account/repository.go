package account

import (
	"context"
	"time"
)

// Repository is the account store port used by the expiry engine.
type Repository interface {
	// FindExpiredPaid returns paid accounts whose plan expiry is set and
	// strictly before now, ordered by expiry then uid.
	FindExpiredPaid(ctx context.Context, now time.Time) ([]*Account, error)
	// FindPaid returns every account on a paid tier, ordered by uid.
	FindPaid(ctx context.Context) ([]*Account, error)
	// GetByUID returns nil, nil when no account matches.
	GetByUID(ctx context.Context, uid int64) (*Account, error)
	// DowngradeToFree resets the account to free only if it is still on
	// previous with an expiry before now. matched is false when the guard
	// did not hold.
	DowngradeToFree(ctx context.Context, uid int64, previous Plan, now time.Time) (matched bool, err error)
}
