package payment

import (
	"context"
	"time"
)

// Repository is the read-only payment store port.
type Repository interface {
	// FindCompletedBetween returns completed payments attributed to [from, to).
	FindCompletedBetween(ctx context.Context, from, to time.Time) ([]*Payment, error)
}
