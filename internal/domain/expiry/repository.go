package expiry

import "context"

// RunRepository persists expiry run records.
type RunRepository interface {
	Create(ctx context.Context, run *Run) error
	// ListRecent returns the newest runs first.
	ListRecent(ctx context.Context, limit int) ([]*Run, error)
	// GetLatest returns nil, nil when no run has been recorded.
	GetLatest(ctx context.Context) (*Run, error)
}
