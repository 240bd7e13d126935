package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomag/echomag/internal/domain/expiry"
	apperrors "github.com/echomag/echomag/internal/shared/errors"
	"github.com/echomag/echomag/internal/shared/logger"
)

func seedRuns(t *testing.T, repo *memoryRunRepository, n int) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		run, err := expiry.NewRun(expiry.TriggerScheduled, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		require.NoError(t, run.Complete(base.Add(time.Duration(i)*time.Hour+time.Second), "ok", expiry.Counts{Succeeded: i}, nil))
		require.NoError(t, repo.Create(context.Background(), run))
	}
}

func TestListExpiryRuns_NewestFirstWithDefaultLimit(t *testing.T) {
	repo := &memoryRunRepository{}
	seedRuns(t, repo, DefaultRunListLimit+5)

	uc := NewListExpiryRunsUseCase(repo, logger.NewNopLogger())
	runs, err := uc.Execute(context.Background(), ListExpiryRunsQuery{})

	require.NoError(t, err)
	require.Len(t, runs, DefaultRunListLimit)
	assert.Equal(t, DefaultRunListLimit+4, runs[0].Succeeded)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
}

func TestListExpiryRuns_LimitValidation(t *testing.T) {
	uc := NewListExpiryRunsUseCase(&memoryRunRepository{}, logger.NewNopLogger())

	for _, l := range []int{0, -1, MaxRunListLimit + 1} {
		_, err := uc.Execute(context.Background(), ListExpiryRunsQuery{Limit: intPtr(l)})
		assert.True(t, apperrors.IsValidationError(err), "limit %d", l)
	}
}

func TestListExpiryRuns_StoreFailure(t *testing.T) {
	uc := NewListExpiryRunsUseCase(&memoryRunRepository{err: errors.New("down")}, logger.NewNopLogger())
	_, err := uc.Execute(context.Background(), ListExpiryRunsQuery{})
	assert.True(t, apperrors.IsUnavailableError(err))
}
