package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/shared/logger"
)

func TestExpiryRunRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpiryRunRepository(db, logger.NewNopLogger())
	ctx := context.Background()

	t.Run("latest on empty log", func(t *testing.T) {
		run, err := repo.GetLatest(ctx)
		assert.NoError(t, err)
		assert.Nil(t, run)
	})

	first, err := expiry.NewRun(expiry.TriggerScheduled, utc(2024, 3, 1, 0))
	require.NoError(t, err)
	require.NoError(t, first.Complete(utc(2024, 3, 1, 0), "done", expiry.Counts{
		Candidates: 2,
		Succeeded:  1,
		Failed:     1,
		PerTier:    map[string]int{"echopro": 1, "echoproplus": 0},
	}, []expiry.Failure{{UID: 9, PreviousPlan: "echopro", Error: "write rejected"}}))
	require.NoError(t, repo.Create(ctx, first))

	second, err := expiry.NewRun(expiry.TriggerAPI, utc(2024, 3, 2, 0))
	require.NoError(t, err)
	require.NoError(t, second.Fail(utc(2024, 3, 2, 0), "Expiry cycle failed", errors.New("store down")))
	require.NoError(t, repo.Create(ctx, second))

	t.Run("list newest first", func(t *testing.T) {
		runs, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, second.ID(), runs[0].ID())
		assert.Equal(t, first.ID(), runs[1].ID())

		assert.False(t, runs[0].Success())
		assert.Equal(t, "store down", runs[0].ErrorMessage())

		assert.True(t, runs[1].Success())
		assert.Equal(t, 1, runs[1].Counts().PerTier["echopro"])
		require.Len(t, runs[1].Failures(), 1)
		assert.Equal(t, int64(9), runs[1].Failures()[0].UID)
	})

	t.Run("limit", func(t *testing.T) {
		runs, err := repo.ListRecent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, second.ID(), runs[0].ID())
	})

	t.Run("latest", func(t *testing.T) {
		run, err := repo.GetLatest(ctx)
		require.NoError(t, err)
		require.NotNil(t, run)
		assert.Equal(t, expiry.TriggerAPI, run.Trigger())
	})
}
