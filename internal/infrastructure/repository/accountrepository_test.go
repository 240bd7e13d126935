package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/infrastructure/persistence/models"
	"github.com/echomag/echomag/internal/shared/logger"
)

func TestAccountRepository_FindExpiredPaid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db, logger.NewNopLogger())
	ctx := context.Background()
	now := utc(2024, 3, 1, 0)

	seedAccount(t, db, 1, "echopro", ptr(utc(2024, 1, 1, 0)), ptr(utc(2024, 2, 1, 0)))
	seedAccount(t, db, 2, "echoproplus", ptr(utc(2024, 2, 1, 0)), ptr(utc(2024, 4, 1, 0)))
	seedAccount(t, db, 3, "free", nil, ptr(utc(2024, 1, 1, 0)))
	seedAccount(t, db, 4, "echoproplus", ptr(utc(2023, 1, 1, 0)), ptr(utc(2024, 1, 15, 0)))
	seedAccount(t, db, 5, "echopro", ptr(utc(2024, 1, 1, 0)), nil)
	seedAccount(t, db, 6, "echopro", nil, ptr(now))

	t.Run("returns only paid accounts with an expiry strictly before now", func(t *testing.T) {
		expired, err := repo.FindExpiredPaid(ctx, now)
		require.NoError(t, err)
		require.Len(t, expired, 2)

		assert.Equal(t, int64(4), expired[0].UID())
		assert.Equal(t, account.PlanEchoProPlus, expired[0].Plan())
		assert.Equal(t, int64(1), expired[1].UID())
	})

	t.Run("skips rows with an unknown plan", func(t *testing.T) {
		seedAccount(t, db, 7, "echopro", nil, ptr(utc(2024, 1, 1, 0)))
		require.NoError(t, db.Model(&models.AccountModel{}).Where("uid = ?", 7).Update("plan", "legacy").Error)

		expired, err := repo.FindExpiredPaid(ctx, now)
		require.NoError(t, err)
		for _, acc := range expired {
			assert.NotEqual(t, int64(7), acc.UID())
		}
	})

	t.Run("non-UTC now is normalised", func(t *testing.T) {
		loc := time.FixedZone("UTC+8", 8*3600)
		expired, err := repo.FindExpiredPaid(ctx, now.In(loc))
		require.NoError(t, err)
		assert.Len(t, expired, 2)
	})
}

func TestAccountRepository_FindPaid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db, logger.NewNopLogger())

	seedAccount(t, db, 30, "echopro", nil, nil)
	seedAccount(t, db, 10, "free", nil, nil)
	seedAccount(t, db, 20, "echoproplus", nil, ptr(utc(2030, 1, 1, 0)))

	paid, err := repo.FindPaid(context.Background())
	require.NoError(t, err)
	require.Len(t, paid, 2)
	assert.Equal(t, int64(20), paid[0].UID())
	assert.Equal(t, int64(30), paid[1].UID())
}

func TestAccountRepository_GetByUID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db, logger.NewNopLogger())
	ctx := context.Background()

	seedAccount(t, db, 42, "echopro", ptr(utc(2024, 1, 1, 0)), ptr(utc(2024, 2, 1, 0)))

	t.Run("found", func(t *testing.T) {
		acc, err := repo.GetByUID(ctx, 42)
		require.NoError(t, err)
		require.NotNil(t, acc)
		assert.Equal(t, account.PlanEchoPro, acc.Plan())
		require.NotNil(t, acc.PlanExpiry())
		assert.True(t, acc.PlanExpiry().Equal(utc(2024, 2, 1, 0)))
	})

	t.Run("missing account returns nil", func(t *testing.T) {
		acc, err := repo.GetByUID(ctx, 404)
		assert.NoError(t, err)
		assert.Nil(t, acc)
	})
}

func TestAccountRepository_DowngradeToFree(t *testing.T) {
	ctx := context.Background()
	now := utc(2024, 3, 1, 0)

	t.Run("downgrades and clears both plan dates", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAccountRepository(db, logger.NewNopLogger())
		seedAccount(t, db, 1, "echopro", ptr(utc(2024, 1, 1, 0)), ptr(utc(2024, 2, 1, 0)))

		matched, err := repo.DowngradeToFree(ctx, 1, account.PlanEchoPro, now)
		require.NoError(t, err)
		assert.True(t, matched)

		acc, err := repo.GetByUID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, account.PlanFree, acc.Plan())
		assert.Nil(t, acc.PlanStart())
		assert.Nil(t, acc.PlanExpiry())
	})

	t.Run("renewed account is left alone", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAccountRepository(db, logger.NewNopLogger())
		seedAccount(t, db, 1, "echopro", ptr(utc(2024, 2, 15, 0)), ptr(utc(2024, 5, 1, 0)))

		matched, err := repo.DowngradeToFree(ctx, 1, account.PlanEchoPro, now)
		require.NoError(t, err)
		assert.False(t, matched)

		acc, err := repo.GetByUID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, account.PlanEchoPro, acc.Plan())
	})

	t.Run("plan changed since the scan", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAccountRepository(db, logger.NewNopLogger())
		seedAccount(t, db, 1, "echoproplus", nil, ptr(utc(2024, 2, 1, 0)))

		matched, err := repo.DowngradeToFree(ctx, 1, account.PlanEchoPro, now)
		require.NoError(t, err)
		assert.False(t, matched)
	})

	t.Run("second downgrade is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAccountRepository(db, logger.NewNopLogger())
		seedAccount(t, db, 1, "echopro", nil, ptr(utc(2024, 2, 1, 0)))

		first, err := repo.DowngradeToFree(ctx, 1, account.PlanEchoPro, now)
		require.NoError(t, err)
		second, err := repo.DowngradeToFree(ctx, 1, account.PlanEchoPro, now)
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
	})

	t.Run("concurrent downgrades match exactly once", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAccountRepository(db, logger.NewNopLogger())
		seedAccount(t, db, 1, "echopro", nil, ptr(utc(2024, 2, 1, 0)))

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			matches int
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repo.DowngradeToFree(ctx, 1, account.PlanEchoPro, now)
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					matches++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, matches)
	})

	t.Run("cancelled context surfaces an error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAccountRepository(db, logger.NewNopLogger())
		seedAccount(t, db, 1, "echopro", nil, ptr(utc(2024, 2, 1, 0)))

		cctx, cancel := context.WithTimeout(ctx, time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)

		_, err := repo.DowngradeToFree(cctx, 1, account.PlanEchoPro, now)
		assert.Error(t, err)
	})
}
