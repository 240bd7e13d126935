package migration

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/echomag/echomag/internal/infrastructure/persistence/models"
	"github.com/echomag/echomag/internal/shared/constants"
	"github.com/echomag/echomag/internal/shared/logger"
)

func TestNewManager_SelectsStrategyByDriver(t *testing.T) {
	log := logger.NewNopLogger()

	m, err := NewManager(constants.DriverMySQL, log)
	require.NoError(t, err)
	assert.Equal(t, "goose", m.GetStrategy().GetName())

	m, err = NewManager(constants.DriverSQLite, log)
	require.NoError(t, err)
	assert.Equal(t, "gorm_auto_migrate", m.GetStrategy().GetName())

	_, err = NewManager(constants.DriverMongoDB, log)
	assert.Error(t, err)
}

func TestManager_MigrateSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	m, err := NewManager(constants.DriverSQLite, logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, m.Migrate(db))

	for _, table := range []string{constants.TableAccounts, constants.TablePayments, constants.TableExpiryRuns} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.AccountModel{}, "idx_accounts_plan_expiry"))

	assert.ErrorIs(t, m.Status(db), ErrNotVersioned)
}

func TestEmbeddedScripts(t *testing.T) {
	files, err := fs.Glob(scripts, "scripts/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"scripts/00001_create_accounts.sql",
		"scripts/00002_create_payments.sql",
		"scripts/00003_create_expiry_runs.sql",
	}, files)

	for _, f := range files {
		raw, err := fs.ReadFile(scripts, f)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "-- +goose Up", f)
		assert.Contains(t, string(raw), "-- +goose Down", f)
	}
}
