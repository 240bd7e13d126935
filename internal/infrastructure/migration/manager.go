package migration

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/echomag/echomag/internal/shared/constants"
	"github.com/echomag/echomag/internal/shared/logger"
)

// ErrNotVersioned is returned by Status for backends without a version table.
var ErrNotVersioned = errors.New("migration strategy does not track versions")

// Manager handles database migrations with the strategy that fits the driver
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks goose scripts for MySQL and gorm AutoMigrate for SQLite.
func NewManager(driver string, log logger.Interface) (*Manager, error) {
	var strategy Strategy
	switch driver {
	case constants.DriverMySQL:
		strategy = NewGooseStrategy("mysql", log)
	case constants.DriverSQLite:
		strategy = NewGormAutoMigrateStrategy(log)
	default:
		return nil, fmt.Errorf("no migration strategy for driver %q", driver)
	}

	return &Manager{
		strategy: strategy,
		logger:   log.With("component", "migration.manager"),
	}, nil
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// Status prints the applied and pending scripts.
func (m *Manager) Status(db *gorm.DB) error {
	versioned, ok := m.strategy.(VersionedStrategy)
	if !ok {
		return ErrNotVersioned
	}
	return versioned.Status(db)
}

func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// Version returns the latest applied script version.
func (m *Manager) Version(db *gorm.DB) (int64, error) {
	versioned, ok := m.strategy.(VersionedStrategy)
	if !ok {
		return 0, ErrNotVersioned
	}
	return versioned.GetVersion(db)
}
