package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/echomag/echomag/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	// every pooled connection to :memory: would otherwise see its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.AccountModel{}, &models.PaymentModel{}, &models.ExpiryRunModel{})
	require.NoError(t, err)

	return db
}

func seedAccount(t *testing.T, db *gorm.DB, uid int64, plan string, start, expiry *time.Time) {
	row := &models.AccountModel{
		UID:        uid,
		Username:   "reader",
		Email:      "reader@example.com",
		UserType:   "user",
		Plan:       plan,
		PlanStart:  start,
		PlanExpiry: expiry,
	}
	require.NoError(t, db.Create(row).Error)
}

func utc(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}
