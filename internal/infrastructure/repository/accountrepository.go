package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/infrastructure/persistence/mappers"
	"github.com/echomag/echomag/internal/infrastructure/persistence/models"
	"github.com/echomag/echomag/internal/shared/logger"
)

type AccountRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.AccountMapper
	logger logger.Interface
}

func NewAccountRepository(db *gorm.DB, logger logger.Interface) account.Repository {
	return &AccountRepositoryImpl{
		db:     db,
		mapper: mappers.NewAccountMapper(),
		logger: logger,
	}
}

func (r *AccountRepositoryImpl) FindExpiredPaid(ctx context.Context, now time.Time) ([]*account.Account, error) {
	var rows []*models.AccountModel

	err := r.db.WithContext(ctx).
		Where("plan IN ?", account.PaidPlanStrings()).
		Where("plan_expiry IS NOT NULL AND plan_expiry < ?", now.UTC()).
		Order("plan_expiry ASC, uid ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to find expired paid accounts", "now", now, "error", err)
		return nil, fmt.Errorf("failed to find expired accounts: %w", err)
	}

	return r.toEntities(rows), nil
}

func (r *AccountRepositoryImpl) FindPaid(ctx context.Context) ([]*account.Account, error) {
	var rows []*models.AccountModel

	err := r.db.WithContext(ctx).
		Where("plan IN ?", account.PaidPlanStrings()).
		Order("uid ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to find paid accounts", "error", err)
		return nil, fmt.Errorf("failed to find paid accounts: %w", err)
	}

	return r.toEntities(rows), nil
}

func (r *AccountRepositoryImpl) GetByUID(ctx context.Context, uid int64) (*account.Account, error) {
	var model models.AccountModel

	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get account by uid", "uid", uid, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map account model to entity", "uid", uid, "error", err)
		return nil, fmt.Errorf("failed to map account: %w", err)
	}

	return entity, nil
}

func (r *AccountRepositoryImpl) DowngradeToFree(ctx context.Context, uid int64, previous account.Plan, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("uid = ? AND plan = ?", uid, string(previous)).
		Where("plan_expiry IS NOT NULL AND plan_expiry < ?", now.UTC()).
		Updates(map[string]interface{}{
			"plan":        string(account.PlanFree),
			"plan_start":  nil,
			"plan_expiry": nil,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to downgrade account %d: %w", uid, result.Error)
	}

	return result.RowsAffected > 0, nil
}

// toEntities skips rows that no longer map to a valid account so one bad
// record cannot block a scan.
func (r *AccountRepositoryImpl) toEntities(rows []*models.AccountModel) []*account.Account {
	entities := make([]*account.Account, 0, len(rows))
	for _, row := range rows {
		entity, err := r.mapper.ToEntity(row)
		if err != nil {
			r.logger.Warnw("skipping unreadable account row", "uid", row.UID, "error", err)
			continue
		}
		entities = append(entities, entity)
	}
	return entities
}
