package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/infrastructure/persistence/mappers"
	"github.com/echomag/echomag/internal/infrastructure/persistence/models"
	"github.com/echomag/echomag/internal/shared/logger"
)

type ExpiryRunRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ExpiryRunMapper
	logger logger.Interface
}

func NewExpiryRunRepository(db *gorm.DB, logger logger.Interface) expiry.RunRepository {
	return &ExpiryRunRepositoryImpl{
		db:     db,
		mapper: mappers.NewExpiryRunMapper(),
		logger: logger,
	}
}

func (r *ExpiryRunRepositoryImpl) Create(ctx context.Context, run *expiry.Run) error {
	model, err := r.mapper.ToModel(run)
	if err != nil {
		r.logger.Errorw("failed to map expiry run to model", "run_id", run.ID(), "error", err)
		return fmt.Errorf("failed to map expiry run: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create expiry run", "run_id", run.ID(), "error", err)
		return fmt.Errorf("failed to create expiry run: %w", err)
	}

	return nil
}

func (r *ExpiryRunRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*expiry.Run, error) {
	var rows []*models.ExpiryRunModel

	if err := r.db.WithContext(ctx).Order("started_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list expiry runs", "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to list expiry runs: %w", err)
	}

	entities, err := r.mapper.ToEntities(rows)
	if err != nil {
		r.logger.Errorw("failed to map expiry runs", "error", err)
		return nil, fmt.Errorf("failed to map expiry runs: %w", err)
	}
	return entities, nil
}

func (r *ExpiryRunRepositoryImpl) GetLatest(ctx context.Context) (*expiry.Run, error) {
	var model models.ExpiryRunModel

	if err := r.db.WithContext(ctx).Order("started_at DESC, id DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get latest expiry run", "error", err)
		return nil, fmt.Errorf("failed to get latest expiry run: %w", err)
	}

	return r.mapper.ToEntity(&model)
}
