package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/echomag/echomag/internal/domain/payment"
	"github.com/echomag/echomag/internal/infrastructure/persistence/mappers"
	"github.com/echomag/echomag/internal/infrastructure/persistence/models"
	"github.com/echomag/echomag/internal/shared/logger"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PaymentMapper
	logger logger.Interface
}

func NewPaymentRepository(db *gorm.DB, logger logger.Interface) payment.Repository {
	return &PaymentRepositoryImpl{
		db:     db,
		mapper: mappers.NewPaymentMapper(),
		logger: logger,
	}
}

// FindCompletedBetween attributes a payment to completed_at, or created_at
// when the gateway never stamped a completion time.
func (r *PaymentRepositoryImpl) FindCompletedBetween(ctx context.Context, from, to time.Time) ([]*payment.Payment, error) {
	var rows []*models.PaymentModel

	err := r.db.WithContext(ctx).
		Where("status = ?", string(payment.StatusCompleted)).
		Where(
			r.db.Where("completed_at >= ? AND completed_at < ?", from.UTC(), to.UTC()).
				Or("completed_at IS NULL AND created_at >= ? AND created_at < ?", from.UTC(), to.UTC()),
		).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to find completed payments", "from", from, "to", to, "error", err)
		return nil, fmt.Errorf("failed to find completed payments: %w", err)
	}

	entities := make([]*payment.Payment, 0, len(rows))
	for _, row := range rows {
		entity, err := r.mapper.ToEntity(row)
		if err != nil {
			r.logger.Warnw("skipping unreadable payment row", "payment_id", row.PaymentID, "error", err)
			continue
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
