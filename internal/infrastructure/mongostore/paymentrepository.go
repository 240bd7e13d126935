package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/echomag/echomag/internal/domain/payment"
	"github.com/echomag/echomag/internal/shared/constants"
	"github.com/echomag/echomag/internal/shared/logger"
)

type PaymentRepository struct {
	collection *mongo.Collection
	logger     logger.Interface
}

func NewPaymentRepository(db *mongo.Database, logger logger.Interface) payment.Repository {
	return &PaymentRepository{
		collection: db.Collection(constants.CollectionPayments),
		logger:     logger,
	}
}

func (r *PaymentRepository) FindCompletedBetween(ctx context.Context, from, to time.Time) ([]*payment.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, completedPaymentsFilter(from, to), opts)
	if err != nil {
		r.logger.Errorw("failed to query payments", "from", from, "to", to, "error", err)
		return nil, fmt.Errorf("failed to find completed payments: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []paymentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}

	payments := make([]*payment.Payment, 0, len(docs))
	for i := range docs {
		entity, err := docs[i].toEntity()
		if err != nil {
			r.logger.Warnw("skipping unreadable payment document", "payment_id", docs[i].PaymentID, "error", err)
			continue
		}
		payments = append(payments, entity)
	}
	return payments, nil
}
