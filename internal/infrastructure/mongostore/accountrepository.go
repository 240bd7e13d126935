package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/shared/constants"
	"github.com/echomag/echomag/internal/shared/logger"
)

type AccountRepository struct {
	collection *mongo.Collection
	logger     logger.Interface
}

func NewAccountRepository(db *mongo.Database, logger logger.Interface) account.Repository {
	return &AccountRepository{
		collection: db.Collection(constants.CollectionAccounts),
		logger:     logger,
	}
}

func (r *AccountRepository) FindExpiredPaid(ctx context.Context, now time.Time) ([]*account.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "planExpiry", Value: 1}, {Key: "uid", Value: 1}})
	return r.find(ctx, expiredPaidFilter(now), opts)
}

func (r *AccountRepository) FindPaid(ctx context.Context) ([]*account.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uid", Value: 1}})
	return r.find(ctx, paidPlansFilter(), opts)
}

func (r *AccountRepository) GetByUID(ctx context.Context, uid int64) (*account.Account, error) {
	var doc accountDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "uid", Value: uid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Errorw("failed to get account by uid", "uid", uid, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	entity, err := doc.toEntity()
	if err != nil {
		return nil, fmt.Errorf("failed to map account %d: %w", uid, err)
	}
	return entity, nil
}

func (r *AccountRepository) DowngradeToFree(ctx context.Context, uid int64, previous account.Plan, now time.Time) (bool, error) {
	result, err := r.collection.UpdateOne(ctx, downgradeFilter(uid, previous, now), downgradeUpdate())
	if err != nil {
		return false, fmt.Errorf("failed to downgrade account %d: %w", uid, err)
	}
	return result.MatchedCount > 0, nil
}

func (r *AccountRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]*account.Account, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Errorw("failed to query accounts", "error", err)
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Errorw("failed to decode accounts", "error", err)
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	accounts := make([]*account.Account, 0, len(docs))
	for i := range docs {
		entity, err := docs[i].toEntity()
		if err != nil {
			r.logger.Warnw("skipping unreadable account document", "uid", docs[i].UID, "error", err)
			continue
		}
		accounts = append(accounts, entity)
	}
	return accounts, nil
}
