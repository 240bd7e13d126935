package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/shared/constants"
	"github.com/echomag/echomag/internal/shared/logger"
)

var newestFirst = bson.D{{Key: "startedAt", Value: -1}, {Key: "_id", Value: -1}}

type ExpiryRunRepository struct {
	collection *mongo.Collection
	logger     logger.Interface
}

func NewExpiryRunRepository(db *mongo.Database, logger logger.Interface) expiry.RunRepository {
	return &ExpiryRunRepository{
		collection: db.Collection(constants.CollectionExpiryRuns),
		logger:     logger,
	}
}

func (r *ExpiryRunRepository) Create(ctx context.Context, run *expiry.Run) error {
	if _, err := r.collection.InsertOne(ctx, newRunDocument(run)); err != nil {
		r.logger.Errorw("failed to insert expiry run", "run_id", run.ID(), "error", err)
		return fmt.Errorf("failed to create expiry run: %w", err)
	}
	return nil
}

func (r *ExpiryRunRepository) ListRecent(ctx context.Context, limit int) ([]*expiry.Run, error) {
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		r.logger.Errorw("failed to list expiry runs", "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to list expiry runs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []runDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode expiry runs: %w", err)
	}

	runs := make([]*expiry.Run, 0, len(docs))
	for i := range docs {
		run, err := docs[i].toEntity()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (r *ExpiryRunRepository) GetLatest(ctx context.Context) (*expiry.Run, error) {
	var doc runDocument
	err := r.collection.FindOne(ctx, bson.D{}, options.FindOne().SetSort(newestFirst)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Errorw("failed to get latest expiry run", "error", err)
		return nil, fmt.Errorf("failed to get latest expiry run: %w", err)
	}
	return doc.toEntity()
}
