package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/echomag/echomag/internal/shared/constants"
)

func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		constants.CollectionAccounts: {
			{
				Keys:    bson.D{{Key: "uid", Value: 1}},
				Options: options.Index().SetName("uniq_accounts_uid").SetUnique(true).SetSparse(true),
			},
			{
				Keys:    bson.D{{Key: "plan", Value: 1}, {Key: "planExpiry", Value: 1}},
				Options: options.Index().SetName("idx_accounts_plan_expiry"),
			},
		},
		constants.CollectionPayments: {
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "completedAt", Value: 1}},
				Options: options.Index().SetName("idx_payments_status_completed"),
			},
		},
		constants.CollectionExpiryRuns: {
			{
				Keys:    bson.D{{Key: "runId", Value: 1}},
				Options: options.Index().SetName("uniq_expiry_runs_run_id").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "startedAt", Value: -1}},
				Options: options.Index().SetName("idx_expiry_runs_started_at"),
			},
		},
	}
}

// EnsureIndexes creates the indexes the expiry queries rely on. Existing
// indexes with the same definition are left untouched.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for collection, models := range indexModels() {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
