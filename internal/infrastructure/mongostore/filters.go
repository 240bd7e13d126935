package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/domain/payment"
)

func paidPlansFilter() bson.D {
	return bson.D{{Key: "plan", Value: bson.D{{Key: "$in", Value: account.PaidPlanStrings()}}}}
}

func expiredPaidFilter(now time.Time) bson.D {
	return bson.D{
		{Key: "plan", Value: bson.D{{Key: "$in", Value: account.PaidPlanStrings()}}},
		{Key: "planExpiry", Value: bson.D{
			{Key: "$ne", Value: nil},
			{Key: "$lt", Value: now.UTC()},
		}},
	}
}

// downgradeFilter only matches while the account still holds previous with a
// lapsed expiry, so a renewal between scan and write wins.
func downgradeFilter(uid int64, previous account.Plan, now time.Time) bson.D {
	return bson.D{
		{Key: "uid", Value: uid},
		{Key: "plan", Value: string(previous)},
		{Key: "planExpiry", Value: bson.D{
			{Key: "$ne", Value: nil},
			{Key: "$lt", Value: now.UTC()},
		}},
	}
}

func downgradeUpdate() bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "plan", Value: string(account.PlanFree)},
		{Key: "planStart", Value: nil},
		{Key: "planExpiry", Value: nil},
	}}}
}

func completedPaymentsFilter(from, to time.Time) bson.D {
	window := bson.D{{Key: "$gte", Value: from.UTC()}, {Key: "$lt", Value: to.UTC()}}
	return bson.D{
		{Key: "status", Value: string(payment.StatusCompleted)},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "completedAt", Value: window}},
			bson.D{
				{Key: "completedAt", Value: nil},
				{Key: "createdAt", Value: window},
			},
		}},
	}
}
