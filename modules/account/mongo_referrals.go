package account

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// referralDoc is the BSON shape of one conversion event.
type referralDoc struct {
	ID         string    `bson:"_id"`
	Code       string    `bson:"code"`
	ReferredID string    `bson:"referred_id"`
	Commission int64     `bson:"commission"`
	CreatedAt  time.Time `bson:"created_at"`
}

// MongoReferralStore keeps conversion events in a MongoDB collection.
type MongoReferralStore struct {
	col *mongo.Collection
}

// NewMongoReferralStore binds the store to the referrals collection.
func NewMongoReferralStore(db *mongo.Database) *MongoReferralStore {
	return &MongoReferralStore{col: db.Collection("referrals")}
}

func (s *MongoReferralStore) Record(ctx context.Context, ref Referral) error {
	_, err := s.col.InsertOne(ctx, referralDoc{
		ID:         ref.ID.String(),
		Code:       ref.Code,
		ReferredID: ref.ReferredID.String(),
		Commission: ref.Commission,
		CreatedAt:  ref.CreatedAt,
	})
	return err
}

func (s *MongoReferralStore) Summary(ctx context.Context, code string) (int, int64, error) {
	cursor, err := s.col.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "code", Value: code}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$code"},
			{Key: "conversions", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "accrued", Value: bson.D{{Key: "$sum", Value: "$commission"}}},
		}}},
	})
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		Conversions int   `bson:"conversions"`
		Accrued     int64 `bson:"accrued"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, 0, err
		}
	}
	return result.Conversions, result.Accrued, cursor.Err()
}
