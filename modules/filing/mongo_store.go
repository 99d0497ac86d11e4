package filing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/filingdesk/filingdesk/pkg/taxrate"
)

// filingDoc is the BSON shape of one filing.
type filingDoc struct {
	ID          string           `bson:"_id"`
	AccountID   string           `bson:"account_id"`
	Type        string           `bson:"type"`
	PeriodStart time.Time        `bson:"period_start"`
	PeriodEnd   time.Time        `bson:"period_end"`
	Base        int64            `bson:"base"`
	Amount      int64            `bson:"amount"`
	Breakdown   map[string]int64 `bson:"breakdown,omitempty"`
	Status      string           `bson:"status"`
	Reason      string           `bson:"reason,omitempty"`
	SubmittedAt *time.Time       `bson:"submitted_at,omitempty"`
	DecidedAt   *time.Time       `bson:"decided_at,omitempty"`
	CreatedAt   time.Time        `bson:"created_at"`
}

func toDoc(f *Filing) filingDoc {
	doc := filingDoc{
		ID:          f.ID.String(),
		AccountID:   f.AccountID.String(),
		Type:        string(f.Type),
		PeriodStart: f.PeriodStart,
		PeriodEnd:   f.PeriodEnd,
		Base:        f.Base,
		Amount:      f.Amount,
		Status:      string(f.Status),
		Reason:      f.Reason,
		SubmittedAt: f.SubmittedAt,
		DecidedAt:   f.DecidedAt,
		CreatedAt:   f.CreatedAt,
	}
	if f.Breakdown != nil {
		doc.Breakdown = make(map[string]int64, len(f.Breakdown))
		for category, amount := range f.Breakdown {
			doc.Breakdown[string(category)] = amount
		}
	}
	return doc
}

func fromDoc(doc filingDoc) (*Filing, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, err
	}
	accountID, err := uuid.Parse(doc.AccountID)
	if err != nil {
		return nil, err
	}
	f := &Filing{
		ID:          id,
		AccountID:   accountID,
		Type:        Type(doc.Type),
		PeriodStart: doc.PeriodStart,
		PeriodEnd:   doc.PeriodEnd,
		Base:        doc.Base,
		Amount:      doc.Amount,
		Status:      Status(doc.Status),
		Reason:      doc.Reason,
		SubmittedAt: doc.SubmittedAt,
		DecidedAt:   doc.DecidedAt,
		CreatedAt:   doc.CreatedAt,
	}
	if doc.Breakdown != nil {
		f.Breakdown = make(map[taxrate.Category]int64, len(doc.Breakdown))
		for category, amount := range doc.Breakdown {
			f.Breakdown[taxrate.Category(category)] = amount
		}
	}
	return f, nil
}

// MongoStore keeps filings in a MongoDB collection.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore binds the store to the filings collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("filings")}
}

func (s *MongoStore) Create(ctx context.Context, f *Filing) error {
	overlap := bson.D{
		{Key: "account_id", Value: f.AccountID.String()},
		{Key: "type", Value: string(f.Type)},
		{Key: "period_start", Value: bson.D{{Key: "$lt", Value: f.PeriodEnd}}},
		{Key: "period_end", Value: bson.D{{Key: "$gt", Value: f.PeriodStart}}},
	}
	count, err := s.col.CountDocuments(ctx, overlap)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrPeriodOverlap
	}

	_, err = s.col.InsertOne(ctx, toDoc(f))
	return err
}

func (s *MongoStore) GetByID(ctx context.Context, accountID, filingID uuid.UUID) (*Filing, error) {
	filter := bson.D{
		{Key: "_id", Value: filingID.String()},
		{Key: "account_id", Value: accountID.String()},
	}
	var doc filingDoc
	if err := s.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fromDoc(doc)
}

func (s *MongoStore) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Filing, error) {
	filter := bson.D{{Key: "account_id", Value: accountID.String()}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var filings []*Filing
	for cursor.Next(ctx) {
		var doc filingDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		f, err := fromDoc(doc)
		if err != nil {
			return nil, err
		}
		filings = append(filings, f)
	}
	return filings, cursor.Err()
}

func (s *MongoStore) SetStatus(ctx context.Context, accountID, filingID uuid.UUID, from, to Status, reason string, at time.Time) (*Filing, error) {
	set := bson.D{{Key: "status", Value: string(to)}}
	switch to {
	case StatusSubmitted:
		set = append(set, bson.E{Key: "submitted_at", Value: at})
	case StatusApproved, StatusRejected:
		set = append(set, bson.E{Key: "decided_at", Value: at})
	}
	if reason != "" {
		set = append(set, bson.E{Key: "reason", Value: reason})
	}

	filter := bson.D{
		{Key: "_id", Value: filingID.String()},
		{Key: "account_id", Value: accountID.String()},
		{Key: "status", Value: string(from)},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc filingDoc
	err := s.col.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fromDoc(doc)
}
