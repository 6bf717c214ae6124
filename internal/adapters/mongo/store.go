package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names. Everything the services persist lives in one of these.
const (
	CollListings       = "listings"
	CollReservations   = "reservations"
	CollBookings       = "photoshoot_bookings"
	CollNotifications  = "notifications"
	CollPaymentMethods = "payment_methods"
	CollDiscounts      = "discounts"
	CollEarnings       = "advertiser_earnings"
	CollAuditLogs      = "audit_logs"
)

// Store is the generic document gateway: get/insert/update by
// collection+id. Concurrent updates to the same document are
// last-write-wins; there are no multi-document transactions.
type Store struct {
	db     *mongo.Database
	logger observability.Logger
}

func NewStore(db *mongo.Database, logger observability.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) GetByID(ctx context.Context, collection string, id uuid.UUID, out interface{}) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err == mongo.ErrNoDocuments {
		return domain.ErrNotFound
	}
	if err != nil {
		s.logger.WithField("collection", collection).WithError(err).Error("failed to get document")
		return errors.Wrap(err, "get document")
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, collection string, doc interface{}) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		s.logger.WithField("collection", collection).WithError(err).Error("failed to insert document")
		return errors.Wrap(err, "insert document")
	}
	return nil
}

// Update applies a partial $set; the updated_at stamp rides along unless the
// caller already set one.
func (s *Store) Update(ctx context.Context, collection string, id uuid.UUID, fields bson.M) error {
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now()
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		s.logger.WithField("collection", collection).WithError(err).Error("failed to update document")
		return errors.Wrap(err, "update document")
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) Find(ctx context.Context, collection string, filter bson.M, out interface{}, opts *FindOptions) error {
	findOpts := buildFindOptions(opts)
	cur, err := s.db.Collection(collection).Find(ctx, filter, findOpts)
	if err != nil {
		s.logger.WithField("collection", collection).WithError(err).Error("failed to query documents")
		return errors.Wrap(err, "find documents")
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, out); err != nil {
		return errors.Wrap(err, "decode documents")
	}
	return nil
}

func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}
