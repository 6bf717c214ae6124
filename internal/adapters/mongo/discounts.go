package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DiscountRepository struct {
	store *Store
}

func NewDiscountRepository(store *Store) *DiscountRepository {
	return &DiscountRepository{store: store}
}

func (r *DiscountRepository) Insert(ctx context.Context, d *domain.Discount) error {
	return r.store.Insert(ctx, CollDiscounts, d)
}

func (r *DiscountRepository) GetUnusedByReservation(ctx context.Context, reservationID uuid.UUID) (*domain.Discount, error) {
	var d domain.Discount
	err := r.store.Collection(CollDiscounts).FindOne(ctx,
		bson.M{"reservation_id": reservationID, "used": false}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get unused discount")
	}
	return &d, nil
}

// GetUnattachedByTenant finds a referral credit the tenant has not yet
// spent on any reservation.
func (r *DiscountRepository) GetUnattachedByTenant(ctx context.Context, tenantID uuid.UUID) (*domain.Discount, error) {
	var d domain.Discount
	err := r.store.Collection(CollDiscounts).FindOne(ctx,
		bson.M{"tenant_id": tenantID, "used": false, "reservation_id": bson.M{"$exists": false}}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get unattached discount")
	}
	return &d, nil
}

// AttachToReservation is conditional on the credit still being loose, so
// two concurrent checkouts cannot both spend it.
func (r *DiscountRepository) AttachToReservation(ctx context.Context, id, reservationID uuid.UUID) error {
	res, err := r.store.Collection(CollDiscounts).UpdateOne(ctx,
		bson.M{"_id": id, "used": false, "reservation_id": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"reservation_id": reservationID}})
	if err != nil {
		return errors.Wrap(err, "attach discount")
	}
	if res.MatchedCount == 0 {
		return domain.ErrConflict
	}
	return nil
}

// MarkUsed is conditional on the record still being unused, so two sweeps
// racing on the same discount credit it once.
func (r *DiscountRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	res, err := r.store.Collection(CollDiscounts).UpdateOne(ctx,
		bson.M{"_id": id, "used": false},
		bson.M{"$set": bson.M{"used": true, "used_at": usedAt}})
	if err != nil {
		return errors.Wrap(err, "mark discount used")
	}
	if res.MatchedCount == 0 {
		return domain.ErrConflict
	}
	return nil
}

type EarningsRepository struct {
	store *Store
}

func NewEarningsRepository(store *Store) *EarningsRepository {
	return &EarningsRepository{store: store}
}

// Increment bumps the advertiser's referral counters, creating the counter
// document on first use.
func (r *EarningsRepository) Increment(ctx context.Context, advertiserID uuid.UUID, amountCents int64) error {
	_, err := r.store.Collection(CollEarnings).UpdateOne(ctx,
		bson.M{"_id": advertiserID},
		bson.M{"$inc": bson.M{"total_cents": amountCents, "referral_count": 1}},
		options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrap(err, "increment advertiser earnings")
	}
	return nil
}
