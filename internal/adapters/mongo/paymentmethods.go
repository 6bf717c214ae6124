package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

type PaymentMethodRepository struct {
	store *Store
}

func NewPaymentMethodRepository(store *Store) *PaymentMethodRepository {
	return &PaymentMethodRepository{store: store}
}

func (r *PaymentMethodRepository) Insert(ctx context.Context, pm *domain.PaymentMethod) error {
	return r.store.Insert(ctx, CollPaymentMethods, pm)
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	var pm domain.PaymentMethod
	if err := r.store.GetByID(ctx, CollPaymentMethods, id, &pm); err != nil {
		return nil, err
	}
	return &pm, nil
}

func (r *PaymentMethodRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PaymentMethod, error) {
	var out []domain.PaymentMethod
	err := r.store.Find(ctx, CollPaymentMethods, bson.M{"user_id": userID}, &out,
		&FindOptions{SortField: "created_at", SortDesc: true})
	return out, err
}

// ClearDefaults drops the default flag on every method the user owns; the
// caller then flags exactly one. Keeps the at-most-one-default invariant.
func (r *PaymentMethodRepository) ClearDefaults(ctx context.Context, userID uuid.UUID) error {
	_, err := r.store.Collection(CollPaymentMethods).UpdateMany(ctx,
		bson.M{"user_id": userID, "is_default": true},
		bson.M{"$set": bson.M{"is_default": false}})
	if err != nil {
		return errors.Wrap(err, "clear default payment methods")
	}
	return nil
}

func (r *PaymentMethodRepository) SetDefaultFlag(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.store.Collection(CollPaymentMethods).UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_default": true}})
	if err != nil {
		return errors.Wrap(err, "set default payment method")
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
