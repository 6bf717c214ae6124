package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationRepository struct {
	store *Store
}

func NewReservationRepository(store *Store) *ReservationRepository {
	return &ReservationRepository{store: store}
}

func (r *ReservationRepository) Insert(ctx context.Context, res *domain.Reservation) error {
	return r.store.Insert(ctx, CollReservations, res)
}

func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.store.GetByID(ctx, CollReservations, id, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.store.Collection(CollReservations).FindOne(ctx, bson.M{"order_id": orderID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get reservation by order id")
	}
	return &res, nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	fields := bson.M{
		"status":        res.Status,
		"reject_reason": res.RejectReason,
		"updated_at":    res.UpdatedAt,
	}
	if res.TransactionID != "" {
		fields["transaction_id"] = res.TransactionID
	}
	if res.MovedInAt != nil {
		fields["moved_in_at"] = *res.MovedInAt
	}
	if res.PaymentMethodID != nil {
		fields["payment_method_id"] = *res.PaymentMethodID
	}
	return r.store.Update(ctx, CollReservations, res.ID, fields)
}

func (r *ReservationRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.store.Find(ctx, CollReservations, bson.M{"tenant_id": tenantID}, &out,
		&FindOptions{SortField: "created_at", SortDesc: true})
	return out, err
}

func (r *ReservationRepository) ListByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.store.Find(ctx, CollReservations, bson.M{"advertiser_id": advertiserID}, &out,
		&FindOptions{SortField: "created_at", SortDesc: true})
	return out, err
}

// ListStalePending returns pending reservations created before the cutoff;
// the sweeper expires them.
func (r *ReservationRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	filter := bson.M{
		"status":     domain.ReservationPending,
		"created_at": bson.M{"$lt": cutoff},
	}
	err := r.store.Find(ctx, CollReservations, filter, &out,
		&FindOptions{SortField: "created_at", Limit: limit})
	return out, err
}
