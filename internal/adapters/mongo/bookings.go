package mongo

import (
	"context"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

type BookingRepository struct {
	store *Store
}

func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

func (r *BookingRepository) Insert(ctx context.Context, b *domain.PhotoshootBooking) error {
	return r.store.Insert(ctx, CollBookings, b)
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PhotoshootBooking, error) {
	var b domain.PhotoshootBooking
	if err := r.store.GetByID(ctx, CollBookings, id, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.PhotoshootBooking) error {
	fields := bson.M{
		"status":              b.Status,
		"scheduled_at":        b.ScheduledAt,
		"team_members":        b.TeamMembers,
		"images":              b.Images,
		"cancellation_reason": b.CancellationReason,
		"updated_at":          b.UpdatedAt,
	}
	if b.TeamID != nil {
		fields["team_id"] = *b.TeamID
	}
	if b.PropertyID != nil {
		fields["property_id"] = *b.PropertyID
	}
	if b.CompletedAt != nil {
		fields["completed_at"] = *b.CompletedAt
	}
	return r.store.Update(ctx, CollBookings, b.ID, fields)
}

func (r *BookingRepository) ListByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]domain.PhotoshootBooking, error) {
	var out []domain.PhotoshootBooking
	err := r.store.Find(ctx, CollBookings, bson.M{"advertiser_id": advertiserID}, &out,
		&FindOptions{SortField: "created_at", SortDesc: true})
	return out, err
}

func (r *BookingRepository) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.PhotoshootBooking, error) {
	var out []domain.PhotoshootBooking
	err := r.store.Find(ctx, CollBookings, bson.M{"status": status}, &out,
		&FindOptions{SortField: "scheduled_at"})
	return out, err
}
