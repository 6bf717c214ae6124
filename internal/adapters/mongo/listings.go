package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
)

// ListingRepository serves the owner/broker-fee lookup the checkout needs.
// Listing CRUD proper lives in another service.
type ListingRepository struct {
	store *Store
}

func NewListingRepository(store *Store) *ListingRepository {
	return &ListingRepository{store: store}
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var l domain.Listing
	if err := r.store.GetByID(ctx, CollListings, id, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) Insert(ctx context.Context, l *domain.Listing) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
		l.UpdatedAt = l.CreatedAt
	}
	return r.store.Insert(ctx, CollListings, l)
}
