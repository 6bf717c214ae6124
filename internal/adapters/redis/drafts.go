package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stayloop/stayloop-server/internal/domain"
)

var ErrDraftSchemaMismatch = errors.New("draft schema version mismatch")

// DraftStore checkpoints in-progress checkout drafts. Single writer per
// draft (the owning session); every step rewrites the whole draft and
// refreshes the TTL, so an abandoned checkout ages out on its own.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

func draftKey(id uuid.UUID) string {
	return "checkout:draft:" + id.String()
}

func pendingKey(id uuid.UUID) string {
	return "checkout:pending:" + id.String()
}

func lastReservationKey(tenantID uuid.UUID) string {
	return "checkout:last:" + tenantID.String()
}

func (s *DraftStore) Save(ctx context.Context, d *domain.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "marshal draft")
	}
	return s.client.Set(ctx, draftKey(d.ID), data, s.ttl).Err()
}

func (s *DraftStore) Get(ctx context.Context, id uuid.UUID) (*domain.Draft, error) {
	data, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get draft")
	}
	var d domain.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "unmarshal draft")
	}
	if d.SchemaVersion != domain.DraftSchemaVersion {
		return nil, ErrDraftSchemaMismatch
	}
	return &d, nil
}

// Delete removes the draft and its pending-reservation snapshot together.
func (s *DraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, draftKey(id), pendingKey(id)).Err()
}

// SavePendingReservation snapshots the confirmed draft between reservation
// creation and payment redirect, so the callback page can recover it.
func (s *DraftStore) SavePendingReservation(ctx context.Context, draftID uuid.UUID, res *domain.Reservation) error {
	data, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, "marshal pending reservation")
	}
	return s.client.Set(ctx, pendingKey(draftID), data, s.ttl).Err()
}

func (s *DraftStore) GetPendingReservation(ctx context.Context, draftID uuid.UUID) (*domain.Reservation, error) {
	data, err := s.client.Get(ctx, pendingKey(draftID)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get pending reservation")
	}
	var res domain.Reservation
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(err, "unmarshal pending reservation")
	}
	return &res, nil
}

func (s *DraftStore) SetLastReservationID(ctx context.Context, tenantID, reservationID uuid.UUID) error {
	return s.client.Set(ctx, lastReservationKey(tenantID), reservationID.String(), s.ttl).Err()
}

func (s *DraftStore) GetLastReservationID(ctx context.Context, tenantID uuid.UUID) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, lastReservationKey(tenantID)).Result()
	if err == redis.Nil {
		return uuid.Nil, domain.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "get last reservation id")
	}
	return uuid.Parse(val)
}
