package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redisclient "github.com/redis/go-redis/v9"
	redisadapter "github.com/stayloop/stayloop-server/internal/adapters/redis"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redisclient.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
}

func TestDraftStore_SaveGetDelete(t *testing.T) {
	_, client := newTestClient(t)
	store := redisadapter.NewDraftStore(client, time.Hour)
	ctx := context.Background()

	d := domain.NewDraft(uuid.New(), uuid.New(), time.Now().UTC())
	require.NoError(t, store.Save(ctx, d))

	got, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, domain.StepRentalApplication, got.Step)

	require.NoError(t, store.Delete(ctx, d.ID))
	_, err = store.Get(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDraftStore_RefusesOldSchema(t *testing.T) {
	mr, client := newTestClient(t)
	store := redisadapter.NewDraftStore(client, time.Hour)

	d := domain.NewDraft(uuid.New(), uuid.New(), time.Now().UTC())
	d.SchemaVersion = domain.DraftSchemaVersion - 1
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	mr.Set("checkout:draft:"+d.ID.String(), string(raw))

	_, err = store.Get(context.Background(), d.ID)
	assert.ErrorIs(t, err, redisadapter.ErrDraftSchemaMismatch)
}

func TestDraftStore_DraftExpires(t *testing.T) {
	mr, client := newTestClient(t)
	store := redisadapter.NewDraftStore(client, time.Minute)
	ctx := context.Background()

	d := domain.NewDraft(uuid.New(), uuid.New(), time.Now().UTC())
	require.NoError(t, store.Save(ctx, d))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDraftStore_PendingReservationRoundTrip(t *testing.T) {
	_, client := newTestClient(t)
	store := redisadapter.NewDraftStore(client, time.Hour)
	ctx := context.Background()

	draftID := uuid.New()
	listing := &domain.Listing{ID: uuid.New(), AdvertiserID: uuid.New(), RentCents: 100000}
	res := domain.NewReservation(listing, uuid.New(), domain.RentalApplication{FullName: "Ana"}, "standard", domain.PriceBreakdown{TotalCents: 125000}, "ord-1", time.Now().UTC())

	require.NoError(t, store.SavePendingReservation(ctx, draftID, res))
	got, err := store.GetPendingReservation(ctx, draftID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, "ord-1", got.OrderID)

	require.NoError(t, store.SetLastReservationID(ctx, res.TenantID, res.ID))
	lastID, err := store.GetLastReservationID(ctx, res.TenantID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, lastID)
}

func TestCache_OrderLock(t *testing.T) {
	_, client := newTestClient(t)
	cache := redisadapter.NewCache(client)
	ctx := context.Background()

	ok, err := cache.AcquireOrderLock(ctx, "ord-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.AcquireOrderLock(ctx, "ord-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.ReleaseOrderLock(ctx, "ord-1"))
	ok, err = cache.AcquireOrderLock(ctx, "ord-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotency_RoundTrip(t *testing.T) {
	_, client := newTestClient(t)
	idemp := redisadapter.NewIdempotency(client)
	ctx := context.Background()

	got, err := idemp.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	resp := redisadapter.IdempResponse{Status: 201, Result: []byte(`{"ok":true}`)}
	require.NoError(t, idemp.Set(ctx, "key-1", resp, time.Hour))

	got, err = idemp.Get(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.Status)
	assert.JSONEq(t, `{"ok":true}`, string(got.Result))
}
