package services_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/outbox"
	"github.com/stayloop/stayloop-server/internal/payments"
)

// The fakes return copies from reads and persist on writes, so a test
// catches a service that mutates an entity and forgets to call Update.

type fakeBookingStore struct {
	byID map[uuid.UUID]domain.PhotoshootBooking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{byID: make(map[uuid.UUID]domain.PhotoshootBooking)}
}

func (f *fakeBookingStore) Insert(ctx context.Context, b *domain.PhotoshootBooking) error {
	f.byID[b.ID] = *b
	return nil
}

func (f *fakeBookingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PhotoshootBooking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := b
	return &copy, nil
}

func (f *fakeBookingStore) Update(ctx context.Context, b *domain.PhotoshootBooking) error {
	if _, ok := f.byID[b.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[b.ID] = *b
	return nil
}

func (f *fakeBookingStore) ListByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]domain.PhotoshootBooking, error) {
	var out []domain.PhotoshootBooking
	for _, b := range f.byID {
		if b.AdvertiserID == advertiserID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.PhotoshootBooking, error) {
	var out []domain.PhotoshootBooking
	for _, b := range f.byID {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeReservationStore struct {
	byID map[uuid.UUID]domain.Reservation
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{byID: make(map[uuid.UUID]domain.Reservation)}
}

func (f *fakeReservationStore) Insert(ctx context.Context, r *domain.Reservation) error {
	f.byID[r.ID] = *r
	return nil
}

func (f *fakeReservationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := r
	return &copy, nil
}

func (f *fakeReservationStore) GetByOrderID(ctx context.Context, orderID string) (*domain.Reservation, error) {
	for _, r := range f.byID {
		if r.OrderID == orderID {
			copy := r
			return &copy, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReservationStore) Update(ctx context.Context, r *domain.Reservation) error {
	if _, ok := f.byID[r.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[r.ID] = *r
	return nil
}

func (f *fakeReservationStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range f.byID {
		if r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) ListByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range f.byID {
		if r.AdvertiserID == advertiserID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeTeamDirectory struct {
	byID map[uuid.UUID]domain.Team
}

func newFakeTeamDirectory() *fakeTeamDirectory {
	return &fakeTeamDirectory{byID: make(map[uuid.UUID]domain.Team)}
}

func (f *fakeTeamDirectory) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := t
	return &copy, nil
}

type fakeEnqueuer struct {
	intents []outbox.Intent
	err     error
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, intent outbox.Intent) error {
	if f.err != nil {
		return f.err
	}
	f.intents = append(f.intents, intent)
	return nil
}

func (f *fakeEnqueuer) byType(t domain.NotificationType) []outbox.Intent {
	var out []outbox.Intent
	for _, i := range f.intents {
		if i.Type == t {
			out = append(out, i)
		}
	}
	return out
}

type scheduledCheck struct {
	kind        string
	aggregateID uuid.UUID
	dueAt       time.Time
}

type fakeScheduler struct {
	checks []scheduledCheck
}

func (f *fakeScheduler) ScheduleCheck(ctx context.Context, kind string, aggregateID uuid.UUID, dueAt time.Time) error {
	f.checks = append(f.checks, scheduledCheck{kind: kind, aggregateID: aggregateID, dueAt: dueAt})
	return nil
}

type fakeRefunder struct {
	requests []payments.RefundRequest
	status   string
	err      error
}

func (f *fakeRefunder) Refund(ctx context.Context, req payments.RefundRequest) (*payments.RefundResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	status := f.status
	if status == "" {
		status = "SUCCEEDED"
	}
	return &payments.RefundResult{RefundID: "re_" + req.TransactionID, Status: status}, nil
}

type fakeAudit struct {
	events []string
}

func (f *fakeAudit) LogTeamAssigned(ctx context.Context, actorID, bookingID, teamID uuid.UUID) {
	f.events = append(f.events, "team_assigned")
}

func (f *fakeAudit) LogBookingCancelled(ctx context.Context, actorID, bookingID uuid.UUID, reason string) {
	f.events = append(f.events, "booking_cancelled")
}

func (f *fakeAudit) LogRefund(ctx context.Context, actorID, reservationID uuid.UUID, amountCents int64) {
	f.events = append(f.events, "refund")
}

type fakeDiscountStore struct {
	byID map[uuid.UUID]domain.Discount
}

func newFakeDiscountStore() *fakeDiscountStore {
	return &fakeDiscountStore{byID: make(map[uuid.UUID]domain.Discount)}
}

func (f *fakeDiscountStore) GetUnusedByReservation(ctx context.Context, reservationID uuid.UUID) (*domain.Discount, error) {
	for _, d := range f.byID {
		if d.ReservationID != nil && *d.ReservationID == reservationID && !d.Used {
			copy := d
			return &copy, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDiscountStore) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	d, ok := f.byID[id]
	if !ok || d.Used {
		return domain.ErrConflict
	}
	d.Used = true
	d.UsedAt = &usedAt
	f.byID[id] = d
	return nil
}

type fakeEarnings struct {
	totals map[uuid.UUID]int64
}

func newFakeEarnings() *fakeEarnings {
	return &fakeEarnings{totals: make(map[uuid.UUID]int64)}
}

func (f *fakeEarnings) Increment(ctx context.Context, advertiserID uuid.UUID, amountCents int64) error {
	f.totals[advertiserID] += amountCents
	return nil
}

type fakeMethodStore struct {
	byID map[uuid.UUID]domain.PaymentMethod
}

func newFakeMethodStore() *fakeMethodStore {
	return &fakeMethodStore{byID: make(map[uuid.UUID]domain.PaymentMethod)}
}

func (f *fakeMethodStore) Insert(ctx context.Context, pm *domain.PaymentMethod) error {
	f.byID[pm.ID] = *pm
	return nil
}

func (f *fakeMethodStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	pm, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := pm
	return &copy, nil
}

func (f *fakeMethodStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PaymentMethod, error) {
	var out []domain.PaymentMethod
	for _, pm := range f.byID {
		if pm.UserID == userID {
			out = append(out, pm)
		}
	}
	return out, nil
}

func (f *fakeMethodStore) ClearDefaults(ctx context.Context, userID uuid.UUID) error {
	for id, pm := range f.byID {
		if pm.UserID == userID && pm.IsDefault {
			pm.IsDefault = false
			f.byID[id] = pm
		}
	}
	return nil
}

func (f *fakeMethodStore) SetDefaultFlag(ctx context.Context, id, userID uuid.UUID) error {
	pm, ok := f.byID[id]
	if !ok || pm.UserID != userID {
		return domain.ErrNotFound
	}
	pm.IsDefault = true
	f.byID[id] = pm
	return nil
}
