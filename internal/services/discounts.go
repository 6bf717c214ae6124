package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/clock"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stayloop/stayloop-server/internal/outbox"
)

// DiscountService finalizes referral discounts after the settlement
// window. The check is a pure function of current state so it can be
// re-run any number of times: it only acts when the tenant is still moved
// in, the window has elapsed, and an unused discount exists.
type DiscountService struct {
	reservations ReservationStore
	discounts    DiscountStore
	earnings     EarningsCounter
	enqueuer     outbox.Enqueuer
	clock        clock.Clock
	logger       observability.Logger
}

func NewDiscountService(reservations ReservationStore, discounts DiscountStore, earnings EarningsCounter, enqueuer outbox.Enqueuer, clk clock.Clock, logger observability.Logger) *DiscountService {
	return &DiscountService{
		reservations: reservations,
		discounts:    discounts,
		earnings:     earnings,
		enqueuer:     enqueuer,
		clock:        clk,
		logger:       logger,
	}
}

// CheckAndFinalize reports whether it finalized anything. All the no-op
// paths return (false, nil): a missing or already-used discount, a
// reservation in any state but movedIn, or a window that has not elapsed
// yet. A concurrent finalizer losing the MarkUsed race is also a quiet
// no-op.
func (s *DiscountService) CheckAndFinalize(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if r.Status != domain.ReservationMovedIn || r.MovedInAt == nil {
		return false, nil
	}
	// Inclusive bound: the scheduled check fires exactly at the window's
	// end, and a decline here would be marked done and never retried.
	now := s.clock.Now()
	if now.Before(r.MovedInAt.Add(domain.SettlementWindow)) {
		return false, nil
	}

	d, err := s.discounts.GetUnusedByReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := s.discounts.MarkUsed(ctx, d.ID, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	if err := s.earnings.Increment(ctx, d.AdvertiserID, d.AmountCents); err != nil {
		return false, err
	}

	if err := s.enqueuer.Enqueue(ctx, outbox.Intent{
		UserID:        d.AdvertiserID,
		Role:          domain.RoleAdvertiser,
		Type:          domain.NotifDiscountFinalized,
		Title:         "Referral discount finalized",
		Message:       "A referral discount has settled and was credited to your earnings.",
		Link:          "/earnings",
		AggregateType: "discount",
		AggregateID:   d.ID,
	}); err != nil {
		s.logger.WithField("discount_id", d.ID.String()).WithError(err).Error("enqueue notification")
	}
	return true, nil
}
