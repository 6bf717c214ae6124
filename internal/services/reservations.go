package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/adapters/pg"
	"github.com/stayloop/stayloop-server/internal/clock"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stayloop/stayloop-server/internal/outbox"
	"github.com/stayloop/stayloop-server/internal/payments"
)

// ReservationService applies status transitions and owes one notification
// per transition. The edge set lives on the domain type; this layer adds
// ownership checks, the deferred discount check on move-in, and intents.
type ReservationService struct {
	reservations ReservationStore
	checks       CheckScheduler
	enqueuer     outbox.Enqueuer
	audit        AuditSink
	refunds      RefundExecutor
	clock        clock.Clock
	logger       observability.Logger
	adminID      uuid.UUID
	pendingTTL   time.Duration
}

func NewReservationService(reservations ReservationStore, checks CheckScheduler, enqueuer outbox.Enqueuer, audit AuditSink, refunds RefundExecutor, clk clock.Clock, logger observability.Logger, adminID uuid.UUID, pendingTTL time.Duration) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		checks:       checks,
		enqueuer:     enqueuer,
		audit:        audit,
		refunds:      refunds,
		clock:        clk,
		logger:       logger,
		adminID:      adminID,
		pendingTTL:   pendingTTL,
	}
}

// Create persists a new pending reservation and tells the advertiser.
// Callers (the checkout flow) construct the reservation; this is the single
// write path so the created intent cannot be skipped.
func (s *ReservationService) Create(ctx context.Context, r *domain.Reservation) error {
	if err := s.reservations.Insert(ctx, r); err != nil {
		return err
	}
	observability.ReservationTransitions.WithLabelValues(string(domain.ReservationPending)).Inc()

	// A pending reservation the advertiser never answers expires on its
	// own; the check survives restarts where an in-process timer would not.
	if err := s.checks.ScheduleCheck(ctx, pg.CheckKindReservationExpiry, r.ID, r.CreatedAt.Add(s.pendingTTL)); err != nil {
		s.logger.WithField("reservation_id", r.ID.String()).WithError(err).Error("schedule expiry check")
	}

	s.notify(ctx, outbox.Intent{
		UserID:        r.AdvertiserID,
		Role:          domain.RoleAdvertiser,
		Type:          domain.NotifReservationCreated,
		Title:         "New reservation request",
		Message:       "A tenant has applied to rent your listing. Review the application to accept or reject it.",
		Link:          "/reservations/" + r.ID.String(),
		AggregateType: "reservation",
		AggregateID:   r.ID,
	})
	return nil
}

func (s *ReservationService) Get(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *ReservationService) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Reservation, error) {
	return s.reservations.ListByTenant(ctx, tenantID)
}

func (s *ReservationService) ListForAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]domain.Reservation, error) {
	return s.reservations.ListByAdvertiser(ctx, advertiserID)
}

// UpdateStatus moves a reservation along one edge on behalf of an actor.
// Advertisers may accept or reject their own pending reservations; tenants
// may cancel theirs, request a cancellation review, or declare move-in.
// Refund outcomes come from admin tooling. Any other (actor, edge) pair is
// ErrUnauthorized before the edge itself is even checked.
func (s *ReservationService) UpdateStatus(ctx context.Context, actorID uuid.UUID, role domain.Role, reservationID uuid.UUID, next domain.ReservationStatus, reason string) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(r, actorID, role, next); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := r.Transition(next, now); err != nil {
		return nil, err
	}
	if next == domain.ReservationRejected {
		r.RejectReason = reason
	}
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}
	observability.ReservationTransitions.WithLabelValues(string(next)).Inc()

	s.afterTransition(ctx, actorID, r, next)
	return r, nil
}

// MarkPaid is the payment callback path: it resolves the reservation by
// gateway order id, so a replayed callback against an already paid
// reservation surfaces as ErrInvalidTransition and can be ignored upstream.
func (s *ReservationService) MarkPaid(ctx context.Context, orderID, transactionID string) (*domain.Reservation, error) {
	r, err := s.reservations.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := r.Transition(domain.ReservationPaid, s.clock.Now()); err != nil {
		return nil, err
	}
	r.TransactionID = transactionID
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}
	observability.ReservationTransitions.WithLabelValues(string(domain.ReservationPaid)).Inc()
	return r, nil
}

// ResolveRefund executes a gateway refund for a moved-in reservation and
// records the outcome as refundComplete or refundFailed. Admin only; the
// transaction id captured at payment time addresses the gateway charge.
func (s *ReservationService) ResolveRefund(ctx context.Context, actorID uuid.UUID, role domain.Role, reservationID uuid.UUID, reason string) (*domain.Reservation, error) {
	if role != domain.RoleAdmin {
		return nil, domain.ErrUnauthorized
	}
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !r.Status.CanTransitionTo(domain.ReservationRefundComplete) {
		return nil, domain.ErrInvalidTransition
	}
	if r.TransactionID == "" {
		return nil, domain.ErrInvalidInput
	}

	next := domain.ReservationRefundComplete
	result, err := s.refunds.Refund(ctx, payments.RefundRequest{
		TransactionID: r.TransactionID,
		AmountCents:   r.Price.TotalCents,
		Reason:        reason,
	})
	if err != nil || result.Status == "FAILED" {
		if err != nil {
			s.logger.WithField("reservation_id", r.ID.String()).WithError(err).Error("gateway refund")
		}
		next = domain.ReservationRefundFailed
	}

	now := s.clock.Now()
	if err := r.Transition(next, now); err != nil {
		return nil, err
	}
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}
	observability.ReservationTransitions.WithLabelValues(string(next)).Inc()

	s.afterTransition(ctx, actorID, r, next)
	return r, nil
}

// Expire times out a still-pending reservation. It reports false when the
// reservation already moved on, which a re-run treats as settled.
func (s *ReservationService) Expire(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return false, err
	}
	if r.Status != domain.ReservationPending {
		return false, nil
	}
	if err := r.Transition(domain.ReservationExpired, s.clock.Now()); err != nil {
		return false, err
	}
	if err := s.reservations.Update(ctx, r); err != nil {
		return false, err
	}
	observability.ReservationTransitions.WithLabelValues(string(domain.ReservationExpired)).Inc()
	return true, nil
}

func (s *ReservationService) authorize(r *domain.Reservation, actorID uuid.UUID, role domain.Role, next domain.ReservationStatus) error {
	if role == domain.RoleAdmin {
		return nil
	}
	switch next {
	case domain.ReservationAccepted, domain.ReservationRejected:
		if role != domain.RoleAdvertiser || r.AdvertiserID != actorID {
			return domain.ErrUnauthorized
		}
	case domain.ReservationCancelled, domain.ReservationUnderReview, domain.ReservationMovedIn:
		if role != domain.RoleUser || r.TenantID != actorID {
			return domain.ErrUnauthorized
		}
	default:
		return domain.ErrUnauthorized
	}
	return nil
}

// afterTransition fires the single notification each edge owes, plus the
// deferred discount check when the tenant moves in.
func (s *ReservationService) afterTransition(ctx context.Context, actorID uuid.UUID, r *domain.Reservation, next domain.ReservationStatus) {
	switch next {
	case domain.ReservationAccepted:
		s.notify(ctx, outbox.Intent{
			UserID:        r.TenantID,
			Role:          domain.RoleUser,
			Type:          domain.NotifReservationAccepted,
			Title:         "Reservation accepted",
			Message:       "Your rental application was accepted. Complete the payment to secure the property.",
			Link:          "/reservations/" + r.ID.String(),
			AggregateType: "reservation",
			AggregateID:   r.ID,
		})
	case domain.ReservationRejected:
		msg := "Your rental application was rejected."
		if r.RejectReason != "" {
			msg = fmt.Sprintf("Your rental application was rejected: %s.", r.RejectReason)
		}
		s.notify(ctx, outbox.Intent{
			UserID:        r.TenantID,
			Role:          domain.RoleUser,
			Type:          domain.NotifReservationRejected,
			Title:         "Reservation rejected",
			Message:       msg,
			Link:          "/reservations/" + r.ID.String(),
			AggregateType: "reservation",
			AggregateID:   r.ID,
		})
	case domain.ReservationMovedIn:
		s.notify(ctx, outbox.Intent{
			UserID:        r.AdvertiserID,
			Role:          domain.RoleAdvertiser,
			Type:          domain.NotifTenantMovedIn,
			Title:         "Tenant moved in",
			Message:       "The tenant has confirmed moving in to your listing.",
			Link:          "/reservations/" + r.ID.String(),
			AggregateType: "reservation",
			AggregateID:   r.ID,
		})
		dueAt := r.MovedInAt.Add(domain.SettlementWindow)
		if err := s.checks.ScheduleCheck(ctx, pg.CheckKindDiscountFinalize, r.ID, dueAt); err != nil {
			s.logger.WithField("reservation_id", r.ID.String()).WithError(err).Error("schedule discount check")
		}
	case domain.ReservationUnderReview:
		s.notify(ctx, outbox.Intent{
			UserID:        s.adminID,
			Role:          domain.RoleAdmin,
			Type:          domain.NotifCancellationForReview,
			Title:         "Cancellation under review",
			Message:       "A paid reservation has a cancellation request awaiting review.",
			Link:          "/admin/reservations/" + r.ID.String(),
			AggregateType: "reservation",
			AggregateID:   r.ID,
		})
	case domain.ReservationRefundComplete:
		s.audit.LogRefund(ctx, actorID, r.ID, r.Price.TotalCents)
		s.notify(ctx, outbox.Intent{
			UserID:        r.TenantID,
			Role:          domain.RoleUser,
			Type:          domain.NotifRefundComplete,
			Title:         "Refund completed",
			Message:       "Your refund has been processed and should reach your account shortly.",
			Link:          "/reservations/" + r.ID.String(),
			AggregateType: "reservation",
			AggregateID:   r.ID,
		})
	case domain.ReservationRefundFailed:
		s.notify(ctx, outbox.Intent{
			UserID:        r.TenantID,
			Role:          domain.RoleUser,
			Type:          domain.NotifRefundFailed,
			Title:         "Refund failed",
			Message:       "We could not process your refund automatically. Support has been notified.",
			Link:          "/reservations/" + r.ID.String(),
			AggregateType: "reservation",
			AggregateID:   r.ID,
		})
	}
}

func (s *ReservationService) notify(ctx context.Context, intent outbox.Intent) {
	if err := s.enqueuer.Enqueue(ctx, intent); err != nil {
		s.logger.WithField("type", string(intent.Type)).WithError(err).Error("enqueue notification")
	}
}
