package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/payments"
)

// Narrow store interfaces so each service declares exactly what it touches;
// unit tests stand in fakes for these.

type BookingStore interface {
	Insert(ctx context.Context, b *domain.PhotoshootBooking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PhotoshootBooking, error)
	Update(ctx context.Context, b *domain.PhotoshootBooking) error
	ListByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]domain.PhotoshootBooking, error)
	ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.PhotoshootBooking, error)
}

type ReservationStore interface {
	Insert(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Reservation, error)
	Update(ctx context.Context, r *domain.Reservation) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Reservation, error)
	ListByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]domain.Reservation, error)
}

type ListingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
}

type TeamDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error)
}

type PaymentMethodStore interface {
	Insert(ctx context.Context, pm *domain.PaymentMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PaymentMethod, error)
	ClearDefaults(ctx context.Context, userID uuid.UUID) error
	SetDefaultFlag(ctx context.Context, id, userID uuid.UUID) error
}

type DiscountStore interface {
	GetUnusedByReservation(ctx context.Context, reservationID uuid.UUID) (*domain.Discount, error)
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
}

type EarningsCounter interface {
	Increment(ctx context.Context, advertiserID uuid.UUID, amountCents int64) error
}

type CheckScheduler interface {
	ScheduleCheck(ctx context.Context, kind string, aggregateID uuid.UUID, dueAt time.Time) error
}

// RefundExecutor is the slice of the payment gateway the refund flow needs.
type RefundExecutor interface {
	Refund(ctx context.Context, req payments.RefundRequest) (*payments.RefundResult, error)
}

type AuditSink interface {
	LogTeamAssigned(ctx context.Context, actorID, bookingID, teamID uuid.UUID)
	LogBookingCancelled(ctx context.Context, actorID, bookingID uuid.UUID, reason string)
	LogRefund(ctx context.Context, actorID, reservationID uuid.UUID, amountCents int64)
}
