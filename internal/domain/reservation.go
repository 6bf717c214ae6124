package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending        ReservationStatus = "pending"
	ReservationAccepted       ReservationStatus = "accepted"
	ReservationRejected       ReservationStatus = "rejected"
	ReservationPaid           ReservationStatus = "paid"
	ReservationMovedIn        ReservationStatus = "movedIn"
	ReservationCancelled      ReservationStatus = "cancelled"
	ReservationUnderReview    ReservationStatus = "cancellationUnderReview"
	ReservationRefundComplete ReservationStatus = "refundComplete"
	ReservationRefundFailed   ReservationStatus = "refundFailed"
	ReservationExpired        ReservationStatus = "expired"
)

func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationPending, ReservationAccepted, ReservationRejected,
		ReservationPaid, ReservationMovedIn, ReservationCancelled,
		ReservationUnderReview, ReservationRefundComplete,
		ReservationRefundFailed, ReservationExpired:
		return true
	default:
		return false
	}
}

func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationRejected, ReservationCancelled, ReservationExpired,
		ReservationRefundComplete, ReservationRefundFailed:
		return true
	default:
		return false
	}
}

// reservationEdges is the full set of reachable transitions. Anything not
// listed here is rejected regardless of who asks.
var reservationEdges = map[ReservationStatus][]ReservationStatus{
	ReservationPending:  {ReservationAccepted, ReservationRejected, ReservationCancelled, ReservationExpired},
	ReservationAccepted: {ReservationPaid, ReservationUnderReview},
	ReservationPaid:     {ReservationMovedIn},
	ReservationMovedIn:  {ReservationRefundComplete, ReservationRefundFailed},
}

func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationEdges[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Reservation struct {
	ID              uuid.UUID         `bson:"_id" json:"id"`
	ListingID       uuid.UUID         `bson:"listing_id" json:"listingId"`
	AdvertiserID    uuid.UUID         `bson:"advertiser_id" json:"advertiserId"`
	TenantID        uuid.UUID         `bson:"tenant_id" json:"tenantId"`
	Status          ReservationStatus `bson:"status" json:"status"`
	OrderID         string            `bson:"order_id" json:"orderId"`
	TransactionID   string            `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	PaymentMethodID *uuid.UUID        `bson:"payment_method_id,omitempty" json:"paymentMethodId,omitempty"`
	Price           PriceBreakdown    `bson:"price" json:"price"`
	Application     RentalApplication `bson:"application" json:"application"`
	ProtectionPlan  string            `bson:"protection_plan" json:"protectionPlan"`
	RejectReason    string            `bson:"reject_reason,omitempty" json:"rejectReason,omitempty"`
	CreatedAt       time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updatedAt"`
	MovedInAt       *time.Time        `bson:"moved_in_at,omitempty" json:"movedInAt,omitempty"`
}

func NewReservation(listing *Listing, tenantID uuid.UUID, app RentalApplication, plan string, price PriceBreakdown, orderID string, now time.Time) *Reservation {
	return &Reservation{
		ID:             uuid.New(),
		ListingID:      listing.ID,
		AdvertiserID:   listing.AdvertiserID,
		TenantID:       tenantID,
		Status:         ReservationPending,
		OrderID:        orderID,
		Price:          price,
		Application:    app,
		ProtectionPlan: plan,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Transition mutates status along an allowed edge and stamps the clock.
// movedIn additionally records the move-in instant used by the discount
// finalization window.
func (r *Reservation) Transition(next ReservationStatus, now time.Time) error {
	if !next.IsValid() {
		return ErrInvalidInput
	}
	if !r.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	r.Status = next
	r.UpdatedAt = now
	if next == ReservationMovedIn {
		t := now
		r.MovedInAt = &t
	}
	return nil
}

type Listing struct {
	ID           uuid.UUID `bson:"_id" json:"id"`
	AdvertiserID uuid.UUID `bson:"advertiser_id" json:"advertiserId"`
	Title        string    `bson:"title" json:"title"`
	Address      string    `bson:"address" json:"address"`
	RentCents    int64     `bson:"rent_cents" json:"rentCents"`
	BrokerPct    float64   `bson:"broker_pct" json:"brokerPct"`
	Currency     string    `bson:"currency" json:"currency"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}
