package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allReservationStatuses() []ReservationStatus {
	return []ReservationStatus{
		ReservationPending, ReservationAccepted, ReservationRejected,
		ReservationPaid, ReservationMovedIn, ReservationCancelled,
		ReservationUnderReview, ReservationRefundComplete,
		ReservationRefundFailed, ReservationExpired,
	}
}

func TestReservationStatus_EdgeSet(t *testing.T) {
	allowed := map[ReservationStatus][]ReservationStatus{
		ReservationPending:  {ReservationAccepted, ReservationRejected, ReservationCancelled, ReservationExpired},
		ReservationAccepted: {ReservationPaid, ReservationUnderReview},
		ReservationPaid:     {ReservationMovedIn},
		ReservationMovedIn:  {ReservationRefundComplete, ReservationRefundFailed},
	}

	for _, from := range allReservationStatuses() {
		for _, to := range allReservationStatuses() {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestReservation_Transition(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	listing := &Listing{ID: uuid.New(), AdvertiserID: uuid.New(), RentCents: 100000}
	res := NewReservation(listing, uuid.New(), RentalApplication{}, "standard", PriceBreakdown{}, "ORD-1", now)

	require.Equal(t, ReservationPending, res.Status)
	require.Nil(t, res.MovedInAt)

	require.NoError(t, res.Transition(ReservationAccepted, now.Add(time.Hour)))
	require.NoError(t, res.Transition(ReservationPaid, now.Add(2*time.Hour)))

	moveIn := now.Add(3 * time.Hour)
	require.NoError(t, res.Transition(ReservationMovedIn, moveIn))
	require.NotNil(t, res.MovedInAt)
	assert.Equal(t, moveIn, *res.MovedInAt)
	assert.Equal(t, moveIn, res.UpdatedAt)
}

func TestReservation_Transition_RejectsIllegalEdge(t *testing.T) {
	now := time.Now()
	listing := &Listing{ID: uuid.New(), AdvertiserID: uuid.New()}
	res := NewReservation(listing, uuid.New(), RentalApplication{}, "standard", PriceBreakdown{}, "ORD-2", now)

	err := res.Transition(ReservationMovedIn, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, ReservationPending, res.Status, "failed transition must not mutate")

	err = res.Transition(ReservationStatus("bogus"), now)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReservation_TerminalStatesHaveNoEdges(t *testing.T) {
	for _, s := range allReservationStatuses() {
		if !s.IsTerminal() {
			continue
		}
		for _, to := range allReservationStatuses() {
			assert.False(t, s.CanTransitionTo(to), "%s is terminal", s)
		}
	}
}
