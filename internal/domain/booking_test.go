package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoshootBooking_CompleteRequiresAssignment(t *testing.T) {
	now := time.Now()
	b := NewPhotoshootBooking(uuid.New(), "12 Rue de la Paix", now.Add(48*time.Hour), now)

	err := b.Complete(uuid.New(), []string{"https://cdn.example.com/a.jpg"}, now)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, BookingPending, b.Status)

	require.NoError(t, b.AssignTeam(uuid.New(), []string{"lea", "marc"}, now))
	assert.Equal(t, BookingAssigned, b.Status)

	require.NoError(t, b.Complete(uuid.New(), []string{"https://cdn.example.com/a.jpg"}, now))
	assert.Equal(t, BookingCompleted, b.Status)
	require.NotNil(t, b.CompletedAt)
	require.NotNil(t, b.PropertyID)
}

func TestPhotoshootBooking_ImageDedup(t *testing.T) {
	now := time.Now()
	b := NewPhotoshootBooking(uuid.New(), "addr", now.Add(time.Hour), now)
	require.NoError(t, b.AssignTeam(uuid.New(), nil, now))

	images := []string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/b.jpg",
		"https://cdn.example.com/a.jpg",
		"",
	}
	require.NoError(t, b.Complete(uuid.New(), images, now))
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, b.Images)
}

func TestPhotoshootBooking_Cancel(t *testing.T) {
	now := time.Now()
	b := NewPhotoshootBooking(uuid.New(), "addr", now.Add(time.Hour), now)

	require.NoError(t, b.Cancel("no show", now))
	assert.Equal(t, BookingCancelled, b.Status)
	assert.Equal(t, "no show", b.CancellationReason)

	// terminal: no further mutation
	assert.ErrorIs(t, b.AssignTeam(uuid.New(), nil, now), ErrInvalidTransition)
	assert.ErrorIs(t, b.Cancel("again", now), ErrInvalidTransition)
	assert.ErrorIs(t, b.Reschedule(now.Add(2*time.Hour), now), ErrInvalidTransition)
}

func TestPhotoshootBooking_Reschedule(t *testing.T) {
	now := time.Now()
	b := NewPhotoshootBooking(uuid.New(), "addr", now.Add(time.Hour), now)

	next := now.Add(72 * time.Hour)
	require.NoError(t, b.Reschedule(next, now))
	assert.Equal(t, next, b.ScheduledAt)
}
