package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/clock"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stayloop/stayloop-server/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAdminID = uuid.New()

func newBookingFixture(t *testing.T) (*services.BookingService, *fakeBookingStore, *fakeTeamDirectory, *fakeEnqueuer, *fakeAudit, *clock.MockClock) {
	t.Helper()
	bookings := newFakeBookingStore()
	teams := newFakeTeamDirectory()
	enqueuer := &fakeEnqueuer{}
	audit := &fakeAudit{}
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := services.NewBookingService(bookings, teams, enqueuer, audit, clk, observability.NewLogger(), testAdminID)
	return svc, bookings, teams, enqueuer, audit, clk
}

func TestBookingService_Create(t *testing.T) {
	svc, bookings, _, enqueuer, _, clk := newBookingFixture(t)
	advertiser := uuid.New()

	b, err := svc.Create(context.Background(), advertiser, "12 Main St", clk.Now().Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)

	stored, err := bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "12 Main St", stored.PropertyAddress)

	admin := enqueuer.byType(domain.NotifPhotoshootBooked)
	require.Len(t, admin, 1)
	assert.Equal(t, testAdminID, admin[0].UserID)
	assert.Equal(t, domain.RoleAdmin, admin[0].Role)
}

func TestBookingService_CreateRejectsPastSchedule(t *testing.T) {
	svc, _, _, enqueuer, _, clk := newBookingFixture(t)

	_, err := svc.Create(context.Background(), uuid.New(), "12 Main St", clk.Now().Add(-time.Hour))
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "scheduledAt")
	assert.Empty(t, enqueuer.intents)
}

func TestBookingService_CreateSurvivesEnqueueFailure(t *testing.T) {
	svc, bookings, _, enqueuer, _, clk := newBookingFixture(t)
	enqueuer.err = context.DeadlineExceeded

	b, err := svc.Create(context.Background(), uuid.New(), "12 Main St", clk.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = bookings.GetByID(context.Background(), b.ID)
	assert.NoError(t, err)
}

func TestBookingService_AssignTeam(t *testing.T) {
	svc, bookings, teams, enqueuer, audit, clk := newBookingFixture(t)
	advertiser := uuid.New()
	team := domain.Team{ID: uuid.New(), Name: "North Crew", Members: []string{"ana", "joao"}}
	teams.byID[team.ID] = team

	b, err := svc.Create(context.Background(), advertiser, "12 Main St", clk.Now().Add(time.Hour))
	require.NoError(t, err)

	updated, err := svc.AssignTeam(context.Background(), testAdminID, b.ID, team.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingAssigned, updated.Status)
	require.NotNil(t, updated.TeamID)
	assert.Equal(t, team.ID, *updated.TeamID)
	assert.Equal(t, team.Members, updated.TeamMembers)

	stored, _ := bookings.GetByID(context.Background(), b.ID)
	assert.Equal(t, domain.BookingAssigned, stored.Status)

	assigned := enqueuer.byType(domain.NotifTeamAssigned)
	require.Len(t, assigned, 1)
	assert.Equal(t, advertiser, assigned[0].UserID)
	assert.Contains(t, audit.events, "team_assigned")
}

func TestBookingService_AssignTeamUnknownTeamLeavesBookingUntouched(t *testing.T) {
	svc, bookings, _, enqueuer, _, clk := newBookingFixture(t)

	b, err := svc.Create(context.Background(), uuid.New(), "12 Main St", clk.Now().Add(time.Hour))
	require.NoError(t, err)
	before := len(enqueuer.intents)

	_, err = svc.AssignTeam(context.Background(), testAdminID, b.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, _ := bookings.GetByID(context.Background(), b.ID)
	assert.Equal(t, domain.BookingPending, stored.Status)
	assert.Nil(t, stored.TeamID)
	assert.Len(t, enqueuer.intents, before)
}

func TestBookingService_Complete(t *testing.T) {
	svc, _, teams, enqueuer, _, clk := newBookingFixture(t)
	advertiser := uuid.New()
	team := domain.Team{ID: uuid.New(), Name: "North Crew"}
	teams.byID[team.ID] = team

	b, err := svc.Create(context.Background(), advertiser, "12 Main St", clk.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.AssignTeam(context.Background(), testAdminID, b.ID, team.ID)
	require.NoError(t, err)

	propertyID := uuid.New()
	updated, err := svc.Complete(context.Background(), b.ID, propertyID, []string{"a.jpg", "b.jpg", "a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, updated.Status)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, updated.Images)
	require.NotNil(t, updated.PropertyID)
	assert.Equal(t, propertyID, *updated.PropertyID)

	assert.Len(t, enqueuer.byType(domain.NotifPhotoshootDone), 1)
	assert.Len(t, enqueuer.byType(domain.NotifPhotoshootDoneAdmin), 1)
}

func TestBookingService_CompleteRequiresAssignment(t *testing.T) {
	svc, _, _, _, _, clk := newBookingFixture(t)

	b, err := svc.Create(context.Background(), uuid.New(), "12 Main St", clk.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), b.ID, uuid.New(), []string{"a.jpg"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestBookingService_CancelNotifiesExactlyOnce(t *testing.T) {
	svc, _, _, enqueuer, audit, clk := newBookingFixture(t)
	advertiser := uuid.New()

	b, err := svc.Create(context.Background(), advertiser, "12 Main St", clk.Now().Add(time.Hour))
	require.NoError(t, err)

	updated, err := svc.Cancel(context.Background(), testAdminID, b.ID, "no show")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, updated.Status)
	assert.Equal(t, "no show", updated.CancellationReason)

	cancelled := enqueuer.byType(domain.NotifPhotoshootCanceled)
	require.Len(t, cancelled, 1)
	assert.Equal(t, advertiser, cancelled[0].UserID)
	assert.Contains(t, cancelled[0].Message, "no show")
	assert.Contains(t, audit.events, "booking_cancelled")

	_, err = svc.Cancel(context.Background(), testAdminID, b.ID, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Len(t, enqueuer.byType(domain.NotifPhotoshootCanceled), 1)
}

func TestBookingService_Reschedule(t *testing.T) {
	svc, _, _, _, _, clk := newBookingFixture(t)

	b, err := svc.Create(context.Background(), uuid.New(), "12 Main St", clk.Now().Add(time.Hour))
	require.NoError(t, err)

	next := clk.Now().Add(72 * time.Hour)
	updated, err := svc.Reschedule(context.Background(), b.ID, next)
	require.NoError(t, err)
	assert.True(t, updated.ScheduledAt.Equal(next))

	_, err = svc.Cancel(context.Background(), testAdminID, b.ID, "")
	require.NoError(t, err)
	_, err = svc.Reschedule(context.Background(), b.ID, clk.Now().Add(96*time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestBookingService_ListByStatus(t *testing.T) {
	svc, _, teams, _, _, clk := newBookingFixture(t)
	team := domain.Team{ID: uuid.New(), Name: "Alpha", Members: []string{"k"}}
	teams.byID[team.ID] = team

	a, err := svc.Create(context.Background(), uuid.New(), "12 Main St", clk.Now().Add(24*time.Hour))
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), uuid.New(), "9 Oak Ave", clk.Now().Add(24*time.Hour))
	require.NoError(t, err)
	_, err = svc.AssignTeam(context.Background(), testAdminID, b.ID, team.ID)
	require.NoError(t, err)

	pending, err := svc.ListByStatus(context.Background(), domain.BookingPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, a.ID, pending[0].ID)

	assigned, err := svc.ListByStatus(context.Background(), domain.BookingAssigned)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, b.ID, assigned[0].ID)

	_, err = svc.ListByStatus(context.Background(), domain.BookingStatus("bogus"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
