package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/clock"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stayloop/stayloop-server/internal/outbox"
)

// BookingService owns the photoshoot booking lifecycle. Every mutation
// persists first, then enqueues notification intents best-effort: a full
// outbox must never roll back a booking that already happened.
type BookingService struct {
	bookings BookingStore
	teams    TeamDirectory
	enqueuer outbox.Enqueuer
	audit    AuditSink
	clock    clock.Clock
	logger   observability.Logger
	adminID  uuid.UUID
}

func NewBookingService(bookings BookingStore, teams TeamDirectory, enqueuer outbox.Enqueuer, audit AuditSink, clk clock.Clock, logger observability.Logger, adminID uuid.UUID) *BookingService {
	return &BookingService{
		bookings: bookings,
		teams:    teams,
		enqueuer: enqueuer,
		audit:    audit,
		clock:    clk,
		logger:   logger,
		adminID:  adminID,
	}
}

func (s *BookingService) Create(ctx context.Context, advertiserID uuid.UUID, address string, scheduledAt time.Time) (*domain.PhotoshootBooking, error) {
	if address == "" {
		return nil, domain.ValidationErrors{"propertyAddress": "property address is required"}
	}
	now := s.clock.Now()
	if !scheduledAt.After(now) {
		return nil, domain.ValidationErrors{"scheduledAt": "scheduled time must be in the future"}
	}

	b := domain.NewPhotoshootBooking(advertiserID, address, scheduledAt, now)
	if err := s.bookings.Insert(ctx, b); err != nil {
		return nil, err
	}

	s.notify(ctx, outbox.Intent{
		UserID:        s.adminID,
		Role:          domain.RoleAdmin,
		Type:          domain.NotifPhotoshootBooked,
		Title:         "New photoshoot booked",
		Message:       fmt.Sprintf("A photoshoot was booked at %s for %s.", address, scheduledAt.Format("Jan 2, 2006 15:04")),
		Link:          "/admin/photoshoots/" + b.ID.String(),
		AggregateType: "photoshoot_booking",
		AggregateID:   b.ID,
	})
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*domain.PhotoshootBooking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListForAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]domain.PhotoshootBooking, error) {
	return s.bookings.ListByAdvertiser(ctx, advertiserID)
}

// ListByStatus is the admin work-queue view across all advertisers.
func (s *BookingService) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.PhotoshootBooking, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	return s.bookings.ListByStatus(ctx, status)
}

// AssignTeam looks the team up before touching the booking, so a bad team
// id leaves the booking untouched.
func (s *BookingService) AssignTeam(ctx context.Context, actorID, bookingID, teamID uuid.UUID) (*domain.PhotoshootBooking, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.AssignTeam(team.ID, team.Members, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	s.audit.LogTeamAssigned(ctx, actorID, b.ID, team.ID)
	s.notify(ctx, outbox.Intent{
		UserID:        b.AdvertiserID,
		Role:          domain.RoleAdvertiser,
		Type:          domain.NotifTeamAssigned,
		Title:         "Photography team assigned",
		Message:       fmt.Sprintf("Team %s has been assigned to your photoshoot at %s.", team.Name, b.PropertyAddress),
		Link:          "/photoshoots/" + b.ID.String(),
		AggregateType: "photoshoot_booking",
		AggregateID:   b.ID,
	})
	return b, nil
}

// Complete finishes the shoot, attaching the uploaded images and the
// property the listing photos belong to. Both the advertiser and the admin
// are notified; either intent failing is logged, never fatal, and never
// suppresses the other.
func (s *BookingService) Complete(ctx context.Context, bookingID, propertyID uuid.UUID, images []string) (*domain.PhotoshootBooking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.Complete(propertyID, images, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	s.notify(ctx, outbox.Intent{
		UserID:        b.AdvertiserID,
		Role:          domain.RoleAdvertiser,
		Type:          domain.NotifPhotoshootDone,
		Title:         "Photoshoot completed",
		Message:       fmt.Sprintf("Your photoshoot at %s is done. %d photos are ready.", b.PropertyAddress, len(b.Images)),
		Link:          "/photoshoots/" + b.ID.String(),
		AggregateType: "photoshoot_booking",
		AggregateID:   b.ID,
	})
	s.notify(ctx, outbox.Intent{
		UserID:        s.adminID,
		Role:          domain.RoleAdmin,
		Type:          domain.NotifPhotoshootDoneAdmin,
		Title:         "Photoshoot completed",
		Message:       fmt.Sprintf("The photoshoot at %s was completed with %d photos.", b.PropertyAddress, len(b.Images)),
		Link:          "/admin/photoshoots/" + b.ID.String(),
		AggregateType: "photoshoot_booking",
		AggregateID:   b.ID,
	})
	return b, nil
}

// Cancel records the reason and notifies the advertiser exactly once.
func (s *BookingService) Cancel(ctx context.Context, actorID, bookingID uuid.UUID, reason string) (*domain.PhotoshootBooking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.Cancel(reason, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	s.audit.LogBookingCancelled(ctx, actorID, b.ID, reason)
	msg := fmt.Sprintf("Your photoshoot at %s was cancelled.", b.PropertyAddress)
	if reason != "" {
		msg = fmt.Sprintf("Your photoshoot at %s was cancelled: %s.", b.PropertyAddress, reason)
	}
	s.notify(ctx, outbox.Intent{
		UserID:        b.AdvertiserID,
		Role:          domain.RoleAdvertiser,
		Type:          domain.NotifPhotoshootCanceled,
		Title:         "Photoshoot cancelled",
		Message:       msg,
		Link:          "/photoshoots/" + b.ID.String(),
		AggregateType: "photoshoot_booking",
		AggregateID:   b.ID,
	})
	return b, nil
}

func (s *BookingService) Reschedule(ctx context.Context, bookingID uuid.UUID, scheduledAt time.Time) (*domain.PhotoshootBooking, error) {
	now := s.clock.Now()
	if !scheduledAt.After(now) {
		return nil, domain.ValidationErrors{"scheduledAt": "scheduled time must be in the future"}
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.Reschedule(scheduledAt, now); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) notify(ctx context.Context, intent outbox.Intent) {
	if err := s.enqueuer.Enqueue(ctx, intent); err != nil {
		s.logger.WithField("type", string(intent.Type)).WithError(err).Error("enqueue notification")
	}
}
