package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAssigned  BookingStatus = "assigned"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingAssigned, BookingCompleted, BookingCancelled:
		return true
	default:
		return false
	}
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// PhotoshootBooking is an advertiser's request to have a listing
// photographed before it goes live.
type PhotoshootBooking struct {
	ID                 uuid.UUID     `bson:"_id" json:"id"`
	AdvertiserID       uuid.UUID     `bson:"advertiser_id" json:"advertiserId"`
	PropertyAddress    string        `bson:"property_address" json:"propertyAddress"`
	ScheduledAt        time.Time     `bson:"scheduled_at" json:"scheduledAt"`
	Status             BookingStatus `bson:"status" json:"status"`
	TeamID             *uuid.UUID    `bson:"team_id,omitempty" json:"teamId,omitempty"`
	TeamMembers        []string      `bson:"team_members,omitempty" json:"teamMembers,omitempty"`
	Images             []string      `bson:"images,omitempty" json:"images,omitempty"`
	PropertyID         *uuid.UUID    `bson:"property_id,omitempty" json:"propertyId,omitempty"`
	CancellationReason string        `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	CreatedAt          time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updated_at" json:"updatedAt"`
	CompletedAt        *time.Time    `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}

func NewPhotoshootBooking(advertiserID uuid.UUID, address string, scheduledAt time.Time, now time.Time) *PhotoshootBooking {
	return &PhotoshootBooking{
		ID:              uuid.New(),
		AdvertiserID:    advertiserID,
		PropertyAddress: address,
		ScheduledAt:     scheduledAt,
		Status:          BookingPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (b *PhotoshootBooking) AssignTeam(teamID uuid.UUID, members []string, now time.Time) error {
	if b.Status.IsTerminal() {
		return ErrInvalidTransition
	}
	b.Status = BookingAssigned
	b.TeamID = &teamID
	b.TeamMembers = members
	b.UpdatedAt = now
	return nil
}

// Complete requires a team to have been assigned first. Image URLs are
// stored with set semantics: submitting the same URL twice yields one entry.
func (b *PhotoshootBooking) Complete(propertyID uuid.UUID, images []string, now time.Time) error {
	if b.Status != BookingAssigned {
		return ErrInvalidTransition
	}
	b.Status = BookingCompleted
	b.Images = dedupeStrings(append(b.Images, images...))
	b.PropertyID = &propertyID
	b.CompletedAt = &now
	b.UpdatedAt = now
	return nil
}

func (b *PhotoshootBooking) Cancel(reason string, now time.Time) error {
	if b.Status.IsTerminal() {
		return ErrInvalidTransition
	}
	b.Status = BookingCancelled
	b.CancellationReason = reason
	b.UpdatedAt = now
	return nil
}

func (b *PhotoshootBooking) Reschedule(scheduledAt time.Time, now time.Time) error {
	if b.Status.IsTerminal() {
		return ErrInvalidTransition
	}
	b.ScheduledAt = scheduledAt
	b.UpdatedAt = now
	return nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
