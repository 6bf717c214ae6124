package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleAdvertiser Role = "advertiser"
	RoleAdmin      Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdvertiser || r == RoleAdmin
}

type NotificationType string

const (
	// tenant-facing
	NotifReservationAccepted NotificationType = "reservation_accepted"
	NotifReservationRejected NotificationType = "reservation_rejected"
	NotifRefundComplete      NotificationType = "refund_complete"
	NotifRefundFailed        NotificationType = "refund_failed"

	// advertiser-facing
	NotifReservationCreated NotificationType = "reservation_created"
	NotifTenantMovedIn      NotificationType = "tenant_moved_in"
	NotifTeamAssigned       NotificationType = "team_assigned_photoshoot"
	NotifPhotoshootDone     NotificationType = "photoshoot_completed"
	NotifPhotoshootCanceled NotificationType = "photoshoot_cancelled"
	NotifDiscountFinalized  NotificationType = "referral_discount_finalized"

	// admin-facing
	NotifPhotoshootBooked      NotificationType = "photoshoot_booked"
	NotifPhotoshootDoneAdmin   NotificationType = "photoshoot_completed_admin"
	NotifCancellationForReview NotificationType = "cancellation_under_review"
)

// typesByRole is the closed enum per recipient role.
var typesByRole = map[Role]map[NotificationType]struct{}{
	RoleUser: {
		NotifReservationAccepted: {},
		NotifReservationRejected: {},
		NotifRefundComplete:      {},
		NotifRefundFailed:        {},
	},
	RoleAdvertiser: {
		NotifReservationCreated: {},
		NotifTenantMovedIn:      {},
		NotifTeamAssigned:       {},
		NotifPhotoshootDone:     {},
		NotifPhotoshootCanceled: {},
		NotifDiscountFinalized:  {},
	},
	RoleAdmin: {
		NotifPhotoshootBooked:      {},
		NotifPhotoshootDoneAdmin:   {},
		NotifCancellationForReview: {},
	},
}

func (t NotificationType) ValidFor(role Role) bool {
	_, ok := typesByRole[role][t]
	return ok
}

// Notification is append-only; only the read flag ever changes after
// creation.
type Notification struct {
	ID        uuid.UUID         `bson:"_id" json:"id"`
	UserID    uuid.UUID         `bson:"user_id" json:"userId"`
	Role      Role              `bson:"role" json:"role"`
	Type      NotificationType  `bson:"type" json:"type"`
	Title     string            `bson:"title" json:"title"`
	Message   string            `bson:"message" json:"message"`
	Link      string            `bson:"link,omitempty" json:"link,omitempty"`
	Metadata  map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	IsRead    bool              `bson:"is_read" json:"isRead"`
	CreatedAt time.Time         `bson:"created_at" json:"createdAt"`
}

func NewNotification(userID uuid.UUID, role Role, typ NotificationType, title, message, link string, metadata map[string]string, now time.Time) (*Notification, error) {
	if !role.IsValid() || !typ.ValidFor(role) {
		return nil, ErrInvalidInput
	}
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      role,
		Type:      typ,
		Title:     title,
		Message:   message,
		Link:      link,
		Metadata:  metadata,
		IsRead:    false,
		CreatedAt: now,
	}, nil
}
