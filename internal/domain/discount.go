package domain

import (
	"time"

	"github.com/google/uuid"
)

// Discount is a referral credit a tenant carries into checkout. Confirm
// attaches it to the reservation it paid down; it is only finalized
// (marked used, credited to the referring advertiser) once the tenant has
// been moved in for the settlement window without a cancellation.
type Discount struct {
	ID            uuid.UUID  `bson:"_id" json:"id"`
	TenantID      uuid.UUID  `bson:"tenant_id" json:"tenantId"`
	ReservationID *uuid.UUID `bson:"reservation_id,omitempty" json:"reservationId,omitempty"`
	AdvertiserID  uuid.UUID  `bson:"advertiser_id" json:"advertiserId"`
	AmountCents   int64      `bson:"amount_cents" json:"amountCents"`
	Used          bool       `bson:"used" json:"used"`
	UsedAt        *time.Time `bson:"used_at,omitempty" json:"usedAt,omitempty"`
	CreatedAt     time.Time  `bson:"created_at" json:"createdAt"`
}

// SettlementWindow is how long after move-in a discount stays provisional.
const SettlementWindow = 24 * time.Hour

func (d *Discount) MarkUsed(now time.Time) error {
	if d.Used {
		return ErrConflict
	}
	d.Used = true
	t := now
	d.UsedAt = &t
	return nil
}
