package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod struct {
	ID          uuid.UUID `bson:"_id" json:"id"`
	UserID      uuid.UUID `bson:"user_id" json:"userId"`
	Brand       string    `bson:"brand" json:"brand"`
	Last4       string    `bson:"last4" json:"last4"`
	ExpiryMonth int       `bson:"expiry_month" json:"expiryMonth"`
	ExpiryYear  int       `bson:"expiry_year" json:"expiryYear"`
	IsDefault   bool      `bson:"is_default" json:"isDefault"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

func (p *PaymentMethod) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if p.Brand == "" {
		errs["brand"] = "brand is required"
	}
	if len(p.Last4) != 4 {
		errs["last4"] = "last4 must be four digits"
	}
	if p.ExpiryMonth < 1 || p.ExpiryMonth > 12 {
		errs["expiryMonth"] = "expiry month out of range"
	}
	if p.ExpiryYear < 2000 {
		errs["expiryYear"] = "expiry year out of range"
	}
	if errs.Empty() {
		return nil
	}
	return errs
}
