package domain

import "math"

const (
	// ServiceFeePct is the platform's cut, applied to the base rent.
	ServiceFeePct = 25.0
	// MaxBrokerPct caps owner-configured broker fees.
	MaxBrokerPct = 75.0
)

type PriceBreakdown struct {
	BaseCents       int64 `bson:"base_cents" json:"baseCents"`
	ServiceFeeCents int64 `bson:"service_fee_cents" json:"serviceFeeCents"`
	BrokerFeeCents  int64 `bson:"broker_fee_cents" json:"brokerFeeCents"`
	DiscountCents   int64 `bson:"discount_cents" json:"discountCents"`
	ProtectionCents int64 `bson:"protection_cents" json:"protectionCents"`
	TotalCents      int64 `bson:"total_cents" json:"totalCents"`
}

// ComputePrice builds the checkout total:
// base + round(base*25%) + clamp(brokerPct,0,75)%*base - discount + protectionFee.
func ComputePrice(baseCents int64, brokerPct float64, discountCents, protectionCents int64) PriceBreakdown {
	if brokerPct < 0 {
		brokerPct = 0
	}
	if brokerPct > MaxBrokerPct {
		brokerPct = MaxBrokerPct
	}

	serviceFee := int64(math.Round(float64(baseCents) * ServiceFeePct / 100.0))
	brokerFee := int64(math.Round(float64(baseCents) * brokerPct / 100.0))

	return PriceBreakdown{
		BaseCents:       baseCents,
		ServiceFeeCents: serviceFee,
		BrokerFeeCents:  brokerFee,
		DiscountCents:   discountCents,
		ProtectionCents: protectionCents,
		TotalCents:      baseCents + serviceFee + brokerFee - discountCents + protectionCents,
	}
}
