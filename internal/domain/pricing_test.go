package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePrice(t *testing.T) {
	tests := []struct {
		name       string
		base       int64
		brokerPct  float64
		discount   int64
		protection int64
		wantTotal  int64
	}{
		{"no extras", 100000, 0, 0, 0, 125000},
		{"with broker fee", 100000, 10, 0, 0, 135000},
		{"broker clamped high", 100000, 120, 0, 0, 100000 + 25000 + 75000},
		{"broker clamped negative", 100000, -5, 0, 0, 125000},
		{"discount and protection", 100000, 10, 5000, 2500, 132500},
		{"service fee rounds", 101, 0, 0, 0, 101 + 25},
		{"zero base", 0, 50, 0, 2500, 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePrice(tt.base, tt.brokerPct, tt.discount, tt.protection)
			assert.Equal(t, tt.wantTotal, got.TotalCents)
			assert.Equal(t, tt.base, got.BaseCents)
			assert.Equal(t, got.BaseCents+got.ServiceFeeCents+got.BrokerFeeCents-got.DiscountCents+got.ProtectionCents, got.TotalCents)
		})
	}
}

func TestComputePrice_BrokerClamp(t *testing.T) {
	for _, pct := range []float64{-100, -1, 0, 37.5, 75, 76, 1000} {
		got := ComputePrice(200000, pct, 0, 0)
		assert.GreaterOrEqual(t, got.BrokerFeeCents, int64(0), "pct=%v", pct)
		assert.LessOrEqual(t, got.BrokerFeeCents, int64(150000), "pct=%v", pct)
	}
}
