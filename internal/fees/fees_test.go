package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKalshiFee_TakerVectors(t *testing.T) {
	c := New(true, 0.02)

	tests := []struct {
		name      string
		contracts int
		price     float64
		want      float64
	}{
		{"max at midpoint", 100, 0.50, 1.75},
		{"ceil above exact cent", 100, 0.75, 1.32},
		{"low price", 100, 0.10, 0.63},
		{"near certainty", 100, 0.98, 0.14},
		{"price zero", 100, 0.0, 0.0},
		{"price one", 100, 1.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.KalshiFee(tt.contracts, tt.price, Taker, ClassGeneral)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKalshiFee_SymmetricAndMaximalAtMidpoint(t *testing.T) {
	c := New(true, 0)
	mid := c.KalshiFee(1000, 0.50, Taker, ClassGeneral)

	for _, p := range []float64{0.01, 0.10, 0.25, 0.40, 0.49, 0.60, 0.75, 0.90, 0.99} {
		fee := c.KalshiFee(1000, p, Taker, ClassGeneral)
		mirror := c.KalshiFee(1000, 1-p, Taker, ClassGeneral)
		assert.Equal(t, fee, mirror, "fee not symmetric at p=%v", p)
		assert.LessOrEqual(t, fee, mid, "fee exceeds midpoint fee at p=%v", p)
	}
}

func TestKalshiFee_Multipliers(t *testing.T) {
	c := New(true, 0)

	// Maker on a general market is free.
	assert.Zero(t, c.KalshiFee(100, 0.50, Maker, ClassGeneral))

	// Maker on the designated subset: 0.0175 * 100 * 0.25 = 0.4375 -> 0.44.
	assert.Equal(t, 0.44, c.KalshiFee(100, 0.50, Maker, ClassMakerFee))

	// Index markets use 0.035 regardless of aggressiveness:
	// 0.035 * 100 * 0.25 = 0.875 -> 0.88.
	assert.Equal(t, 0.88, c.KalshiFee(100, 0.50, Taker, ClassIndex))
	assert.Equal(t, 0.88, c.KalshiFee(100, 0.50, Maker, ClassIndex))
}

func TestPolymarketFee(t *testing.T) {
	c := New(true, 0.02)

	// 500 * 0.40 * 0.0001 = 0.02
	assert.Equal(t, 0.02, c.PolymarketFee(500, 0.40))
	// 2000 * 0.50 * 0.0001 = 0.10
	assert.Equal(t, 0.10, c.PolymarketFee(2000, 0.50))

	intl := New(false, 0.02)
	assert.Zero(t, intl.PolymarketFee(2000, 0.50))
}

func TestCeilToCent(t *testing.T) {
	assert.Equal(t, 1.75, CeilToCent(1.75))
	assert.Equal(t, 1.32, CeilToCent(1.3125))
	assert.Equal(t, 0.01, CeilToCent(0.0001))
	assert.Equal(t, 0.0, CeilToCent(0.0))
}

func TestBreakdown(t *testing.T) {
	c := New(true, 0.02)
	fb := c.Breakdown(100, 0.45, 0.58, Taker, ClassGeneral)

	// Kalshi: 0.07 * 100 * 0.58 * 0.42 = 1.7052 -> 1.71
	assert.Equal(t, 1.71, fb.KalshiFee)
	// Polymarket: 100 * 0.45 * 0.0001 = 0.0045 -> rounds to 0.00
	assert.Equal(t, 0.0, fb.PolymarketFee)
	assert.Equal(t, 0.02, fb.GasFee)
	assert.Equal(t, 1.73, fb.Total)
	assert.Equal(t, 0.0173, fb.PerContract)
	assert.Equal(t, 100, fb.Contracts)
}

func TestBreakdown_ZeroFeeRegime(t *testing.T) {
	// International Polymarket, maker on general Kalshi market, no gas: a
	// fully fee-free combination where net margin must equal gross margin.
	c := New(false, 0)
	fb := c.Breakdown(1000, 0.45, 0.52, Maker, ClassGeneral)

	assert.Zero(t, fb.PolymarketFee)
	assert.Zero(t, fb.KalshiFee)
	assert.Zero(t, fb.GasFee)
	assert.Zero(t, fb.Total)
	assert.Zero(t, fb.PerContract)
}
