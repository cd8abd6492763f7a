// Package fees implements the per-venue trading fee model. Everything here
// is a pure function of its inputs: identical arguments always produce
// bit-identical results, which the evaluator relies on for idempotent
// re-evaluation of a snapshot.
//
// Polymarket (regulated variant): fee = round(contracts * price * 0.0001, 2).
// The international variant charges no trading fee. A fixed Polygon gas
// estimate is added once per Polymarket-side transaction.
//
// Kalshi: fee = ceil_to_cent(mult * contracts * price * (1 - price)), where
// the multiplier depends on order aggressiveness and market class.
package fees

import "math"

// OrderType distinguishes aggressive orders that cross the book from passive
// orders that rest on it.
type OrderType string

const (
	Taker OrderType = "taker"
	Maker OrderType = "maker"
)

// MarketClass selects the Kalshi fee schedule band.
type MarketClass string

const (
	// ClassGeneral covers most Kalshi markets: 7% taker, free maker.
	ClassGeneral MarketClass = "general"
	// ClassMakerFee covers the designated subset that charges resting orders
	// at the reduced 1.75% multiplier.
	ClassMakerFee MarketClass = "maker_fee"
	// ClassIndex covers the designated index markets (S&P, Nasdaq ranges) at
	// the 3.5% multiplier.
	ClassIndex MarketClass = "index"
)

const (
	polymarketTakerRate = 0.0001 // 1 basis point on notional
	kalshiTakerMult     = 0.07
	kalshiMakerMult     = 0.0175
	kalshiIndexMult     = 0.035
)

// roundEps absorbs float64 representation error so that values landing
// exactly on a cent boundary (e.g. 0.07*100*0.5*0.5 = 1.75) are not pushed
// up a cent by ceiling.
const roundEps = 1e-9

// CeilToCent rounds a dollar amount up to the next cent.
func CeilToCent(x float64) float64 {
	return math.Ceil(x*100-roundEps) / 100
}

// RoundToCent rounds a dollar amount to the nearest cent.
func RoundToCent(x float64) float64 {
	return math.Round(x*100) / 100
}

// round4 rounds to 4 decimal places for reported breakdown figures.
func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// Calculator computes venue fees under one configured fee regime. The zero
// value is not usable; construct with New.
type Calculator struct {
	regulated bool    // Polymarket US (fee-charging) vs international variant
	gasFee    float64 // fixed per-transaction Polygon gas estimate, dollars
}

// New creates a Calculator. regulated selects the fee-charging Polymarket
// variant; gasFee is the fixed network-fee estimate applied once per
// Polymarket-side transaction.
func New(regulated bool, gasFee float64) *Calculator {
	return &Calculator{regulated: regulated, gasFee: gasFee}
}

// PolymarketFee returns the Polymarket trading fee in dollars for buying
// contracts at price. Zero under the fee-free international variant.
func (c *Calculator) PolymarketFee(contracts int, price float64) float64 {
	if !c.regulated {
		return 0
	}
	return RoundToCent(float64(contracts) * price * polymarketTakerRate)
}

// KalshiFee returns the Kalshi trading fee in dollars for buying contracts
// at price under the given order type and market class. Price exactly 0 or 1
// yields a fee of exactly 0; that is the schedule, not an error.
func (c *Calculator) KalshiFee(contracts int, price float64, ot OrderType, class MarketClass) float64 {
	mult := kalshiMultiplier(ot, class)
	if mult == 0 {
		return 0
	}
	return CeilToCent(mult * float64(contracts) * price * (1 - price))
}

// GasFee returns the fixed network-fee estimate for one Polymarket-side
// transaction.
func (c *Calculator) GasFee() float64 {
	return c.gasFee
}

func kalshiMultiplier(ot OrderType, class MarketClass) float64 {
	if class == ClassIndex {
		return kalshiIndexMult
	}
	if ot == Taker {
		return kalshiTakerMult
	}
	if class == ClassMakerFee {
		return kalshiMakerMult
	}
	return 0 // maker on a general market
}
