package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/fees"
)

func testEvaluator() *Evaluator {
	return NewEvaluator(fees.New(true, 0), fees.Taker, fees.ClassGeneral, 0.01)
}

func snapshotWith(hourOpen, up, down float64, strikes ...domain.KalshiStrike) *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		Timestamp: time.Now(),
		Polymarket: &domain.PolymarketQuote{
			Slug: "bitcoin-up-or-down-august-31-3pm-et",
			Up:   up,
			Down: down,
		},
		Kalshi: &domain.KalshiLadder{
			EventTicker: "KXBTCD-26AUG3116",
			Strikes:     strikes,
		},
		Spot: &domain.SpotPrice{Symbol: "BTCUSDT", Price: hourOpen + 50, HourOpen: hourOpen},
	}
}

func TestEvaluateIncompleteSnapshotIsEmpty(t *testing.T) {
	snap := snapshotWith(109100, 0.5, 0.5, domain.KalshiStrike{Strike: 109000})
	snap.Kalshi = nil

	result := testEvaluator().Evaluate(snap, 100)
	assert.Empty(t, result.Checks)
	assert.Nil(t, result.Best)

	result = testEvaluator().Evaluate(nil, 100)
	assert.Empty(t, result.Checks)
}

func TestEvaluateThresholdAboveStrike(t *testing.T) {
	// Threshold 109100 > strike 109000: Down + Yes covers every close.
	snap := snapshotWith(109100, 0.55, 0.45,
		domain.KalshiStrike{Ticker: "K1", Strike: 109000, YesAsk: 0.50, NoAsk: 0.52})

	result := testEvaluator().Evaluate(snap, 100)
	require.Len(t, result.Checks, 1)

	check := result.Checks[0]
	assert.Equal(t, domain.StrategyPolyAbove, check.Type)
	assert.Equal(t, domain.SideDown, check.PolyLeg)
	assert.Equal(t, domain.SideYes, check.KalshiLeg)
	assert.InDelta(t, 0.95, check.TotalCost, 1e-9)
	assert.InDelta(t, 0.05, check.GrossMargin, 1e-9)
	// Kalshi taker at 0.50 for 100 contracts costs $1.75, Poly rounds to $0.
	assert.InDelta(t, 1.75, check.Fees.Total, 1e-9)
	assert.InDelta(t, 0.0325, check.NetMargin, 1e-9)
	assert.True(t, check.IsArbitrage)
	assert.True(t, check.ProfitableAfterFees)
}

func TestEvaluateThresholdBelowStrike(t *testing.T) {
	snap := snapshotWith(108900, 0.45, 0.55,
		domain.KalshiStrike{Ticker: "K1", Strike: 109000, YesAsk: 0.48, NoAsk: 0.58})

	result := testEvaluator().Evaluate(snap, 100)
	require.Len(t, result.Checks, 1)

	check := result.Checks[0]
	assert.Equal(t, domain.StrategyPolyBelow, check.Type)
	assert.Equal(t, domain.SideUp, check.PolyLeg)
	assert.Equal(t, domain.SideNo, check.KalshiLeg)
	// 0.45 + 0.58 = 1.03: a guaranteed loss before fees.
	assert.InDelta(t, -0.03, check.GrossMargin, 1e-9)
	assert.False(t, check.IsArbitrage)
	assert.False(t, check.ProfitableAfterFees)
	assert.Empty(t, result.Opportunities)
	assert.Nil(t, result.Best)
}

func TestEvaluateEqualStrikeChecksBothPairings(t *testing.T) {
	snap := snapshotWith(109000, 0.48, 0.49,
		domain.KalshiStrike{Ticker: "K1", Strike: 109000, YesAsk: 0.47, NoAsk: 0.50})

	result := testEvaluator().Evaluate(snap, 100)
	require.Len(t, result.Checks, 2)
	assert.Equal(t, domain.StrategyEqual, result.Checks[0].Type)
	assert.Equal(t, domain.StrategyEqual, result.Checks[1].Type)
	assert.Equal(t, domain.SideDown, result.Checks[0].PolyLeg)
	assert.Equal(t, domain.SideUp, result.Checks[1].PolyLeg)
}

func TestEvaluateBestIsHighestNetMargin(t *testing.T) {
	snap := snapshotWith(109600, 0.50, 0.40,
		domain.KalshiStrike{Ticker: "K1", Strike: 109000, YesAsk: 0.55, NoAsk: 0.47},
		domain.KalshiStrike{Ticker: "K2", Strike: 109500, YesAsk: 0.45, NoAsk: 0.57})

	result := testEvaluator().Evaluate(snap, 100)
	require.NotNil(t, result.Best)
	// 0.40 + 0.45 beats 0.40 + 0.55 on every margin.
	assert.Equal(t, "K2", result.Best.KalshiTicker)
	for _, opp := range result.Opportunities {
		assert.LessOrEqual(t, opp.NetMargin, result.Best.NetMargin)
	}
}

func TestEvaluateRoundsMarginsOnceAtReporting(t *testing.T) {
	// A sub-cent book price plus a per-contract fee with repeating decimals:
	// rounding the gross margin before subtracting fees would tip the net
	// margin up to 0.0250. Rounding the raw value once yields 0.0249.
	ev := NewEvaluator(fees.New(true, 0.02), fees.Taker, fees.ClassGeneral, 0.01)
	snap := snapshotWith(109100, 0.543281, 0.456719,
		domain.KalshiStrike{Ticker: "K1", Strike: 109000, YesAsk: 0.50, NoAsk: 0.52})

	result := ev.Evaluate(snap, 30)
	require.Len(t, result.Checks, 1)

	check := result.Checks[0]
	// Fees: Kalshi taker $0.53 + gas $0.02 on 30 contracts.
	assert.InDelta(t, 0.55, check.Fees.Total, 1e-9)
	assert.InDelta(t, 0.9567, check.TotalCost, 1e-9)
	assert.InDelta(t, 0.0433, check.GrossMargin, 1e-9)
	assert.InDelta(t, 0.0249, check.NetMargin, 1e-9)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	snap := snapshotWith(109100, 0.52, 0.44,
		domain.KalshiStrike{Ticker: "K1", Strike: 109000, YesAsk: 0.50, NoAsk: 0.52},
		domain.KalshiStrike{Ticker: "K2", Strike: 109500, YesAsk: 0.30, NoAsk: 0.72})

	ev := testEvaluator()
	first := ev.Evaluate(snap, 100)
	second := ev.Evaluate(snap, 100)
	assert.Equal(t, first.Checks, second.Checks)
}
