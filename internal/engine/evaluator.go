package engine

import (
	"math"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/fees"
)

// strikeEqualTolerance absorbs float noise when deciding whether the
// Polymarket threshold and a Kalshi strike coincide.
const strikeEqualTolerance = 1e-9

// Evaluator turns a complete market snapshot into arbitrage checks. It is
// stateless apart from its fee calculator and configuration, so the same
// snapshot always produces the same result.
type Evaluator struct {
	fees      *fees.Calculator
	orderType fees.OrderType
	class     fees.MarketClass
	minMargin float64
}

func NewEvaluator(calc *fees.Calculator, orderType fees.OrderType, class fees.MarketClass, minMargin float64) *Evaluator {
	return &Evaluator{
		fees:      calc,
		orderType: orderType,
		class:     class,
		minMargin: minMargin,
	}
}

// MinMargin is the configured net-margin floor for auto-trading, exposed so
// the dispatcher and poller share one number.
func (e *Evaluator) MinMargin() float64 { return e.minMargin }

// Evaluate checks every matched strike against the snapshot's Polymarket
// quote for the given contract quantity. An incomplete snapshot yields an
// empty result rather than an error; the missing-source detail is already in
// the snapshot itself.
func (e *Evaluator) Evaluate(snap *domain.MarketSnapshot, contracts int) domain.EvaluationResult {
	result := domain.EvaluationResult{
		Checks:        []domain.ArbitrageCheck{},
		Opportunities: []domain.ArbitrageCheck{},
	}
	if snap == nil || !snap.Complete() {
		return result
	}

	threshold := snap.Spot.HourOpen
	for _, m := range MatchStrikes(threshold, snap.Kalshi.Strikes) {
		for _, check := range e.evaluateStrike(snap.Polymarket, m, threshold, contracts) {
			result.Checks = append(result.Checks, check)
			if check.IsArbitrage {
				result.Opportunities = append(result.Opportunities, check)
			}
		}
	}

	for i := range result.Opportunities {
		opp := &result.Opportunities[i]
		if result.Best == nil ||
			opp.NetMargin > result.Best.NetMargin ||
			(opp.NetMargin == result.Best.NetMargin && opp.StrikeIndex < result.Best.StrikeIndex) {
			result.Best = opp
		}
	}
	return result
}

// evaluateStrike produces one check per applicable strategy. A threshold
// strictly above the strike means Poly "Down" and Kalshi "Yes" settle on
// opposite sides of every possible close, and symmetrically below; at
// coincident thresholds both pairings are covered, so both are checked.
func (e *Evaluator) evaluateStrike(poly *domain.PolymarketQuote, m MatchedStrike, threshold float64, contracts int) []domain.ArbitrageCheck {
	diff := threshold - m.Strike.Strike
	switch {
	case diff > strikeEqualTolerance:
		return []domain.ArbitrageCheck{
			e.check(poly, m, downYes, domain.StrategyPolyAbove, contracts),
		}
	case diff < -strikeEqualTolerance:
		return []domain.ArbitrageCheck{
			e.check(poly, m, upNo, domain.StrategyPolyBelow, contracts),
		}
	default:
		return []domain.ArbitrageCheck{
			e.check(poly, m, downYes, domain.StrategyEqual, contracts),
			e.check(poly, m, upNo, domain.StrategyEqual, contracts),
		}
	}
}

// legPair selects which side is bought on each venue.
type legPair int

const (
	downYes legPair = iota // Poly Down + Kalshi Yes
	upNo                   // Poly Up + Kalshi No
)

func (e *Evaluator) check(poly *domain.PolymarketQuote, m MatchedStrike, legs legPair, typ domain.StrategyType, contracts int) domain.ArbitrageCheck {
	var polyLeg, kalshiLeg domain.Side
	var polyCost, kalshiCost float64

	if legs == upNo {
		polyLeg, kalshiLeg = domain.SideUp, domain.SideNo
		polyCost, kalshiCost = poly.Up, m.Strike.NoAsk
	} else {
		polyLeg, kalshiLeg = domain.SideDown, domain.SideYes
		polyCost, kalshiCost = poly.Down, m.Strike.YesAsk
	}

	return e.PriceTrade(domain.ArbitrageCheck{
		StrikeIndex:  m.Index,
		KalshiTicker: m.Strike.Ticker,
		KalshiStrike: m.Strike.Strike,
		KalshiYes:    m.Strike.YesAsk,
		KalshiNo:     m.Strike.NoAsk,
		Type:         typ,
		PolyLeg:      polyLeg,
		KalshiLeg:    kalshiLeg,
		PolyCost:     polyCost,
		KalshiCost:   kalshiCost,
	}, contracts)
}

// PriceTrade completes a check whose legs and costs are already set: total
// cost, margins, fee breakdown, and profitability flags for the given
// quantity. The manual execute path uses it directly, with legs taken from
// the request instead of a snapshot.
//
// Margins are computed on the raw costs and rounded once, at the reporting
// point. The breakdown's Total is cent-exact, so dividing it here recovers
// the unrounded per-contract fee.
func (e *Evaluator) PriceTrade(check domain.ArbitrageCheck, contracts int) domain.ArbitrageCheck {
	totalCost := check.PolyCost + check.KalshiCost
	gross := 1.0 - totalCost
	breakdown := e.fees.Breakdown(contracts, check.PolyCost, check.KalshiCost, e.orderType, e.class)
	perContract := 0.0
	if contracts > 0 {
		perContract = breakdown.Total / float64(contracts)
	}
	net := gross - perContract

	if check.Type == "" {
		if check.PolyLeg == domain.SideDown {
			check.Type = domain.StrategyPolyAbove
		} else {
			check.Type = domain.StrategyPolyBelow
		}
	}
	check.TotalCost = round4(totalCost)
	check.GrossMargin = round4(gross)
	check.Fees = breakdown
	check.NetMargin = round4(net)
	check.IsArbitrage = gross > 0
	check.ProfitableAfterFees = check.IsArbitrage && net > 0
	return check
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
