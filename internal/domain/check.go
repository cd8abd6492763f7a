package domain

// StrategyType names the relationship between the Polymarket threshold and
// the Kalshi strike that a check exploits.
type StrategyType string

const (
	// StrategyPolyAbove: Polymarket threshold sits above the Kalshi strike,
	// so Poly Down + Kalshi Yes covers every settlement outcome.
	StrategyPolyAbove StrategyType = "poly_above"
	// StrategyPolyBelow: Polymarket threshold sits below the Kalshi strike,
	// so Poly Up + Kalshi No covers every settlement outcome.
	StrategyPolyBelow StrategyType = "poly_below"
	// StrategyEqual: thresholds coincide; both pairings are evaluated.
	StrategyEqual StrategyType = "equal"
)

// FeeBreakdown itemizes the fees of one two-leg trade in absolute dollars
// for a given contract quantity.
type FeeBreakdown struct {
	Contracts     int     `json:"contracts"`
	PolymarketFee float64 `json:"polymarket_fee"`
	GasFee        float64 `json:"gas_fee"`
	KalshiFee     float64 `json:"kalshi_fee"`
	Total         float64 `json:"total"`
	PerContract   float64 `json:"per_contract"`
}

// ArbitrageCheck is one evaluated strategy for one matched strike. It is
// created fresh every cycle and never persisted or mutated afterwards.
type ArbitrageCheck struct {
	StrikeIndex  int          `json:"strike_index"`
	KalshiTicker string       `json:"kalshi_ticker"`
	KalshiStrike float64      `json:"kalshi_strike"`
	KalshiYes    float64      `json:"kalshi_yes"`
	KalshiNo     float64      `json:"kalshi_no"`
	Type         StrategyType `json:"type"`
	PolyLeg      Side         `json:"poly_leg"`
	KalshiLeg    Side         `json:"kalshi_leg"`
	PolyCost     float64      `json:"poly_cost"`
	KalshiCost   float64      `json:"kalshi_cost"`
	TotalCost    float64      `json:"total_cost"`
	GrossMargin  float64      `json:"gross_margin"`
	Fees         FeeBreakdown `json:"fees"`
	NetMargin    float64      `json:"net_margin"`
	IsArbitrage  bool         `json:"is_arbitrage"`
	// ProfitableAfterFees is the execution-grade flag: gross margin positive
	// and net margin still positive once both venues' fees are paid.
	ProfitableAfterFees bool `json:"is_profitable_after_fees"`
}

// EvaluationResult is one cycle's full output: every check, the profitable
// subset, and the single best opportunity (highest net margin, ties broken by
// earliest strike index).
type EvaluationResult struct {
	Checks        []ArbitrageCheck `json:"checks"`
	Opportunities []ArbitrageCheck `json:"opportunities"`
	Best          *ArbitrageCheck  `json:"best,omitempty"`
}
