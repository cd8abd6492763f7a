package domain

import "time"

// HourBoundaryState reports whether execution is currently blocked by
// proximity to the top-of-hour market rollover. Recomputed from the clock
// every cycle; it carries no memory of previous states.
type HourBoundaryState struct {
	Active           bool   `json:"active"`
	MinutesUntilSafe int    `json:"minutes_until_safe"`
	Reason           string `json:"reason,omitempty"`
}

// TradingState is the process-wide trading configuration and readiness
// snapshot. It is owned by the trading controller and replaced as a whole on
// every update; everyone else reads it as an immutable value.
type TradingState struct {
	AutoTradeEnabled bool       `json:"auto_trade_enabled"`
	KalshiReady      bool       `json:"kalshi_ready"`
	PolymarketReady  bool       `json:"polymarket_ready"`
	PaperTrading     bool       `json:"paper_trading"`
	LastTrade        *time.Time `json:"last_auto_trade,omitempty"`
}
