package domain

import "time"

// OrderStatus tracks a trade order through its (single-shot) lifecycle.
// Orders are terminal once resolved; the dispatcher never retries.
type OrderStatus string

const (
	OrderStatusSimulated OrderStatus = "simulated"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusPartial   OrderStatus = "partial"
	OrderStatusFailed    OrderStatus = "failed"
)

// LegResult is the per-venue outcome of one leg of a two-leg trade.
type LegResult struct {
	Venue   Venue       `json:"venue"`
	OrderID string      `json:"order_id,omitempty"`
	Side    Side        `json:"side"`
	Price   float64     `json:"price"`
	Status  OrderStatus `json:"status"`
	Error   string      `json:"error,omitempty"`
}

// TradeOrder is the record of one dispatched two-leg arbitrage trade,
// simulated or live. Status is the combined terminal status of both legs.
type TradeOrder struct {
	ID           string      `json:"id"`
	KalshiTicker string      `json:"kalshi_ticker"`
	KalshiStrike float64     `json:"kalshi_strike"`
	PolyLeg      Side        `json:"poly_leg"`
	KalshiLeg    Side        `json:"kalshi_leg"`
	PolyCost     float64     `json:"poly_cost"`
	KalshiCost   float64     `json:"kalshi_cost"`
	TotalCost    float64     `json:"total_cost"`
	Quantity     int         `json:"quantity"`
	PaperTrading bool        `json:"paper_trading"`
	Legs         []LegResult `json:"legs"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}
