// Package domain defines the core value types shared by every component of
// the arbitrage engine: venue quotes, market snapshots, arbitrage checks,
// trading state, and trade orders. Types here carry no behavior beyond small
// accessors; all prices are decimal dollars in [0,1] regardless of the
// venue's native representation.
package domain

import "time"

// Venue identifies one of the two trading venues.
type Venue string

const (
	VenuePolymarket Venue = "polymarket"
	VenueKalshi     Venue = "kalshi"
)

// Side is one purchasable side of a binary market. Polymarket hourly BTC
// markets quote Up/Down; Kalshi strike markets quote Yes/No.
type Side string

const (
	SideUp   Side = "Up"
	SideDown Side = "Down"
	SideYes  Side = "Yes"
	SideNo   Side = "No"
)

// PolymarketQuote is the normalized Polymarket side of a snapshot. Up and
// Down are best-ask prices in decimal dollars. TokenIDs maps outcome name to
// CLOB token ID and is needed again at execution time.
type PolymarketQuote struct {
	Slug      string            `json:"slug"`
	Up        float64           `json:"up"`
	Down      float64           `json:"down"`
	TokenIDs  map[string]string `json:"token_ids,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
	Fresh     bool              `json:"fresh"`
}

// KalshiStrike is one rung of the Kalshi hourly strike ladder. Prices are
// already converted from cents to decimal dollars at the platform boundary.
type KalshiStrike struct {
	Ticker   string  `json:"ticker"`
	Strike   float64 `json:"strike"`
	YesBid   float64 `json:"yes_bid"`
	YesAsk   float64 `json:"yes_ask"`
	NoBid    float64 `json:"no_bid"`
	NoAsk    float64 `json:"no_ask"`
	Subtitle string  `json:"subtitle,omitempty"`
}

// KalshiLadder is the normalized Kalshi side of a snapshot: every strike
// market of the current hourly event, sorted by strike ascending.
type KalshiLadder struct {
	EventTicker string         `json:"event_ticker"`
	Strikes     []KalshiStrike `json:"strikes"`
	FetchedAt   time.Time      `json:"fetched_at"`
	Fresh       bool           `json:"fresh"`
}

// SpotPrice is the Binance reference price pair: the live BTCUSDT price and
// the open of the current hourly candle, which is the threshold both venues
// settle against.
type SpotPrice struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	HourOpen  float64   `json:"hour_open"`
	FetchedAt time.Time `json:"fetched_at"`
}

// MarketSnapshot is the unit the evaluator operates on: the latest quote from
// each venue plus the reference spot price, stamped as one instant. A nil
// field means that source failed this cycle; the matching message is in
// Errors. Quotes are immutable once assembled.
type MarketSnapshot struct {
	Timestamp  time.Time        `json:"timestamp"`
	Polymarket *PolymarketQuote `json:"polymarket,omitempty"`
	Kalshi     *KalshiLadder    `json:"kalshi,omitempty"`
	Spot       *SpotPrice       `json:"spot,omitempty"`
	Errors     []string         `json:"errors"`
}

// Complete reports whether the snapshot carries everything the evaluator
// needs: both venues plus the hourly open that defines the Polymarket
// threshold.
func (s *MarketSnapshot) Complete() bool {
	return s.Polymarket != nil && s.Kalshi != nil && s.Spot != nil && s.Spot.HourOpen > 0
}
