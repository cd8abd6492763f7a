package kalshi

import (
	"regexp"
	"strconv"
	"strings"
)

// Market is the raw market DTO as returned by the Kalshi REST API. Prices
// are integer cents; they are converted to decimal dollars in EventLadder
// and never escape this package in native form.
type Market struct {
	Ticker         string  `json:"ticker"`
	EventTicker    string  `json:"event_ticker"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	Status         string  `json:"status"` // "open", "closed", "settled"
	YesBid         float64 `json:"yes_bid"`
	YesAsk         float64 `json:"yes_ask"`
	NoBid          float64 `json:"no_bid"`
	NoAsk          float64 `json:"no_ask"`
	LastPrice      float64 `json:"last_price"`
	Volume         int64   `json:"volume"`
	OpenInterest   int64   `json:"open_interest"`
	StrikeType     string  `json:"strike_type"`
	FloorStrike    float64 `json:"floor_strike"`
	CapStrike      float64 `json:"cap_strike"`
	ExpirationTime string  `json:"expiration_time"`
	CloseTime      string  `json:"close_time"`
}

// subtitleStrike matches the dollar threshold in market subtitles such as
// "$93,250 or above".
var subtitleStrike = regexp.MustCompile(`\$([\d,]+(?:\.\d+)?)`)

// StrikeValue returns the market's strike threshold in dollars. It prefers
// the structured floor_strike field and falls back to parsing the subtitle.
func (m Market) StrikeValue() (float64, bool) {
	if m.FloorStrike > 0 {
		return m.FloorStrike, true
	}
	match := subtitleStrike.FindStringSubmatch(m.Subtitle)
	if match == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Order is a limit order request. Prices are integer cents (1-99); exactly
// one of YesPrice/NoPrice is set depending on Side.
type Order struct {
	Ticker   string `json:"ticker"`
	Action   string `json:"action"` // "buy" or "sell"
	Side     string `json:"side"`   // "yes" or "no"
	Type     string `json:"type"`   // "limit"
	Count    int64  `json:"count"`
	YesPrice *int64 `json:"yes_price,omitempty"`
	NoPrice  *int64 `json:"no_price,omitempty"`
}

// OrderResponse is the API response after placing an order.
type OrderResponse struct {
	Order struct {
		OrderID string `json:"order_id"`
		Ticker  string `json:"ticker"`
		Status  string `json:"status"` // "resting", "canceled", "executed", "pending"
	} `json:"order"`
}

// OrderResult is the condensed outcome handed back to the dispatcher.
type OrderResult struct {
	OrderID string
	Status  string
}

// ErrorResponse is the standard Kalshi API error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
