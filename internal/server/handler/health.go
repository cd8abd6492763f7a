package handler

import (
	"net/http"
	"time"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/trading"
)

// HealthHandler reports process liveness and data freshness.
type HealthHandler struct {
	trading   *trading.Controller
	cycles    CycleProvider
	startedAt time.Time
}

func NewHealthHandler(tc *trading.Controller, cycles CycleProvider) *HealthHandler {
	return &HealthHandler{
		trading:   tc,
		cycles:    cycles,
		startedAt: time.Now(),
	}
}

type healthResponse struct {
	Status          string  `json:"status"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
	KalshiReady     bool    `json:"kalshi_ready"`
	PolymarketReady bool    `json:"polymarket_ready"`
	PaperTrading    bool    `json:"paper_trading"`
	LastCycleAgeMs  int64   `json:"last_cycle_age_ms,omitempty"`
}

// HealthCheck always answers 200 once the process is serving; degraded data
// shows up as a stale or missing cycle age, not as a failed health check.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	state := h.trading.State()
	resp := healthResponse{
		Status:          "ok",
		UptimeSeconds:   time.Since(h.startedAt).Seconds(),
		KalshiReady:     state.KalshiReady,
		PolymarketReady: state.PolymarketReady,
		PaperTrading:    state.PaperTrading,
	}
	if cycle := h.cycles.Latest(); cycle != nil {
		resp.LastCycleAgeMs = time.Since(cycle.At).Milliseconds()
	}
	writeJSON(w, http.StatusOK, resp)
}
