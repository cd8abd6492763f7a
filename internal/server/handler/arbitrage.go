// Package handler contains the HTTP handlers for the arbitrage API.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/engine"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/poller"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/trading"
)

// CycleProvider exposes detection cycles; satisfied by poller.Poller.
type CycleProvider interface {
	Latest() *poller.CycleResult
	RunCycle(ctx context.Context) *poller.CycleResult
}

// ArbitrageHandler serves the current arbitrage picture.
type ArbitrageHandler struct {
	cycles    CycleProvider
	evaluator *engine.Evaluator
	trading   *trading.Controller
	quantity  int
	logger    *slog.Logger
}

func NewArbitrageHandler(cycles CycleProvider, evaluator *engine.Evaluator, tc *trading.Controller, defaultQuantity int, logger *slog.Logger) *ArbitrageHandler {
	return &ArbitrageHandler{
		cycles:    cycles,
		evaluator: evaluator,
		trading:   tc,
		quantity:  defaultQuantity,
		logger:    logger.With("handler", "arbitrage"),
	}
}

type arbitrageResponse struct {
	At        time.Time                `json:"at"`
	Contracts int                      `json:"contracts"`
	Snapshot  *domain.MarketSnapshot   `json:"snapshot"`
	Result    domain.EvaluationResult  `json:"result"`
	State     domain.TradingState      `json:"state"`
	Boundary  domain.HourBoundaryState `json:"boundary"`
}

// GetArbitrage returns the latest detection cycle: the snapshot, every check,
// the best opportunity, and the trading state. A `contracts` query parameter
// re-evaluates the same snapshot for that quantity, since fee breakdowns
// scale with contract count. Before the poller has produced anything a cycle
// is run inline so the endpoint is usable immediately.
func (h *ArbitrageHandler) GetArbitrage(w http.ResponseWriter, r *http.Request) {
	contracts := h.quantity
	if raw := r.URL.Query().Get("contracts"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "contracts must be a positive integer")
			return
		}
		contracts = n
	}

	cycle := h.cycles.Latest()
	if cycle == nil {
		cycle = h.cycles.RunCycle(r.Context())
	}
	if cycle == nil {
		writeError(w, http.StatusServiceUnavailable, "no market data available")
		return
	}

	result := cycle.Result
	if contracts != h.quantity {
		result = h.evaluator.Evaluate(cycle.Snapshot, contracts)
	}

	writeJSON(w, http.StatusOK, arbitrageResponse{
		At:        cycle.At,
		Contracts: contracts,
		Snapshot:  cycle.Snapshot,
		Result:    result,
		State:     h.trading.State(),
		Boundary:  cycle.Boundary,
	})
}
