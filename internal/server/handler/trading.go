package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/engine"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/guard"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/poller"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/trading"
)

// Dispatcher routes an approved trade; satisfied by executor.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, check *domain.ArbitrageCheck, tokenIDs map[string]string, quantity int) (*domain.TradeOrder, error)
}

// TradingHandler serves the trading switches and the manual execute path.
type TradingHandler struct {
	trading    *trading.Controller
	guard      *guard.Guard
	cycles     CycleProvider
	dispatcher Dispatcher
	evaluator  *engine.Evaluator
	quantity   int
	logger     *slog.Logger
}

func NewTradingHandler(tc *trading.Controller, g *guard.Guard, cycles CycleProvider, dispatcher Dispatcher, evaluator *engine.Evaluator, defaultQuantity int, logger *slog.Logger) *TradingHandler {
	return &TradingHandler{
		trading:    tc,
		guard:      g,
		cycles:     cycles,
		dispatcher: dispatcher,
		evaluator:  evaluator,
		quantity:   defaultQuantity,
		logger:     logger.With("handler", "trading"),
	}
}

type statusResponse struct {
	State    domain.TradingState      `json:"state"`
	Boundary domain.HourBoundaryState `json:"boundary"`
}

// GetStatus returns the trading switches plus the live guard state.
func (h *TradingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		State:    h.trading.State(),
		Boundary: h.guard.Check(),
	})
}

type autoTradeRequest struct {
	Enabled bool `json:"enabled"`
}

// SetAutoTrade flips the auto-trade switch. The flag is read from the
// `enabled` query parameter; a JSON body works as a fallback.
func (h *TradingHandler) SetAutoTrade(w http.ResponseWriter, r *http.Request) {
	var enabled bool
	if raw := r.URL.Query().Get("enabled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid enabled value: "+raw)
			return
		}
		enabled = v
	} else {
		var req autoTradeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		enabled = req.Enabled
	}

	state := h.trading.SetAutoTrade(enabled)
	h.logger.Info("auto-trade toggled", "enabled", enabled)
	writeJSON(w, http.StatusOK, state)
}

type executeRequest struct {
	KalshiTicker string  `json:"kalshi_ticker"`
	KalshiStrike float64 `json:"kalshi_strike"`
	PolyLeg      string  `json:"poly_leg"`
	KalshiLeg    string  `json:"kalshi_leg"`
	PolyCost     float64 `json:"poly_cost"`
	KalshiCost   float64 `json:"kalshi_cost"`
	Quantity     int     `json:"quantity"`
}

// Execute dispatches a trade through the full veto chain. A body carrying
// strike, legs, and costs is priced and dispatched as given; a body with at
// most a quantity falls back to the current best opportunity. A veto is
// reported as 409 with its reason; there is no forcing past the gates from
// this endpoint.
func (h *TradingHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = h.quantity
	}

	cycle := h.cycles.Latest()
	if cycle == nil {
		cycle = h.cycles.RunCycle(r.Context())
	}

	var check *domain.ArbitrageCheck
	if req.PolyLeg != "" || req.KalshiLeg != "" {
		c, err := h.manualCheck(req, quantity, cycle)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		check = c
	} else {
		if cycle == nil || cycle.Result.Best == nil {
			writeError(w, http.StatusNotFound, "no opportunity available")
			return
		}
		check = cycle.Result.Best
	}

	var tokens map[string]string
	if cycle != nil && cycle.Snapshot != nil && cycle.Snapshot.Polymarket != nil {
		tokens = cycle.Snapshot.Polymarket.TokenIDs
	}

	order, err := h.dispatcher.Dispatch(r.Context(), check, tokens, quantity)
	if err != nil {
		if veto, ok := domain.AsVeto(err); ok {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":  "execution vetoed",
				"reason": string(veto.Reason),
				"detail": veto.Detail,
			})
			return
		}
		h.logger.Error("execution failed", "error", err)
		writeError(w, http.StatusInternalServerError, "execution failed")
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// manualCheck validates and prices a caller-supplied trade. The ticker, when
// absent from the request, is resolved from the latest snapshot's ladder by
// strike value.
func (h *TradingHandler) manualCheck(req executeRequest, quantity int, cycle *poller.CycleResult) (*domain.ArbitrageCheck, error) {
	polyLeg, kalshiLeg := domain.Side(req.PolyLeg), domain.Side(req.KalshiLeg)
	if polyLeg != domain.SideUp && polyLeg != domain.SideDown {
		return nil, fmt.Errorf("poly_leg must be %q or %q", domain.SideUp, domain.SideDown)
	}
	if kalshiLeg != domain.SideYes && kalshiLeg != domain.SideNo {
		return nil, fmt.Errorf("kalshi_leg must be %q or %q", domain.SideYes, domain.SideNo)
	}
	if req.PolyCost <= 0 || req.PolyCost > 1 || req.KalshiCost <= 0 || req.KalshiCost > 1 {
		return nil, fmt.Errorf("leg costs must be decimal prices in (0, 1]")
	}

	check := h.evaluator.PriceTrade(domain.ArbitrageCheck{
		KalshiTicker: req.KalshiTicker,
		KalshiStrike: req.KalshiStrike,
		PolyLeg:      polyLeg,
		KalshiLeg:    kalshiLeg,
		PolyCost:     req.PolyCost,
		KalshiCost:   req.KalshiCost,
	}, quantity)

	if check.KalshiTicker == "" && cycle != nil && cycle.Snapshot != nil && cycle.Snapshot.Kalshi != nil {
		for _, s := range cycle.Snapshot.Kalshi.Strikes {
			if s.Strike == req.KalshiStrike {
				check.KalshiTicker = s.Ticker
				break
			}
		}
	}
	return &check, nil
}
