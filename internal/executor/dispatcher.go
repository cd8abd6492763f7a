// Package executor is the gate between detection and order placement. Every
// trade request passes the same fail-fast veto chain regardless of origin
// (manual endpoint or auto-trader), and a veto always wins over a profitable
// signal.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/guard"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/trading"
)

type Dispatcher struct {
	guard     *guard.Guard
	trading   *trading.Controller
	paper     OrderPlacer
	live      OrderPlacer
	minMargin float64
	logger    *slog.Logger
	now       func() time.Time
}

func NewDispatcher(g *guard.Guard, tc *trading.Controller, paper, live OrderPlacer, minMargin float64, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		guard:     g,
		trading:   tc,
		paper:     paper,
		live:      live,
		minMargin: minMargin,
		logger:    logger.With("component", "executor"),
		now:       time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Dispatch runs the veto chain and, if every gate passes, places both legs.
// tokenIDs comes from the snapshot the check was computed on, so execution
// uses exactly the markets that were quoted. The veto order is fixed: hour
// boundary, profitability, margin floor, venue readiness — the first failure
// is returned as an *domain.ExecutionVeto and nothing is placed. Readiness
// gates paper trades too: a simulated fill against a venue whose execution
// path is not set up would report a trade that could never have happened.
func (d *Dispatcher) Dispatch(ctx context.Context, check *domain.ArbitrageCheck, tokenIDs map[string]string, quantity int) (*domain.TradeOrder, error) {
	if boundary := d.guard.At(d.now()); boundary.Active {
		return nil, &domain.ExecutionVeto{
			Reason: domain.VetoHourBoundary,
			Detail: fmt.Sprintf("%s (%d min until safe)", boundary.Reason, boundary.MinutesUntilSafe),
		}
	}

	if !check.ProfitableAfterFees {
		return nil, &domain.ExecutionVeto{
			Reason: domain.VetoNotProfitable,
			Detail: fmt.Sprintf("net margin %.4f does not cover fees", check.NetMargin),
		}
	}

	if check.NetMargin < d.minMargin {
		return nil, &domain.ExecutionVeto{
			Reason: domain.VetoBelowMinimum,
			Detail: fmt.Sprintf("net margin %.4f below configured minimum %.4f", check.NetMargin, d.minMargin),
		}
	}

	state := d.trading.State()
	if !state.PolymarketReady {
		return nil, &domain.ExecutionVeto{Reason: domain.VetoVenueNotReady, Detail: "polymarket credentials not configured"}
	}
	if !state.KalshiReady {
		return nil, &domain.ExecutionVeto{Reason: domain.VetoVenueNotReady, Detail: "kalshi credentials not configured"}
	}

	placer := d.live
	if state.PaperTrading {
		placer = d.paper
	}

	at := d.now()
	legs := placer.PlaceLegs(ctx, check, tokenIDs, quantity)

	order := &domain.TradeOrder{
		ID:           newOrderID(at),
		KalshiTicker: check.KalshiTicker,
		KalshiStrike: check.KalshiStrike,
		PolyLeg:      check.PolyLeg,
		KalshiLeg:    check.KalshiLeg,
		PolyCost:     check.PolyCost,
		KalshiCost:   check.KalshiCost,
		TotalCost:    check.TotalCost,
		Quantity:     quantity,
		PaperTrading: state.PaperTrading,
		Legs:         legs,
		Status:       combinedStatus(legs, state.PaperTrading),
		CreatedAt:    at,
	}

	d.trading.RecordTrade(at)
	d.logger.Info("trade dispatched",
		"order_id", order.ID,
		"ticker", order.KalshiTicker,
		"status", order.Status,
		"paper", order.PaperTrading,
		"net_margin", check.NetMargin,
	)
	return order, nil
}
