// Package poller drives the detection pipeline: fetch a snapshot, evaluate
// it, publish the result, and optionally dispatch the best opportunity when
// auto-trading is enabled. One cycle per tick; a cycle that overruns its
// interval causes subsequent ticks to be dropped, never queued.
package poller

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/aggregator"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/engine"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/guard"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/notify"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/trading"
)

// CycleResult is the full output of one detection cycle. The server surfaces
// the latest one over HTTP and WebSocket.
type CycleResult struct {
	At       time.Time                `json:"at"`
	Snapshot *domain.MarketSnapshot   `json:"snapshot"`
	Result   domain.EvaluationResult  `json:"result"`
	Boundary domain.HourBoundaryState `json:"boundary"`
}

// SnapshotSource yields market snapshots; satisfied by aggregator.Aggregator.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*domain.MarketSnapshot, error)
}

// TradeDispatcher routes an approved opportunity; satisfied by
// executor.Dispatcher.
type TradeDispatcher interface {
	Dispatch(ctx context.Context, check *domain.ArbitrageCheck, tokenIDs map[string]string, quantity int) (*domain.TradeOrder, error)
}

type Poller struct {
	source     SnapshotSource
	evaluator  *engine.Evaluator
	guard      *guard.Guard
	trading    *trading.Controller
	dispatcher TradeDispatcher
	notifier   *notify.Notifier

	interval time.Duration
	quantity int
	logger   *slog.Logger

	latest  atomic.Pointer[CycleResult]
	onCycle func(*CycleResult)
}

func New(source SnapshotSource, evaluator *engine.Evaluator, g *guard.Guard, tc *trading.Controller, dispatcher TradeDispatcher, notifier *notify.Notifier, interval time.Duration, quantity int, logger *slog.Logger) *Poller {
	return &Poller{
		source:     source,
		evaluator:  evaluator,
		guard:      g,
		trading:    tc,
		dispatcher: dispatcher,
		notifier:   notifier,
		interval:   interval,
		quantity:   quantity,
		logger:     logger.With("component", "poller"),
	}
}

// OnCycle registers a callback invoked after every cycle, before Run returns
// to the ticker. Must be set before Run starts.
func (p *Poller) OnCycle(fn func(*CycleResult)) {
	p.onCycle = fn
}

// Latest returns the most recent cycle result, or nil before the first
// cycle completes.
func (p *Poller) Latest() *CycleResult {
	return p.latest.Load()
}

// Run blocks until ctx is cancelled, executing one cycle per interval.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Run one cycle up front so the server has data immediately.
	p.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.RunCycle(ctx)
			// A cycle that ran long leaves a stale tick buffered; drop it
			// so cycles stay aligned to the interval instead of bunching.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

// RunCycle executes a single detection cycle with a deadline of one interval.
func (p *Poller) RunCycle(ctx context.Context) *CycleResult {
	cctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	snap, err := p.source.Snapshot(cctx)
	if err != nil {
		p.logger.Error("snapshot failed", "error", err)
		return nil
	}

	cycle := &CycleResult{
		At:       time.Now(),
		Snapshot: snap,
		Result:   p.evaluator.Evaluate(snap, p.quantity),
		Boundary: p.guard.Check(),
	}
	p.latest.Store(cycle)

	if len(snap.Errors) > 0 && p.notifier != nil {
		p.notifier.Degraded(cctx, snap.Errors)
	}

	if best := cycle.Result.Best; best != nil {
		p.logger.Info("opportunity detected",
			"ticker", best.KalshiTicker,
			"strategy", string(best.Type),
			"gross_margin", best.GrossMargin,
			"net_margin", best.NetMargin,
			"profitable_after_fees", best.ProfitableAfterFees,
		)
		if p.notifier != nil && best.ProfitableAfterFees {
			p.notifier.Opportunity(cctx, best)
		}
		p.maybeAutoTrade(cctx, cycle)
	}

	if p.onCycle != nil {
		p.onCycle(cycle)
	}
	return cycle
}

// maybeAutoTrade dispatches the cycle's best opportunity when the auto-trade
// switch is on. The dispatcher runs its own veto chain, so a guard window or
// margin shortfall here is an expected, quiet outcome.
func (p *Poller) maybeAutoTrade(ctx context.Context, cycle *CycleResult) {
	if !p.trading.State().AutoTradeEnabled || p.dispatcher == nil {
		return
	}
	best := cycle.Result.Best
	if !best.ProfitableAfterFees || best.NetMargin < p.evaluator.MinMargin() {
		return
	}

	var tokens map[string]string
	if cycle.Snapshot.Polymarket != nil {
		tokens = cycle.Snapshot.Polymarket.TokenIDs
	}

	order, err := p.dispatcher.Dispatch(ctx, best, tokens, p.quantity)
	if err != nil {
		if veto, ok := domain.AsVeto(err); ok {
			p.logger.Info("auto-trade vetoed", "reason", string(veto.Reason), "detail", veto.Detail)
		} else {
			p.logger.Error("auto-trade failed", "error", err)
		}
		return
	}

	p.logger.Info("auto-trade dispatched", "order_id", order.ID, "status", string(order.Status))
	if p.notifier != nil {
		p.notifier.Trade(ctx, order)
	}
}

var _ SnapshotSource = (*aggregator.Aggregator)(nil)
