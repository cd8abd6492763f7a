// Package trading owns the process-wide mutable trading state. The
// controller is the single writer: every update replaces the whole state
// snapshot atomically, so concurrent readers never observe a partially
// written state. All other components treat TradingState as read-only.
package trading

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
)

// Controller serializes all mutations of domain.TradingState behind a mutex
// and publishes each new snapshot through an atomic pointer swap.
type Controller struct {
	mu    sync.Mutex // serializes writers
	state atomic.Pointer[domain.TradingState]
}

// NewController creates a Controller with the given initial state.
func NewController(initial domain.TradingState) *Controller {
	c := &Controller{}
	c.state.Store(&initial)
	return c
}

// State returns the current state snapshot. Non-blocking; safe from any
// goroutine.
func (c *Controller) State() domain.TradingState {
	return *c.state.Load()
}

// SetAutoTrade toggles automatic execution. Takes effect when the next
// polling cycle reads the state, never mid-cycle.
func (c *Controller) SetAutoTrade(enabled bool) domain.TradingState {
	return c.update(func(s *domain.TradingState) {
		s.AutoTradeEnabled = enabled
	})
}

// SetReadiness records whether a venue's execution path is usable. A venue
// whose credentials fail to load stays not-ready; detection continues
// regardless.
func (c *Controller) SetReadiness(venue domain.Venue, ready bool) domain.TradingState {
	return c.update(func(s *domain.TradingState) {
		switch venue {
		case domain.VenueKalshi:
			s.KalshiReady = ready
		case domain.VenuePolymarket:
			s.PolymarketReady = ready
		}
	})
}

// RecordTrade stamps the last-trade time. Called only by the execution
// dispatcher after an order reaches a terminal status.
func (c *Controller) RecordTrade(at time.Time) domain.TradingState {
	return c.update(func(s *domain.TradingState) {
		t := at
		s.LastTrade = &t
	})
}

// update copies the current state, applies fn, and swaps the new snapshot in
// whole. Field-by-field mutation of the published value never happens.
func (c *Controller) update(fn func(*domain.TradingState)) domain.TradingState {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := *c.state.Load()
	fn(&next)
	c.state.Store(&next)
	return next
}
