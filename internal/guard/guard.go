// Package guard implements the hour-boundary execution gate. Both venues
// roll their hourly BTC markets at the top of the hour; quotes fetched
// across that instant reference two different underlying instruments, and
// comparing them produces spurious arbitrage signals. The guard blocks
// execution inside a symmetric window around each hour boundary.
package guard

import (
	"fmt"
	"time"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
)

// Guard computes the hour-boundary state from wall-clock time. It is
// stateless: every call derives the answer from the instant it is given.
type Guard struct {
	window time.Duration // blocked within this distance of the boundary
	now    func() time.Time
}

// New creates a Guard blocking execution within windowMinutes before or
// after the top of the hour.
func New(windowMinutes int) *Guard {
	return &Guard{
		window: time.Duration(windowMinutes) * time.Minute,
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Check returns the boundary state for the current instant. While blocked,
// MinutesUntilSafe counts whole minutes (rounded up) until the window ends.
func (g *Guard) Check() domain.HourBoundaryState {
	return g.At(g.now())
}

// At returns the boundary state for an arbitrary instant.
func (g *Guard) At(t time.Time) domain.HourBoundaryState {
	hour := t.Truncate(time.Hour)
	sinceTop := t.Sub(hour)
	untilTop := time.Hour - sinceTop

	switch {
	case sinceTop < g.window:
		// Just past a boundary: unsafe until the window after the hour ends.
		remaining := g.window - sinceTop
		return domain.HourBoundaryState{
			Active:           true,
			MinutesUntilSafe: ceilMinutes(remaining),
			Reason:           fmt.Sprintf("within %s after the hour boundary; markets just rolled over", g.window),
		}
	case untilTop <= g.window:
		// Approaching the next boundary: unsafe through the boundary and the
		// window beyond it.
		remaining := untilTop + g.window
		return domain.HourBoundaryState{
			Active:           true,
			MinutesUntilSafe: ceilMinutes(remaining),
			Reason:           fmt.Sprintf("within %s before the hour boundary; markets about to roll over", g.window),
		}
	default:
		return domain.HourBoundaryState{Active: false}
	}
}

func ceilMinutes(d time.Duration) int {
	m := int(d / time.Minute)
	if d%time.Minute != 0 {
		m++
	}
	return m
}
