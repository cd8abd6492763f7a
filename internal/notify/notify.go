// Package notify pushes operator alerts for the events worth waking up for:
// a fee-covered opportunity, a dispatched trade, a partially filled pair.
// Channels are fan-out; one failing channel never blocks the others.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
)

// Event classifies an alert so operators can subscribe selectively.
type Event string

const (
	EventOpportunity    Event = "opportunity"
	EventTradeExecuted  Event = "trade_executed"
	EventTradePartial   Event = "trade_partial"
	EventSourceDegraded Event = "source_degraded"
)

// Sender is one delivery channel.
type Sender interface {
	Send(ctx context.Context, title, body string) error
	Name() string
}

// Notifier fans alerts out to every configured sender, filtered by event
// type. An empty filter admits everything.
type Notifier struct {
	senders []Sender
	allowed map[Event]bool
	logger  *slog.Logger
}

func New(senders []Sender, events []Event, logger *slog.Logger) *Notifier {
	allowed := make(map[Event]bool, len(events))
	for _, e := range events {
		allowed[e] = true
	}
	return &Notifier{
		senders: senders,
		allowed: allowed,
		logger:  logger.With("component", "notify"),
	}
}

// Opportunity alerts on the best check of a cycle.
func (n *Notifier) Opportunity(ctx context.Context, check *domain.ArbitrageCheck) {
	body := fmt.Sprintf(
		"strike $%.0f (%s)\nlegs: Poly %s @ %.2f + Kalshi %s @ %.2f\nnet margin %.4f/contract",
		check.KalshiStrike, check.KalshiTicker,
		check.PolyLeg, check.PolyCost, check.KalshiLeg, check.KalshiCost,
		check.NetMargin,
	)
	n.send(ctx, EventOpportunity, "Arbitrage opportunity", body)
}

// Trade alerts on a dispatched order, routing partial fills to their own
// event type since those need manual attention.
func (n *Notifier) Trade(ctx context.Context, order *domain.TradeOrder) {
	event := EventTradeExecuted
	title := "Trade executed"
	if order.Status == domain.OrderStatusPartial {
		event = EventTradePartial
		title = "PARTIAL FILL - one leg open"
	}

	mode := "live"
	if order.PaperTrading {
		mode = "paper"
	}
	body := fmt.Sprintf("order %s (%s)\n%s: %d contracts at total cost %.2f\nstatus: %s",
		order.ID, mode, order.KalshiTicker, order.Quantity, order.TotalCost, order.Status)
	n.send(ctx, event, title, body)
}

// Degraded alerts when snapshot sources start failing.
func (n *Notifier) Degraded(ctx context.Context, errs []string) {
	if len(errs) == 0 {
		return
	}
	n.send(ctx, EventSourceDegraded, "Market data degraded", strings.Join(errs, "\n"))
}

func (n *Notifier) send(ctx context.Context, event Event, title, body string) {
	if len(n.allowed) > 0 && !n.allowed[event] {
		return
	}
	for _, s := range n.senders {
		if err := s.Send(ctx, title, body); err != nil {
			n.logger.Warn("notification failed", "sender", s.Name(), "event", string(event), "error", err)
		}
	}
}
