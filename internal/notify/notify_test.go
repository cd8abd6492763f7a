package notify

import (
	"io"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
)

type recordingSender struct {
	titles []string
	err    error
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	r.titles = append(r.titles, title)
	return r.err
}

func (r *recordingSender) Name() string { return "recorder" }

func TestEventNamesAreStableConfigValues(t *testing.T) {
	// These strings appear in operator config files; renaming a constant
	// silently breaks existing event filters.
	assert.Equal(t, Event("opportunity"), EventOpportunity)
	assert.Equal(t, Event("trade_executed"), EventTradeExecuted)
	assert.Equal(t, Event("trade_partial"), EventTradePartial)
	assert.Equal(t, Event("source_degraded"), EventSourceDegraded)
}

func TestNotifierFiltersByEvent(t *testing.T) {
	rec := &recordingSender{}
	n := New([]Sender{rec}, []Event{EventTradePartial}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	n.Opportunity(context.Background(), &domain.ArbitrageCheck{NetMargin: 0.03})
	assert.Empty(t, rec.titles)

	n.Trade(context.Background(), &domain.TradeOrder{Status: domain.OrderStatusPartial})
	assert.Equal(t, []string{"PARTIAL FILL - one leg open"}, rec.titles)
}

func TestNotifierEmptyFilterAdmitsEverything(t *testing.T) {
	rec := &recordingSender{}
	n := New([]Sender{rec}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	n.Opportunity(context.Background(), &domain.ArbitrageCheck{})
	n.Degraded(context.Background(), []string{"kalshi: timeout"})
	assert.Len(t, rec.titles, 2)
}

func TestNotifierFailingSenderDoesNotBlockOthers(t *testing.T) {
	bad := &recordingSender{err: errors.New("webhook gone")}
	good := &recordingSender{}
	n := New([]Sender{bad, good}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	n.Trade(context.Background(), &domain.TradeOrder{Status: domain.OrderStatusFilled})
	assert.Len(t, bad.titles, 1)
	assert.Len(t, good.titles, 1)
}

func TestDegradedSkipsEmptyErrorList(t *testing.T) {
	rec := &recordingSender{}
	n := New([]Sender{rec}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.Degraded(context.Background(), nil)
	assert.Empty(t, rec.titles)
}
