package handler

import (
	"io"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/engine"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/fees"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/guard"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/poller"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/trading"
)

type fakeCycles struct {
	cycle     *poller.CycleResult
	ranInline bool
}

func (f *fakeCycles) Latest() *poller.CycleResult { return f.cycle }

func (f *fakeCycles) RunCycle(context.Context) *poller.CycleResult {
	f.ranInline = true
	return f.cycle
}

type fakeDispatcher struct {
	veto        *domain.ExecutionVeto
	order       *domain.TradeOrder
	gotCheck    *domain.ArbitrageCheck
	gotQuantity int
}

func (f *fakeDispatcher) Dispatch(_ context.Context, check *domain.ArbitrageCheck, _ map[string]string, quantity int) (*domain.TradeOrder, error) {
	f.gotCheck = check
	f.gotQuantity = quantity
	if f.veto != nil {
		return nil, f.veto
	}
	return f.order, nil
}

func cycleWithBest() *poller.CycleResult {
	best := domain.ArbitrageCheck{
		KalshiTicker:        "K1",
		NetMargin:           0.03,
		IsArbitrage:         true,
		ProfitableAfterFees: true,
	}
	return &poller.CycleResult{
		At: time.Now(),
		Snapshot: &domain.MarketSnapshot{
			Polymarket: &domain.PolymarketQuote{
				Up:       0.55,
				Down:     0.45,
				TokenIDs: map[string]string{"Down": "d1"},
			},
			Kalshi: &domain.KalshiLadder{
				Strikes: []domain.KalshiStrike{
					{Ticker: "K1", Strike: 109000, YesAsk: 0.50, NoAsk: 0.52},
				},
			},
			Spot: &domain.SpotPrice{Symbol: "BTCUSDT", Price: 109150, HourOpen: 109100},
		},
		Result: domain.EvaluationResult{
			Checks:        []domain.ArbitrageCheck{best},
			Opportunities: []domain.ArbitrageCheck{best},
			Best:          &best,
		},
	}
}

func testEvaluator() *engine.Evaluator {
	return engine.NewEvaluator(fees.New(true, 0), fees.Taker, fees.ClassGeneral, 0.01)
}

func arbitrageHandler(cycles CycleProvider, tc *trading.Controller) *ArbitrageHandler {
	return NewArbitrageHandler(cycles, testEvaluator(), tc, 100, discard())
}

func tradingHandler(tc *trading.Controller, cycles CycleProvider, d Dispatcher) *TradingHandler {
	return NewTradingHandler(tc, guard.New(3), cycles, d, testEvaluator(), 100, discard())
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestGetArbitrageReturnsLatestCycle(t *testing.T) {
	cycles := &fakeCycles{cycle: cycleWithBest()}
	tc := trading.NewController(domain.TradingState{PaperTrading: true})
	h := arbitrageHandler(cycles, tc)

	rec := httptest.NewRecorder()
	h.GetArbitrage(rec, httptest.NewRequest(http.MethodGet, "/arbitrage", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, cycles.ranInline)

	var got arbitrageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Result.Best)
	assert.Equal(t, "K1", got.Result.Best.KalshiTicker)
	assert.Equal(t, 100, got.Contracts)
	assert.True(t, got.State.PaperTrading)
}

func TestGetArbitrageReevaluatesForRequestedContracts(t *testing.T) {
	cycles := &fakeCycles{cycle: cycleWithBest()}
	h := arbitrageHandler(cycles, trading.NewController(domain.TradingState{}))

	rec := httptest.NewRecorder()
	h.GetArbitrage(rec, httptest.NewRequest(http.MethodGet, "/arbitrage?contracts=30", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got arbitrageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 30, got.Contracts)
	require.NotNil(t, got.Result.Best)
	// Kalshi taker for 30 contracts at 0.50 is $0.53, so 0.05 - 0.53/30.
	assert.Equal(t, 30, got.Result.Best.Fees.Contracts)
	assert.InDelta(t, 0.0323, got.Result.Best.NetMargin, 1e-9)
}

func TestGetArbitrageRejectsBadContracts(t *testing.T) {
	h := arbitrageHandler(&fakeCycles{cycle: cycleWithBest()}, trading.NewController(domain.TradingState{}))

	rec := httptest.NewRecorder()
	h.GetArbitrage(rec, httptest.NewRequest(http.MethodGet, "/arbitrage?contracts=lots", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetArbitrageRunsInlineWhenCold(t *testing.T) {
	cycles := &fakeCycles{}
	h := arbitrageHandler(cycles, trading.NewController(domain.TradingState{}))

	rec := httptest.NewRecorder()
	h.GetArbitrage(rec, httptest.NewRequest(http.MethodGet, "/arbitrage", nil))

	assert.True(t, cycles.ranInline)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetStatus(t *testing.T) {
	tc := trading.NewController(domain.TradingState{PaperTrading: true, KalshiReady: true})
	h := tradingHandler(tc, &fakeCycles{}, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/trading/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.State.PaperTrading)
	assert.True(t, got.State.KalshiReady)
}

func TestSetAutoTradeQueryParam(t *testing.T) {
	tc := trading.NewController(domain.TradingState{})
	h := tradingHandler(tc, &fakeCycles{}, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	h.SetAutoTrade(rec, httptest.NewRequest(http.MethodPost, "/trading/auto-trade?enabled=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, tc.State().AutoTradeEnabled)

	rec = httptest.NewRecorder()
	h.SetAutoTrade(rec, httptest.NewRequest(http.MethodPost, "/trading/auto-trade?enabled=false", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, tc.State().AutoTradeEnabled)
}

func TestSetAutoTradeBodyFallback(t *testing.T) {
	tc := trading.NewController(domain.TradingState{})
	h := tradingHandler(tc, &fakeCycles{}, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/trading/auto-trade", strings.NewReader(`{"enabled":true}`))
	h.SetAutoTrade(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, tc.State().AutoTradeEnabled)
}

func TestSetAutoTradeRejectsBadInput(t *testing.T) {
	tc := trading.NewController(domain.TradingState{})
	h := tradingHandler(tc, &fakeCycles{}, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	h.SetAutoTrade(rec, httptest.NewRequest(http.MethodPost, "/trading/auto-trade?enabled=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/trading/auto-trade", strings.NewReader(`{"enabeld":true}`))
	h.SetAutoTrade(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, tc.State().AutoTradeEnabled)
}

func TestExecuteDispatchesBest(t *testing.T) {
	tc := trading.NewController(domain.TradingState{PaperTrading: true})
	d := &fakeDispatcher{order: &domain.TradeOrder{ID: "o1", Status: domain.OrderStatusSimulated}}
	h := tradingHandler(tc, &fakeCycles{cycle: cycleWithBest()}, d)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/trading/execute", strings.NewReader(`{}`))
	h.Execute(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, d.gotQuantity)

	var got domain.TradeOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "o1", got.ID)
}

func TestExecuteHonorsRequestedQuantity(t *testing.T) {
	tc := trading.NewController(domain.TradingState{PaperTrading: true})
	d := &fakeDispatcher{order: &domain.TradeOrder{ID: "o1"}}
	h := tradingHandler(tc, &fakeCycles{cycle: cycleWithBest()}, d)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/trading/execute", strings.NewReader(`{"quantity":25}`))
	h.Execute(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, d.gotQuantity)
}

func TestExecuteCallerSuppliedTrade(t *testing.T) {
	tc := trading.NewController(domain.TradingState{PaperTrading: true})
	d := &fakeDispatcher{order: &domain.TradeOrder{ID: "o1"}}
	h := tradingHandler(tc, &fakeCycles{cycle: cycleWithBest()}, d)

	body := `{"kalshi_strike":109000,"poly_leg":"Down","kalshi_leg":"Yes","poly_cost":0.45,"kalshi_cost":0.50,"quantity":25}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/trading/execute", strings.NewReader(body))
	h.Execute(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, d.gotQuantity)

	require.NotNil(t, d.gotCheck)
	assert.Equal(t, domain.SideDown, d.gotCheck.PolyLeg)
	assert.Equal(t, domain.SideYes, d.gotCheck.KalshiLeg)
	assert.Equal(t, domain.StrategyPolyAbove, d.gotCheck.Type)
	assert.InDelta(t, 0.95, d.gotCheck.TotalCost, 1e-9)
	// Kalshi taker for 25 contracts at 0.50 is $0.44.
	assert.InDelta(t, 0.44, d.gotCheck.Fees.Total, 1e-9)
	assert.InDelta(t, 0.0324, d.gotCheck.NetMargin, 1e-9)
	assert.True(t, d.gotCheck.ProfitableAfterFees)
	// Ticker resolved from the snapshot ladder by strike value.
	assert.Equal(t, "K1", d.gotCheck.KalshiTicker)
}

func TestExecuteRejectsBadLegs(t *testing.T) {
	tc := trading.NewController(domain.TradingState{PaperTrading: true})
	h := tradingHandler(tc, &fakeCycles{cycle: cycleWithBest()}, &fakeDispatcher{})

	body := `{"kalshi_strike":109000,"poly_leg":"Sideways","kalshi_leg":"Yes","poly_cost":0.45,"kalshi_cost":0.50}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/trading/execute", strings.NewReader(body))
	h.Execute(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExecuteVetoReturnsConflict(t *testing.T) {
	tc := trading.NewController(domain.TradingState{PaperTrading: true})
	d := &fakeDispatcher{veto: &domain.ExecutionVeto{Reason: domain.VetoHourBoundary, Detail: "boundary window"}}
	h := tradingHandler(tc, &fakeCycles{cycle: cycleWithBest()}, d)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/trading/execute", strings.NewReader(`{}`))
	h.Execute(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, string(domain.VetoHourBoundary), got["reason"])
}

func TestExecuteNoOpportunity(t *testing.T) {
	tc := trading.NewController(domain.TradingState{PaperTrading: true})
	h := tradingHandler(tc, &fakeCycles{}, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/trading/execute", strings.NewReader(`{}`))
	h.Execute(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	tc := trading.NewController(domain.TradingState{KalshiReady: true, PaperTrading: true})
	h := NewHealthHandler(tc, &fakeCycles{cycle: cycleWithBest()})

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.True(t, got.KalshiReady)
	assert.False(t, got.PolymarketReady)
}
