package executor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/platform/kalshi"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/platform/polymarket"
)

// OrderPlacer executes both legs of an approved trade. Implementations
// return one LegResult per venue and never retry; the dispatcher derives
// the combined order status from the pair.
type OrderPlacer interface {
	PlaceLegs(ctx context.Context, check *domain.ArbitrageCheck, tokenIDs map[string]string, quantity int) []domain.LegResult
}

// PaperPlacer simulates immediate fills without touching either venue.
type PaperPlacer struct{}

func (PaperPlacer) PlaceLegs(_ context.Context, check *domain.ArbitrageCheck, _ map[string]string, _ int) []domain.LegResult {
	return []domain.LegResult{
		{
			Venue:   domain.VenuePolymarket,
			OrderID: "paper-" + uuid.NewString(),
			Side:    check.PolyLeg,
			Price:   check.PolyCost,
			Status:  domain.OrderStatusSimulated,
		},
		{
			Venue:   domain.VenueKalshi,
			OrderID: "paper-" + uuid.NewString(),
			Side:    check.KalshiLeg,
			Price:   check.KalshiCost,
			Status:  domain.OrderStatusSimulated,
		},
	}
}

// KalshiTrader places a signed Kalshi order.
type KalshiTrader interface {
	PlaceOrder(ctx context.Context, order kalshi.Order) (kalshi.OrderResult, error)
}

// PolymarketTrader places a signed CLOB order.
type PolymarketTrader interface {
	PostOrder(ctx context.Context, tokenID string, price float64, size int) (polymarket.OrderResult, error)
}

// LivePlacer routes both legs to the venues. Legs are placed sequentially,
// Polymarket first; a failed leg is recorded and the other leg still runs,
// which is what produces a partial position.
type LivePlacer struct {
	Kalshi     KalshiTrader
	Polymarket PolymarketTrader
}

func (p *LivePlacer) PlaceLegs(ctx context.Context, check *domain.ArbitrageCheck, tokenIDs map[string]string, quantity int) []domain.LegResult {
	legs := make([]domain.LegResult, 0, 2)
	legs = append(legs, p.placePolymarket(ctx, check, tokenIDs, quantity))
	legs = append(legs, p.placeKalshi(ctx, check, quantity))
	return legs
}

func (p *LivePlacer) placePolymarket(ctx context.Context, check *domain.ArbitrageCheck, tokenIDs map[string]string, quantity int) domain.LegResult {
	leg := domain.LegResult{
		Venue: domain.VenuePolymarket,
		Side:  check.PolyLeg,
		Price: check.PolyCost,
	}

	tokenID, ok := tokenIDs[string(check.PolyLeg)]
	if !ok {
		leg.Status = domain.OrderStatusFailed
		leg.Error = fmt.Sprintf("no token ID for outcome %s", check.PolyLeg)
		return leg
	}

	res, err := p.Polymarket.PostOrder(ctx, tokenID, check.PolyCost, quantity)
	if err != nil {
		leg.Status = domain.OrderStatusFailed
		leg.Error = err.Error()
		return leg
	}
	leg.OrderID = res.OrderID
	leg.Status = domain.OrderStatusFilled
	return leg
}

func (p *LivePlacer) placeKalshi(ctx context.Context, check *domain.ArbitrageCheck, quantity int) domain.LegResult {
	leg := domain.LegResult{
		Venue: domain.VenueKalshi,
		Side:  check.KalshiLeg,
		Price: check.KalshiCost,
	}

	order := kalshi.Order{
		Ticker: check.KalshiTicker,
		Action: "buy",
		Type:   "limit",
		Count:  int64(quantity),
	}
	cents := int64(math.Round(check.KalshiCost * 100))
	if check.KalshiLeg == domain.SideYes {
		order.Side = "yes"
		order.YesPrice = &cents
	} else {
		order.Side = "no"
		order.NoPrice = &cents
	}

	res, err := p.Kalshi.PlaceOrder(ctx, order)
	if err != nil {
		leg.Status = domain.OrderStatusFailed
		leg.Error = err.Error()
		return leg
	}
	leg.OrderID = res.OrderID
	leg.Status = domain.OrderStatusFilled
	return leg
}

// combinedStatus folds two leg outcomes into one terminal order status.
func combinedStatus(legs []domain.LegResult, paper bool) domain.OrderStatus {
	if paper {
		return domain.OrderStatusSimulated
	}
	failed := 0
	for _, leg := range legs {
		if leg.Status == domain.OrderStatusFailed {
			failed++
		}
	}
	switch failed {
	case 0:
		return domain.OrderStatusFilled
	case len(legs):
		return domain.OrderStatusFailed
	default:
		return domain.OrderStatusPartial
	}
}

// newOrderID stamps dispatched orders. Separate from leg IDs so a paper
// order and its legs never collide.
func newOrderID(at time.Time) string {
	return fmt.Sprintf("%s-%s", at.UTC().Format("20060102T150405"), uuid.NewString()[:8])
}
