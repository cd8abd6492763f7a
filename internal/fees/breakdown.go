package fees

import "github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"

// Breakdown itemizes the total fees of one two-leg trade: Polymarket trading
// fee + gas on one side, Kalshi trading fee on the other. Reported figures
// are rounded to 4 decimals here, exactly once; callers must not re-round.
func (c *Calculator) Breakdown(contracts int, polyPrice, kalshiPrice float64, ot OrderType, class MarketClass) domain.FeeBreakdown {
	polyFee := c.PolymarketFee(contracts, polyPrice)
	kalshiFee := c.KalshiFee(contracts, kalshiPrice, ot, class)
	gas := c.gasFee

	total := polyFee + gas + kalshiFee
	perContract := 0.0
	if contracts > 0 {
		perContract = total / float64(contracts)
	}

	return domain.FeeBreakdown{
		Contracts:     contracts,
		PolymarketFee: round4(polyFee),
		GasFee:        round4(gas),
		KalshiFee:     round4(kalshiFee),
		Total:         round4(total),
		PerContract:   round4(perContract),
	}
}
