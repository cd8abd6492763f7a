package hourly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentAfternoon(t *testing.T) {
	// 2026-08-31 15:24 ET == 19:24 UTC (EDT).
	at := time.Date(2026, time.August, 31, 19, 24, 0, 0, time.UTC)

	inst := Current(at)
	assert.Equal(t, "bitcoin-up-or-down-august-31-3pm-et", inst.PolymarketSlug)
	assert.Equal(t, "KXBTCD-26AUG3116", inst.KalshiEventTicker)
	assert.Equal(t, time.Date(2026, time.August, 31, 19, 0, 0, 0, time.UTC), inst.HourStart)
	assert.Equal(t, time.Date(2026, time.August, 31, 20, 0, 0, 0, time.UTC), inst.HourEnd)
}

func TestCurrentMidnightEdges(t *testing.T) {
	// Midnight ET: 12am slug, settlement at 01 ET.
	midnight := time.Date(2026, time.January, 5, 0, 30, 0, 0, eastern)
	inst := Current(midnight)
	assert.Equal(t, "bitcoin-up-or-down-january-5-12am-et", inst.PolymarketSlug)
	assert.Equal(t, "KXBTCD-26JAN0501", inst.KalshiEventTicker)

	// Noon ET: 12pm, not 0pm.
	noon := time.Date(2026, time.January, 5, 12, 1, 0, 0, eastern)
	assert.Equal(t, "bitcoin-up-or-down-january-5-12pm-et", Current(noon).PolymarketSlug)
}

func TestCurrentCrossesDayAtElevenPM(t *testing.T) {
	// 11pm ET settles at midnight of the next day.
	at := time.Date(2026, time.March, 31, 23, 45, 0, 0, eastern)
	inst := Current(at)
	assert.Equal(t, "bitcoin-up-or-down-march-31-11pm-et", inst.PolymarketSlug)
	assert.Equal(t, "KXBTCD-26APR0100", inst.KalshiEventTicker)
}

func TestCurrentIsTimezoneIndependent(t *testing.T) {
	utc := time.Date(2026, time.August, 31, 19, 24, 0, 0, time.UTC)
	tokyo := utc.In(time.FixedZone("JST", 9*3600))
	assert.Equal(t, Current(utc), Current(tokyo))
}
