// Package hourly derives the identifiers of the current hour's instruments.
// Both venues name their hourly BTC markets after Eastern wall-clock time,
// so everything here resolves through America/New_York regardless of where
// the process runs.
package hourly

import (
	"fmt"
	"strings"
	"time"
)

var eastern = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(fmt.Sprintf("hourly: load America/New_York: %v", err))
	}
	return loc
}

// Instruments identifies the hourly market pair covering a given moment.
type Instruments struct {
	// PolymarketSlug is the Gamma event slug for the up/down market,
	// e.g. "bitcoin-up-or-down-august-31-3pm-et".
	PolymarketSlug string
	// KalshiEventTicker is the strike-ladder event ticker,
	// e.g. "KXBTCD-25AUG3116" (settlement hour, 24h ET).
	KalshiEventTicker string
	// HourStart and HourEnd bound the covered hour in UTC.
	HourStart time.Time
	HourEnd   time.Time
}

// Current returns the instruments for the hour containing t.
func Current(t time.Time) Instruments {
	et := t.In(eastern)
	start := time.Date(et.Year(), et.Month(), et.Day(), et.Hour(), 0, 0, 0, eastern)
	end := start.Add(time.Hour)

	return Instruments{
		PolymarketSlug:    polymarketSlug(start),
		KalshiEventTicker: kalshiEventTicker(end),
		HourStart:         start.UTC(),
		HourEnd:           end.UTC(),
	}
}

// polymarketSlug names the market by the hour it opens, 12-hour clock.
func polymarketSlug(start time.Time) string {
	hour12 := start.Hour() % 12
	if hour12 == 0 {
		hour12 = 12
	}
	meridiem := "am"
	if start.Hour() >= 12 {
		meridiem = "pm"
	}
	return fmt.Sprintf("bitcoin-up-or-down-%s-%d-%d%s-et",
		strings.ToLower(start.Month().String()), start.Day(), hour12, meridiem)
}

// kalshiEventTicker names the event by its settlement time, 24-hour clock.
func kalshiEventTicker(end time.Time) string {
	return fmt.Sprintf("KXBTCD-%02d%s%02d%02d",
		end.Year()%100, strings.ToUpper(end.Month().String()[:3]), end.Day(), end.Hour())
}
