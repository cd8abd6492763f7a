// Package engine holds the decision core: matching the Polymarket threshold
// to nearby Kalshi strikes and evaluating each pairing for a fee-covered
// arbitrage. Everything here is pure computation over a snapshot.
package engine

import (
	"math"
	"sort"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
)

// matchWindow bounds how many ladder positions either side of the closest
// strike are worth evaluating; further rungs are never competitive.
const matchWindow = 5

// MatchedStrike pairs a ladder strike with its original ladder index, which
// the evaluator reports and the best-opportunity tie-break uses.
type MatchedStrike struct {
	Index  int
	Strike domain.KalshiStrike
}

// MatchStrikes returns the ladder strikes worth evaluating against target,
// ordered by absolute distance ascending. The ladder must be sorted by
// strike ascending, which the platform client guarantees. When two strikes
// are equidistant the lower strike ranks first.
func MatchStrikes(target float64, ladder []domain.KalshiStrike) []MatchedStrike {
	if len(ladder) == 0 {
		return nil
	}

	closest := 0
	best := math.Abs(ladder[0].Strike - target)
	for i := 1; i < len(ladder); i++ {
		d := math.Abs(ladder[i].Strike - target)
		if d < best {
			best = d
			closest = i
		}
	}

	lo := max(0, closest-matchWindow)
	hi := min(len(ladder)-1, closest+matchWindow)

	matched := make([]MatchedStrike, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		matched = append(matched, MatchedStrike{Index: i, Strike: ladder[i]})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		di := math.Abs(matched[i].Strike.Strike - target)
		dj := math.Abs(matched[j].Strike.Strike - target)
		if di != dj {
			return di < dj
		}
		return matched[i].Strike.Strike < matched[j].Strike.Strike
	})
	return matched
}
