package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
)

func ladderAt(strikes ...float64) []domain.KalshiStrike {
	out := make([]domain.KalshiStrike, len(strikes))
	for i, s := range strikes {
		out[i] = domain.KalshiStrike{Ticker: "K", Strike: s}
	}
	return out
}

func TestMatchStrikesEmptyLadder(t *testing.T) {
	assert.Empty(t, MatchStrikes(109000, nil))
	assert.Empty(t, MatchStrikes(109000, []domain.KalshiStrike{}))
}

func TestMatchStrikesDistanceOrder(t *testing.T) {
	ladder := ladderAt(108000, 108500, 109000, 109500, 110000)
	matched := MatchStrikes(109100, ladder)

	require.Len(t, matched, 5)
	assert.InDelta(t, 109000, matched[0].Strike.Strike, 1e-9)
	assert.Equal(t, 2, matched[0].Index)
	assert.InDelta(t, 109500, matched[1].Strike.Strike, 1e-9)
	assert.InDelta(t, 108500, matched[2].Strike.Strike, 1e-9)
}

func TestMatchStrikesTieBreaksToLowerStrike(t *testing.T) {
	// 109250 is equidistant from 109000 and 109500.
	matched := MatchStrikes(109250, ladderAt(109000, 109500))
	require.Len(t, matched, 2)
	assert.InDelta(t, 109000, matched[0].Strike.Strike, 1e-9)
}

func TestMatchStrikesWindowClipsLongLadder(t *testing.T) {
	strikes := make([]float64, 25)
	for i := range strikes {
		strikes[i] = 100000 + float64(i)*250
	}
	ladder := ladderAt(strikes...)

	// Closest to the middle strike: exactly 11 rungs survive the window.
	matched := MatchStrikes(103000, ladder)
	require.Len(t, matched, 2*matchWindow+1)
	assert.Equal(t, 12, matched[0].Index)

	// Closest to the first rung: only the forward half exists.
	matched = MatchStrikes(99000, ladder)
	require.Len(t, matched, matchWindow+1)
	assert.Equal(t, 0, matched[0].Index)
}

func TestMatchStrikesPreservesLadderIndices(t *testing.T) {
	ladder := ladderAt(108000, 109000, 110000)
	for _, m := range MatchStrikes(110500, ladder) {
		assert.InDelta(t, ladder[m.Index].Strike, m.Strike.Strike, 1e-9)
	}
}
