package gap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapscout/internal/core"
)

func gapWith(keyword string, relevance, advantage float64, volume int) core.KeywordGap {
	return core.KeywordGap{Keyword: keyword, Relevance: relevance, CompetitiveAdvantage: advantage, Volume: volume}
}

func TestCompositeScore(t *testing.T) {
	g := gapWith("widget pricing", 75, 57, 1200)
	assert.InDelta(t, 75*0.4+57*0.4+100*0.2, CompositeScore(g), 1e-9)

	small := gapWith("tiny", 0, 0, 250)
	assert.InDelta(t, 5.0, CompositeScore(small), 1e-9)
}

func TestPrioritizeFlagsExactlyTopFive(t *testing.T) {
	var gaps []core.KeywordGap
	for i := 0; i < 12; i++ {
		gaps = append(gaps, gapWith(fmt.Sprintf("k%d", i), float64(i*7%50), float64(i*13%60), i*100))
	}
	gaps[3].IsTopOpportunity = true // stale flag from a previous run

	out := Prioritize(gaps)
	require.Len(t, out, 12)
	assert.Equal(t, "k0", out[0].Keyword, "order is unchanged")

	minFlagged, maxUnflagged := 1e9, -1e9
	flagged := 0
	for _, g := range out {
		s := CompositeScore(g)
		if g.IsTopOpportunity {
			flagged++
			minFlagged = min(minFlagged, s)
		} else {
			maxUnflagged = max(maxUnflagged, s)
		}
	}
	assert.Equal(t, 5, flagged)
	assert.GreaterOrEqual(t, minFlagged, maxUnflagged)
}

func TestPrioritizeFewerThanFive(t *testing.T) {
	gaps := []core.KeywordGap{gapWith("a", 1, 1, 1), gapWith("b", 2, 2, 2)}
	Prioritize(gaps)
	assert.True(t, gaps[0].IsTopOpportunity)
	assert.True(t, gaps[1].IsTopOpportunity)

	assert.Empty(t, Prioritize(nil))
}

func TestPrioritizeTiesKeepInputOrder(t *testing.T) {
	var gaps []core.KeywordGap
	for i := 0; i < 8; i++ {
		gaps = append(gaps, gapWith(fmt.Sprintf("tie%d", i), 50, 50, 500))
	}
	Prioritize(gaps)
	for i, g := range gaps {
		assert.Equal(t, i < 5, g.IsTopOpportunity, "gap %d", i)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, RankedOrder(gaps))
}

func TestRanked(t *testing.T) {
	gaps := []core.KeywordGap{gapWith("low", 1, 1, 0), gapWith("high", 90, 90, 5000), gapWith("mid", 50, 50, 100)}
	ranked := Ranked(gaps)
	assert.Equal(t, "high", ranked[0].Keyword)
	assert.Equal(t, "mid", ranked[1].Keyword)
	assert.Equal(t, "low", ranked[2].Keyword)
	assert.Equal(t, "low", gaps[0].Keyword, "input is not reordered")
}
