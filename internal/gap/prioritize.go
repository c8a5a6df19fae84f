package gap

import (
	"math"
	"sort"

	"gapscout/internal/core"
)

// TopOpportunityCount is how many gaps Prioritize flags per run.
const TopOpportunityCount = 5

// CompositeScore weighs relevance and advantage equally and adds a capped volume term.
func CompositeScore(g core.KeywordGap) float64 {
	return g.Relevance*0.4 + g.CompetitiveAdvantage*0.4 + math.Min(100, float64(g.Volume)/10)*0.2
}

// RankedOrder returns indices into gaps sorted by descending composite score. Ties keep input order.
func RankedOrder(gaps []core.KeywordGap) []int {
	order := make([]int, len(gaps))
	scores := make([]float64, len(gaps))
	for i := range gaps {
		order[i] = i
		scores[i] = CompositeScore(gaps[i])
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}

// Prioritize flags the min(5, len(gaps)) highest composite scores as top opportunities. Flags are set
// on the given slice by index; the slice order is left unchanged and returned for convenience.
func Prioritize(gaps []core.KeywordGap) []core.KeywordGap {
	for i := range gaps {
		gaps[i].IsTopOpportunity = false
	}
	order := RankedOrder(gaps)
	for _, idx := range order[:min(TopOpportunityCount, len(order))] {
		gaps[idx].IsTopOpportunity = true
	}
	return gaps
}

// Ranked returns a copy of gaps in composite-score order.
func Ranked(gaps []core.KeywordGap) []core.KeywordGap {
	out := make([]core.KeywordGap, 0, len(gaps))
	for _, idx := range RankedOrder(gaps) {
		out = append(out, gaps[idx])
	}
	return out
}
