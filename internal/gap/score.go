package gap

import (
	"math"
	"strings"

	"gapscout/internal/core"
)

const domainRelevanceBonus = 20

// Scores are the per-pair opportunity metrics.
type Scores struct {
	Relevance            float64
	CompetitiveAdvantage float64
	Opportunity          core.Opportunity
}

// Relevance is 100 minus the competition index, plus a bonus when the keyword contains the primary
// domain's name label, clamped to [0,100].
func Relevance(rec core.KeywordRecord, primaryDomain string) float64 {
	score := 100 - rec.CompetitionIndex
	if label := domainLabel(Normalize(primaryDomain)); label != "" && strings.Contains(strings.ToLower(rec.Keyword), label) {
		score += domainRelevanceBonus
	}
	return clamp(0, 100, score)
}

// CompetitiveAdvantage rewards competitor positions near the top and high volume. A nil rank
// contributes nothing to the rank term.
func CompetitiveAdvantage(volume int, competitorRank *int) float64 {
	rankTerm := 0.0
	if competitorRank != nil {
		rankTerm = math.Round(float64(WellRankedThreshold-*competitorRank) / WellRankedThreshold * 50)
	}
	volumeTerm := math.Min(50, math.Round(float64(volume)/100))
	return clamp(0, 100, rankTerm+volumeTerm)
}

// Tier buckets a keyword into high, medium or low opportunity.
func Tier(volume int, competitionIndex, relevance float64) core.Opportunity {
	switch {
	case volume > 500 && competitionIndex < 30 && relevance > 70:
		return core.OpportunityHigh
	case volume < 100 && competitionIndex > 60 && relevance < 40:
		return core.OpportunityLow
	default:
		return core.OpportunityMedium
	}
}

// Score computes all three metrics for one (record, competitor rank) pair.
func Score(rec core.KeywordRecord, primaryDomain string, competitorRank *int) Scores {
	relevance := Relevance(rec, primaryDomain)
	return Scores{
		Relevance:            relevance,
		CompetitiveAdvantage: CompetitiveAdvantage(rec.MonthlySearchVolume, competitorRank),
		Opportunity:          Tier(rec.MonthlySearchVolume, rec.CompetitionIndex, relevance),
	}
}

// NewGap builds a scored KeywordGap. Volume and difficulty are copied from the record.
func NewGap(rec core.KeywordRecord, primaryDomain string, competitor *string, rank *int, kind core.KeywordType, competitorRank *int) core.KeywordGap {
	s := Score(rec, primaryDomain, competitorRank)
	return core.KeywordGap{
		Keyword:              rec.Keyword,
		Competitor:           copyString(competitor),
		Volume:               rec.MonthlySearchVolume,
		Difficulty:           rec.CompetitionIndex,
		Rank:                 copyInt(rank),
		Opportunity:          s.Opportunity,
		Relevance:            s.Relevance,
		CompetitiveAdvantage: s.CompetitiveAdvantage,
		KeywordType:          kind,
	}
}

func clamp(lo, hi, v float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
