package gap

import (
	"gapscout/internal/core"
)

// PerCompetitorTarget spreads a global gap target across n competitors, never below one per competitor.
func PerCompetitorTarget(total, competitors int) int {
	if competitors <= 0 {
		return max(1, total)
	}
	per := (total + competitors - 1) / competitors
	return max(1, per)
}

// Allocate scores candidates and keeps at most perCompetitor gaps for each competitor, filling each list
// in classifier order. Shared and missing keywords together are capped at perCompetitor, shared first.
// The result lists gaps competitor by competitor, then shared, then missing.
func Allocate(c Classification, competitorDomains []string, perCompetitor int) []core.KeywordGap {
	if perCompetitor <= 0 {
		return nil
	}

	buckets := make(map[string][]core.KeywordGap, len(competitorDomains))
	order := make([]string, 0, len(competitorDomains))
	for _, raw := range competitorDomains {
		domain := Normalize(raw)
		if _, ok := buckets[domain]; ok {
			continue
		}
		buckets[domain] = make([]core.KeywordGap, 0, perCompetitor)
		order = append(order, domain)
	}

	for _, cand := range c.Gaps {
		bucket, ok := buckets[cand.Competitor]
		if !ok || len(bucket) >= perCompetitor {
			continue
		}
		competitor := cand.Competitor
		buckets[cand.Competitor] = append(bucket, NewGap(cand.Record, c.PrimaryDomain, &competitor, cand.CompetitorRank, core.KeywordTypeGap, cand.CompetitorRank))
	}

	out := make([]core.KeywordGap, 0, len(c.Gaps))
	for _, domain := range order {
		out = append(out, buckets[domain]...)
	}

	// shared and missing draw from one allowance, shared first
	remaining := perCompetitor
	for _, cand := range c.Shared {
		if remaining == 0 {
			break
		}
		out = append(out, NewGap(cand.Record, c.PrimaryDomain, nil, cand.Record.PrimaryRank, core.KeywordTypeShared, cand.CompetitorRank))
		remaining--
	}
	for _, cand := range c.Missing {
		if remaining == 0 {
			break
		}
		out = append(out, NewGap(cand.Record, c.PrimaryDomain, nil, nil, core.KeywordTypeMissing, nil))
		remaining--
	}

	return out
}

// CapPerCompetitor keeps the first perCompetitor gaps of each competitor, preserving order.
// Gaps without a competitor share one aggregate cap.
func CapPerCompetitor(gaps []core.KeywordGap, perCompetitor int) []core.KeywordGap {
	counts := make(map[string]int)
	out := make([]core.KeywordGap, 0, len(gaps))
	for _, g := range gaps {
		key := g.CompetitorName()
		if counts[key] >= perCompetitor {
			continue
		}
		counts[key]++
		out = append(out, g)
	}
	return out
}
