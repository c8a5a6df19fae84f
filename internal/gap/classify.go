package gap

import (
	"gapscout/internal/core"
	"gapscout/internal/logger"
)

// WellRankedThreshold is the worst position that still counts as ranking well.
const WellRankedThreshold = 30

// MissingVolumeThreshold is the volume a keyword nobody ranks for must exceed to count as missing.
const MissingVolumeThreshold = 100

// Candidate is a classified keyword awaiting scoring. Competitor and CompetitorRank are only set for gaps;
// shared candidates carry the best well-ranked competitor position in CompetitorRank.
type Candidate struct {
	Record         core.KeywordRecord
	Competitor     string
	CompetitorRank *int
}

// Classification holds the three disjoint candidate sequences, in record order.
type Classification struct {
	PrimaryDomain string
	Gaps          []Candidate
	Shared        []Candidate
	Missing       []Candidate
}

// RanksWell reports whether a position is inside the top WellRankedThreshold results.
func RanksWell(rank *int) bool {
	return rank != nil && *rank >= 1 && *rank <= WellRankedThreshold
}

// Classify sorts records into gap, shared and missing candidates. Gaps are evaluated per
// (record, competitor) pair; shared and missing are per record. Records without keyword text are skipped.
// Competitor map keys are normalized before lookup.
func Classify(records []core.KeywordRecord, primaryDomain string, competitorDomains []string) Classification {
	records = NormalizeRecords(records)
	out := Classification{PrimaryDomain: Normalize(primaryDomain)}

	competitors := make([]string, len(competitorDomains))
	for i, c := range competitorDomains {
		competitors[i] = Normalize(c)
	}

	for _, rec := range records {
		if rec.Keyword == "" {
			logger.Warn("Skipping keyword record without keyword text")
			continue
		}

		primaryWell := RanksWell(rec.PrimaryRank)
		var best *int

		for _, competitor := range competitors {
			rank := rec.CompetitorRanks[competitor]
			if !RanksWell(rank) {
				continue
			}
			if best == nil || *rank < *best {
				best = rank
			}
			if !primaryWell {
				out.Gaps = append(out.Gaps, Candidate{Record: rec, Competitor: competitor, CompetitorRank: rank})
			}
		}

		switch {
		case primaryWell && best != nil:
			out.Shared = append(out.Shared, Candidate{Record: rec, CompetitorRank: best})
		case !primaryWell && best == nil && rec.MonthlySearchVolume > MissingVolumeThreshold:
			out.Missing = append(out.Missing, Candidate{Record: rec})
		}
	}

	return out
}
