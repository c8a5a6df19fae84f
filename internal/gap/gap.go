// Package gap implements keyword gap analysis: domain normalization, merging of per-domain ranking rows,
// classification, opportunity scoring, per-competitor allocation and top-opportunity selection.
package gap

import (
	"gapscout/internal/core"
)

// Analyze runs classification, scoring, allocation and prioritization over merged records.
// targetGapCount is the global target; it is spread evenly across competitors.
func Analyze(records []core.KeywordRecord, primaryDomain string, competitorDomains []string, targetGapCount int) ([]core.KeywordGap, error) {
	primary, err := ValidateDomain(primaryDomain)
	if err != nil {
		return nil, err
	}
	competitors, err := ValidateDomains(primary, competitorDomains)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, core.ErrNoKeywordData
	}

	classification := Classify(records, primary, competitors)
	gaps := Allocate(classification, competitors, PerCompetitorTarget(targetGapCount, len(competitors)))
	return Prioritize(gaps), nil
}
