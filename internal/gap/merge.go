package gap

import (
	"fmt"

	"gapscout/internal/core"
	"gapscout/internal/logger"
)

// recordSet is the keyword-keyed store built during merge. Records keep insertion order.
type recordSet struct {
	records []core.KeywordRecord
	index   map[string]int
}

func newRecordSet(capacity int) *recordSet {
	return &recordSet{
		records: make([]core.KeywordRecord, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

func (s *recordSet) seedPrimary(kw core.DomainKeyword) {
	if i, ok := s.index[kw.Keyword]; ok {
		// A repeated primary row only fills positions still unknown.
		rec := &s.records[i]
		if rec.PrimaryRank == nil {
			rec.PrimaryRank = copyInt(kw.Rank)
			rec.PrimaryURL = copyString(kw.URL)
		}
		return
	}
	s.index[kw.Keyword] = len(s.records)
	s.records = append(s.records, core.KeywordRecord{
		Keyword:             kw.Keyword,
		MonthlySearchVolume: clampVolume(kw.MonthlySearchVolume),
		CompetitionIndex:    clamp(0, 100, kw.CompetitionIndex),
		PrimaryRank:         copyInt(kw.Rank),
		PrimaryURL:          copyString(kw.URL),
		CompetitorRanks:     map[string]*int{},
		CompetitorURLs:      map[string]*string{},
	})
}

func (s *recordSet) addCompetitor(domain string, kw core.DomainKeyword) {
	if i, ok := s.index[kw.Keyword]; ok {
		rec := &s.records[i]
		rec.CompetitorRanks[domain] = copyInt(kw.Rank)
		rec.CompetitorURLs[domain] = copyString(kw.URL)
		return
	}
	s.index[kw.Keyword] = len(s.records)
	s.records = append(s.records, core.KeywordRecord{
		Keyword:             kw.Keyword,
		MonthlySearchVolume: clampVolume(kw.MonthlySearchVolume),
		CompetitionIndex:    clamp(0, 100, kw.CompetitionIndex),
		CompetitorRanks:     map[string]*int{domain: copyInt(kw.Rank)},
		CompetitorURLs:      map[string]*string{domain: copyString(kw.URL)},
	})
}

// Merge joins the primary domain's ranking rows with every competitor's rows into one record per keyword.
// Keyword text is used as-is; casing and whitespace variants stay distinct. Ranks are never invented:
// a missing rank stays nil.
func Merge(primaryDomain string, primaryKeywords []core.DomainKeyword, competitorResults []core.DomainKeywords) ([]core.KeywordRecord, error) {
	if _, err := ValidateDomain(primaryDomain); err != nil {
		return nil, err
	}

	total := len(primaryKeywords)
	for _, result := range competitorResults {
		total += len(result.Keywords)
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no keyword rows for primary or competitors", core.ErrNoKeywordData)
	}

	set := newRecordSet(total)
	for _, kw := range primaryKeywords {
		if kw.Keyword == "" {
			logger.Warn("Skipping primary keyword row without keyword text", "domain", primaryDomain)
			continue
		}
		set.seedPrimary(kw)
	}

	for _, result := range competitorResults {
		domain, err := ValidateDomain(result.Domain)
		if err != nil {
			logger.Warn("Skipping competitor result with invalid domain", "domain", result.Domain, "error", err.Error())
			continue
		}
		for _, kw := range result.Keywords {
			if kw.Keyword == "" {
				logger.Warn("Skipping competitor keyword row without keyword text", "domain", domain)
				continue
			}
			set.addCompetitor(domain, kw)
		}
	}

	if len(set.records) == 0 {
		return nil, fmt.Errorf("%w: every keyword row was malformed", core.ErrNoKeywordData)
	}
	return set.records, nil
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
