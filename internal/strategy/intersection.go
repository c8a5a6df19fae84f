package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"gapscout/internal/core"
	"gapscout/internal/dataforseo"
	"gapscout/internal/gap"
	"gapscout/internal/logger"
)

// IntersectionFetcher returns raw domain-intersection rows where target1 is the competitor and
// target2 the primary domain.
type IntersectionFetcher interface {
	FetchIntersection(ctx context.Context, competitor, primary string, locationCode, limit int) ([]json.RawMessage, error)
}

// Intersection builds gaps from per-competitor domain-intersection queries.
type Intersection struct {
	fetcher     IntersectionFetcher
	concurrency int
}

// NewIntersection creates the intersection strategy. concurrency bounds parallel competitor fetches.
func NewIntersection(fetcher IntersectionFetcher, concurrency int) *Intersection {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Intersection{fetcher: fetcher, concurrency: concurrency}
}

func (s *Intersection) Name() core.StrategyName { return core.StrategyIntersection }

// TryFetch queries every competitor concurrently. A failed competitor is logged and skipped;
// the strategy only fails when every competitor failed.
func (s *Intersection) TryFetch(ctx context.Context, req Request) ([]core.KeywordGap, error) {
	primary, err := gap.ValidateDomain(req.PrimaryDomain)
	if err != nil {
		return nil, err
	}
	competitors, err := gap.ValidateDomains(primary, req.CompetitorDomains)
	if err != nil {
		return nil, err
	}

	per := gap.PerCompetitorTarget(req.TargetGapCount, len(competitors))
	results := make([][]core.KeywordGap, len(competitors))
	errs := make([]error, len(competitors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, competitor := range competitors {
		g.Go(func() error {
			// Over-fetch so filtering still leaves enough rows.
			rows, err := s.fetcher.FetchIntersection(gctx, competitor, primary, req.LocationCode, per*4)
			if err != nil {
				logger.Error("Intersection fetch failed", err, "competitor", competitor)
				errs[i] = fmt.Errorf("%s: %w", competitor, err)
				return nil
			}
			results[i] = IntersectionGaps(rows, primary, competitor, per)
			return nil
		})
	}
	_ = g.Wait()

	var gaps []core.KeywordGap
	failed := 0
	for i := range competitors {
		if errs[i] != nil {
			failed++
			continue
		}
		gaps = append(gaps, results[i]...)
	}
	if failed == len(competitors) {
		return nil, errors.Join(errs...)
	}

	return gap.Prioritize(gaps), nil
}

// IntersectionGaps converts intersection rows into scored gaps for one competitor, keeping at most
// limit rows where the competitor ranks well and the primary does not. Two row shapes are accepted:
// nested (keyword_data, first_domain_serp_element, second_domain_serp_element) and flat
// (keyword, search_volume, target1_rank or rank_absolute or position, target2_rank).
func IntersectionGaps(rows []json.RawMessage, primary, competitor string, limit int) []core.KeywordGap {
	gaps := make([]core.KeywordGap, 0, min(limit, len(rows)))
	for _, raw := range rows {
		if len(gaps) >= limit {
			break
		}
		row := gjson.ParseBytes(raw)

		keyword := dataforseo.FirstOf(row, "keyword_data.keyword", "keyword").String()
		if keyword == "" {
			logger.Warn("Skipping intersection row without keyword", "competitor", competitor)
			continue
		}

		competitorRank := rankOf(row,
			"first_domain_serp_element.rank_group",
			"first_domain_serp_element.rank_absolute",
			"target1_rank",
			"rank_absolute",
			"position")
		primaryRank := rankOf(row,
			"second_domain_serp_element.rank_group",
			"second_domain_serp_element.rank_absolute",
			"target2_rank")

		if !gap.RanksWell(competitorRank) || gap.RanksWell(primaryRank) {
			continue
		}

		rec := core.KeywordRecord{
			Keyword:             keyword,
			MonthlySearchVolume: max(0, int(dataforseo.FirstOf(row, "keyword_data.keyword_info.search_volume", "search_volume").Int())),
			CompetitionIndex:    dataforseo.Difficulty(row),
			PrimaryRank:         primaryRank,
			CompetitorRanks:     map[string]*int{competitor: competitorRank},
		}
		c := competitor
		gaps = append(gaps, gap.NewGap(rec, primary, &c, competitorRank, core.KeywordTypeGap, competitorRank))
	}
	return gaps
}

func rankOf(row gjson.Result, paths ...string) *int {
	r := dataforseo.FirstOf(row, paths...)
	if r.Type != gjson.Number {
		return nil
	}
	return core.IntPtr(int(r.Int()))
}
