package analysis

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gapscout/internal/core"
	"gapscout/internal/gap"
	"gapscout/internal/logger"
)

// RankedKeywordsFetcher returns the keywords a single domain ranks for.
type RankedKeywordsFetcher interface {
	RankedKeywords(ctx context.Context, domain string, locationCode, limit int) ([]core.DomainKeyword, error)
}

// FetchRecords pulls ranked keywords for the primary and every competitor concurrently and merges
// them into keyword records. A failing competitor is logged and skipped; a failing primary fetch
// fails the whole call.
func FetchRecords(ctx context.Context, fetcher RankedKeywordsFetcher, primaryDomain string, competitorDomains []string, locationCode, limit, concurrency int) ([]core.KeywordRecord, error) {
	primary, err := gap.ValidateDomain(primaryDomain)
	if err != nil {
		return nil, err
	}
	competitors, err := gap.ValidateDomains(primary, competitorDomains)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	var primaryKeywords []core.DomainKeyword
	results := make([]core.DomainKeywords, len(competitors))
	errs := make([]error, len(competitors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	g.Go(func() error {
		kws, err := fetcher.RankedKeywords(gctx, primary, locationCode, limit)
		if err != nil {
			return fmt.Errorf("primary %s: %w", primary, err)
		}
		primaryKeywords = kws
		return nil
	})
	for i, competitor := range competitors {
		g.Go(func() error {
			kws, err := fetcher.RankedKeywords(gctx, competitor, locationCode, limit)
			if err != nil {
				logger.Error("Ranked keywords fetch failed", err, "competitor", competitor)
				errs[i] = err
				return nil
			}
			results[i] = core.DomainKeywords{Domain: competitor, Keywords: kws}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	competitorResults := make([]core.DomainKeywords, 0, len(competitors))
	for i := range competitors {
		if errs[i] == nil {
			competitorResults = append(competitorResults, results[i])
		}
	}
	if len(competitorResults) == 0 {
		return nil, fmt.Errorf("every competitor fetch failed: %w", errors.Join(errs...))
	}

	return gap.Merge(primary, primaryKeywords, competitorResults)
}
