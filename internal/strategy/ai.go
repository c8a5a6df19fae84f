package strategy

import (
	"context"
	"fmt"
	"sort"

	"gapscout/internal/core"
	"gapscout/internal/gap"
	"gapscout/internal/llm"
	"gapscout/internal/logger"
)

// DefaultSampleSize is how many records are sent to the model when no size is configured.
const DefaultSampleSize = 50

// GapEstimator asks a generative model for estimated gaps and returns its raw JSON.
type GapEstimator interface {
	EstimateGaps(ctx context.Context, req llm.EstimateRequest) ([]byte, error)
}

// AI estimates gaps with a generative model over a bounded sample of keyword records.
type AI struct {
	estimator  GapEstimator
	sampleSize int
}

// NewAI creates the AI-estimated strategy.
func NewAI(estimator GapEstimator, sampleSize int) *AI {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &AI{estimator: estimator, sampleSize: sampleSize}
}

func (s *AI) Name() core.StrategyName { return core.StrategyAI }

// TryFetch treats the model response as untrusted: it is validated, estimates naming unknown
// competitors or ranks outside the top 30 are dropped, and the rest are scored with the same
// formulas as local analysis.
func (s *AI) TryFetch(ctx context.Context, req Request) ([]core.KeywordGap, error) {
	primary, err := gap.ValidateDomain(req.PrimaryDomain)
	if err != nil {
		return nil, err
	}
	competitors, err := gap.ValidateDomains(primary, req.CompetitorDomains)
	if err != nil {
		return nil, err
	}

	sample := SampleRecords(gap.NormalizeRecords(req.Records), s.sampleSize)
	if len(sample) == 0 {
		return nil, fmt.Errorf("%w: no keyword records to sample", core.ErrNoKeywordData)
	}

	raw, err := s.estimator.EstimateGaps(ctx, llm.EstimateRequest{
		PrimaryDomain:     primary,
		CompetitorDomains: competitors,
		Sample:            sample,
		TargetCount:       req.TargetGapCount,
	})
	if err != nil {
		return nil, err
	}

	estimates, err := llm.ParseEstimate(raw)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(competitors))
	for _, c := range competitors {
		known[c] = true
	}
	byKeyword := make(map[string]core.KeywordRecord, len(sample))
	for _, rec := range sample {
		byKeyword[rec.Keyword] = rec
	}

	gaps := make([]core.KeywordGap, 0, len(estimates))
	for _, est := range estimates {
		competitor := gap.Normalize(est.Competitor)
		if !known[competitor] {
			logger.Warn("Dropping estimated gap for unknown competitor", "keyword", est.Keyword, "competitor", est.Competitor)
			continue
		}

		rec, ok := byKeyword[est.Keyword]
		if !ok {
			rec = core.KeywordRecord{Keyword: est.Keyword}
		}
		if est.Volume != nil {
			rec.MonthlySearchVolume = max(0, *est.Volume)
		}
		if est.Difficulty != nil {
			rec.CompetitionIndex = min(100, max(0, *est.Difficulty))
		}

		rank := est.CompetitorRank
		if rank == nil {
			rank = rec.CompetitorRanks[competitor]
		}
		if !gap.RanksWell(rank) {
			logger.Warn("Dropping estimated gap without a top-30 competitor rank", "keyword", est.Keyword, "competitor", competitor)
			continue
		}

		gaps = append(gaps, gap.NewGap(rec, primary, &competitor, rank, core.KeywordTypeGap, rank))
	}

	if len(gaps) == 0 {
		return nil, fmt.Errorf("%w: no usable estimated gaps", core.ErrMalformedProviderResponse)
	}

	gaps = gap.CapPerCompetitor(gaps, gap.PerCompetitorTarget(req.TargetGapCount, len(competitors)))
	return gap.Prioritize(gaps), nil
}

// SampleRecords returns up to n records with the highest volume. Equal volumes keep input order.
func SampleRecords(records []core.KeywordRecord, n int) []core.KeywordRecord {
	sample := make([]core.KeywordRecord, 0, len(records))
	for _, rec := range records {
		if rec.Keyword != "" {
			sample = append(sample, rec)
		}
	}
	sort.SliceStable(sample, func(i, j int) bool {
		return sample[i].MonthlySearchVolume > sample[j].MonthlySearchVolume
	})
	if len(sample) > n {
		sample = sample[:n]
	}
	return sample
}
