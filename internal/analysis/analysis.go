// Package analysis is the entry point for keyword gap runs: it validates input, consults the result
// cache and drives the strategy chain.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gapscout/internal/core"
	"gapscout/internal/gap"
	"gapscout/internal/logger"
	"gapscout/internal/metrics"
	"gapscout/internal/store"
	"gapscout/internal/strategy"
)

const (
	// DefaultTargetGapCount is used when a request does not set one.
	DefaultTargetGapCount = 30
	// DefaultLocationCode is the United States location code.
	DefaultLocationCode = 2840
)

// ErrInvalidRequest is returned when a request names strategies that cannot be used.
var ErrInvalidRequest = errors.New("invalid analysis request")

// Request describes one analysis run. Either Records (already merged) or the raw per-domain lists
// may be supplied; raw lists are merged before the chain runs.
type Request struct {
	PrimaryDomain      string                `json:"primaryDomain" yaml:"primaryDomain"`
	CompetitorDomains  []string              `json:"competitorDomains" yaml:"competitorDomains"`
	Records            []core.KeywordRecord  `json:"records,omitempty" yaml:"records,omitempty"`
	PrimaryKeywords    []core.DomainKeyword  `json:"primaryKeywords,omitempty" yaml:"primaryKeywords,omitempty"`
	CompetitorKeywords []core.DomainKeywords `json:"competitorKeywords,omitempty" yaml:"competitorKeywords,omitempty"`
	TargetGapCount     int                   `json:"targetGapCount,omitempty" yaml:"targetGapCount,omitempty"`
	LocationCode       int                   `json:"locationCode,omitempty" yaml:"locationCode,omitempty"`
	StrategyOrder      []string              `json:"strategyOrder,omitempty" yaml:"strategyOrder,omitempty"`
	NoCache            bool                  `json:"noCache,omitempty" yaml:"noCache,omitempty"`
}

// Options configures a Service.
type Options struct {
	Dependencies   strategy.Dependencies
	Order          []core.StrategyName
	Cache          store.ResultCache // nil disables caching
	CacheTTL       time.Duration
	Metrics        *metrics.Metrics
	TargetGapCount int
	LocationCode   int
}

// Service runs keyword gap analyses.
type Service struct {
	deps           strategy.Dependencies
	selector       *strategy.Selector
	cache          store.ResultCache
	cacheTTL       time.Duration
	metrics        *metrics.Metrics
	targetGapCount int
	locationCode   int
	now            func() time.Time
}

// NewService builds the default strategy chain and returns a ready Service.
func NewService(opts Options) (*Service, error) {
	deps := opts.Dependencies
	if opts.Metrics != nil {
		deps.Recorder = opts.Metrics
	}

	order := opts.Order
	if len(order) == 0 {
		order = core.DefaultStrategyOrder
	}
	selector, err := strategy.Build(order, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build strategy chain: %w", err)
	}

	s := &Service{
		deps:           deps,
		selector:       selector,
		cache:          opts.Cache,
		cacheTTL:       opts.CacheTTL,
		metrics:        opts.Metrics,
		targetGapCount: opts.TargetGapCount,
		locationCode:   opts.LocationCode,
		now:            time.Now,
	}
	if s.targetGapCount <= 0 {
		s.targetGapCount = DefaultTargetGapCount
	}
	if s.locationCode <= 0 {
		s.locationCode = DefaultLocationCode
	}
	return s, nil
}

// Strategies returns the default chain order.
func (s *Service) Strategies() []core.StrategyName {
	return s.selector.Names()
}

// Analyze runs one analysis. The result is either non-empty and fully scored or an error; the error
// wraps ErrInvalidDomainInput, ErrNoKeywordData or ErrAllStrategiesExhausted.
func (s *Service) Analyze(ctx context.Context, req Request) (*core.AnalysisResult, error) {
	primary, err := gap.ValidateDomain(req.PrimaryDomain)
	if err != nil {
		s.metrics.ObserveAnalysis("invalid")
		return nil, err
	}
	competitors, err := gap.ValidateDomains(primary, req.CompetitorDomains)
	if err != nil {
		s.metrics.ObserveAnalysis("invalid")
		return nil, err
	}

	target := req.TargetGapCount
	if target <= 0 {
		target = s.targetGapCount
	}
	location := req.LocationCode
	if location <= 0 {
		location = s.locationCode
	}

	records := gap.NormalizeRecords(req.Records)
	if len(records) == 0 && hasRawKeywords(req) {
		records, err = gap.Merge(primary, req.PrimaryKeywords, req.CompetitorKeywords)
		if err != nil {
			s.metrics.ObserveAnalysis("invalid")
			return nil, err
		}
	}

	selector := s.selector
	if len(req.StrategyOrder) > 0 {
		order, err := strategy.ParseOrder(req.StrategyOrder)
		if err != nil {
			s.metrics.ObserveAnalysis("invalid")
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		if selector, err = strategy.Build(order, s.deps); err != nil {
			s.metrics.ObserveAnalysis("invalid")
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}

	key := store.NewKey(primary, competitors, location)
	useCache := s.cache != nil && !req.NoCache && len(req.Records) == 0 && !hasRawKeywords(req)
	if useCache {
		if cached := s.lookup(ctx, key, target); cached != nil {
			s.metrics.ObserveAnalysis("cached")
			return cached, nil
		}
	}

	outcome, err := selector.Run(ctx, strategy.Request{
		PrimaryDomain:     primary,
		CompetitorDomains: competitors,
		Records:           records,
		TargetGapCount:    target,
		LocationCode:      location,
	})
	if err != nil {
		s.metrics.ObserveAnalysis("exhausted")
		logger.Error("Keyword gap analysis failed", err, "primary", primary, "competitors", len(competitors))
		return nil, err
	}

	result := &core.AnalysisResult{
		RunID:             uuid.NewString(),
		PrimaryDomain:     primary,
		CompetitorDomains: competitors,
		LocationCode:      location,
		TargetGapCount:    target,
		Strategy:          outcome.Strategy,
		Provenance:        string(outcome.Strategy),
		Illustrative:      outcome.Illustrative,
		Gaps:              outcome.Gaps,
		Attempts:          outcome.Attempts,
		GeneratedAt:       s.now().UTC(),
	}

	if result.Illustrative {
		logger.Warn("Results are illustrative placeholder data, not real rankings", "run_id", result.RunID)
	} else if useCache {
		if err := s.cache.Put(ctx, key, result, s.cacheTTL); err != nil {
			logger.Warn("Failed to cache analysis result", "run_id", result.RunID, "error", err.Error())
		}
	}

	s.metrics.ObserveAnalysis("ok")
	logger.Info("Keyword gap analysis completed", "run_id", result.RunID, "strategy", string(result.Strategy), "gaps", len(result.Gaps))
	return result, nil
}

// AnalyzeKeywordGaps runs the chain over already-merged records and returns the flagged gaps.
// Gaps produced by the mock strategy have Illustrative set.
func (s *Service) AnalyzeKeywordGaps(ctx context.Context, primaryDomain string, competitorDomains []string, records []core.KeywordRecord, targetGapCount int, strategyOrder ...core.StrategyName) ([]core.KeywordGap, error) {
	order := make([]string, 0, len(strategyOrder))
	for _, name := range strategyOrder {
		order = append(order, string(name))
	}
	result, err := s.Analyze(ctx, Request{
		PrimaryDomain:     primaryDomain,
		CompetitorDomains: competitorDomains,
		Records:           records,
		TargetGapCount:    targetGapCount,
		StrategyOrder:     order,
		NoCache:           true,
	})
	if err != nil {
		return nil, err
	}
	return result.Gaps, nil
}

func (s *Service) lookup(ctx context.Context, key store.Key, target int) *core.AnalysisResult {
	cached, err := s.cache.Get(ctx, key)
	switch {
	case errors.Is(err, store.ErrCacheMiss):
		s.metrics.ObserveCacheLookup(s.cache.Backend(), false)
		return nil
	case err != nil:
		s.metrics.ObserveCacheLookup(s.cache.Backend(), false)
		logger.Warn("Result cache lookup failed", "key", key.String(), "error", err.Error())
		return nil
	case cached.TargetGapCount != target:
		s.metrics.ObserveCacheLookup(s.cache.Backend(), false)
		logger.Debug("Cached result has a different target count", "key", key.String(), "cached", cached.TargetGapCount, "requested", target)
		return nil
	}

	s.metrics.ObserveCacheLookup(s.cache.Backend(), true)
	cached.Cached = true
	logger.Info("Serving cached analysis", "run_id", cached.RunID, "key", key.String())
	return cached
}

func hasRawKeywords(req Request) bool {
	if len(req.PrimaryKeywords) > 0 {
		return true
	}
	for _, c := range req.CompetitorKeywords {
		if len(c.Keywords) > 0 {
			return true
		}
	}
	return false
}
