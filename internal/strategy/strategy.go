// Package strategy runs the ordered fallback chain of keyword gap data sources.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gapscout/internal/core"
	"gapscout/internal/gap"
	"gapscout/internal/logger"
	"gapscout/internal/metrics"
)

// Request is everything a strategy may need to produce gaps.
type Request struct {
	PrimaryDomain     string
	CompetitorDomains []string
	Records           []core.KeywordRecord
	TargetGapCount    int
	LocationCode      int
}

// PerCompetitor spreads the global target across competitors.
func (r Request) PerCompetitor() int {
	return gap.PerCompetitorTarget(r.TargetGapCount, len(r.CompetitorDomains))
}

// GapStrategy is one data source in the fallback chain. An empty result with a nil error means
// the strategy had nothing to offer.
type GapStrategy interface {
	Name() core.StrategyName
	TryFetch(ctx context.Context, req Request) ([]core.KeywordGap, error)
}

// IllustrativeStrategy is implemented by strategies that produce placeholder data.
type IllustrativeStrategy interface {
	Illustrative() bool
}

// Recorder receives one observation per strategy attempt.
type Recorder interface {
	ObserveAttempt(strategy, outcome string, elapsed time.Duration, gaps int)
}

// Outcome is the result of the first strategy that produced gaps.
type Outcome struct {
	Strategy     core.StrategyName
	Illustrative bool
	Gaps         []core.KeywordGap
	Attempts     []core.Attempt
}

// Selector tries strategies in order until one yields at least one gap.
type Selector struct {
	strategies []GapStrategy
	recorder   Recorder
}

// NewSelector creates a selector over strategies in the given order. recorder may be nil.
func NewSelector(recorder Recorder, strategies ...GapStrategy) *Selector {
	return &Selector{strategies: strategies, recorder: recorder}
}

// Names returns the strategy order.
func (s *Selector) Names() []core.StrategyName {
	names := make([]core.StrategyName, 0, len(s.strategies))
	for _, st := range s.strategies {
		names = append(names, st.Name())
	}
	return names
}

// Run executes the chain sequentially. Individual failures are logged and recorded; only when every
// strategy fails or returns nothing does Run return an error wrapping ErrAllStrategiesExhausted and
// each attempt's error.
func (s *Selector) Run(ctx context.Context, req Request) (*Outcome, error) {
	var (
		attempts []core.Attempt
		errs     []error
	)

	for _, st := range s.strategies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		name := st.Name()
		start := time.Now()
		gaps, err := st.TryFetch(ctx, req)
		elapsed := time.Since(start)

		attempt := core.Attempt{Strategy: name, Duration: elapsed}
		switch {
		case err != nil:
			attempt.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			s.observe(name, metrics.OutcomeError, elapsed, 0)
			logger.Error("Gap strategy failed", err, "strategy", string(name), "duration_ms", elapsed.Milliseconds())
		case len(gaps) == 0:
			attempt.Error = "no gaps"
			errs = append(errs, fmt.Errorf("%s: no gaps", name))
			s.observe(name, metrics.OutcomeEmpty, elapsed, 0)
			logger.Warn("Gap strategy returned no gaps", "strategy", string(name), "duration_ms", elapsed.Milliseconds())
		default:
			attempt.Gaps = len(gaps)
			attempts = append(attempts, attempt)
			s.observe(name, metrics.OutcomeSuccess, elapsed, len(gaps))
			logger.Info("Gap strategy succeeded", "strategy", string(name), "gaps", len(gaps), "duration_ms", elapsed.Milliseconds())

			illustrative := false
			if ill, ok := st.(IllustrativeStrategy); ok && ill.Illustrative() {
				illustrative = true
				for i := range gaps {
					gaps[i].Illustrative = true
				}
			}
			return &Outcome{Strategy: name, Illustrative: illustrative, Gaps: gaps, Attempts: attempts}, nil
		}
		attempts = append(attempts, attempt)
	}

	if len(s.strategies) == 0 {
		errs = append(errs, errors.New("no strategies configured"))
	}
	return &Outcome{Attempts: attempts}, fmt.Errorf("%w: %w", core.ErrAllStrategiesExhausted, errors.Join(errs...))
}

func (s *Selector) observe(name core.StrategyName, outcome string, elapsed time.Duration, gaps int) {
	if s.recorder != nil {
		s.recorder.ObserveAttempt(string(name), outcome, elapsed, gaps)
	}
}
