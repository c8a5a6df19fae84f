package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapscout/internal/core"
	"gapscout/internal/metrics"
)

type stubStrategy struct {
	name  core.StrategyName
	gaps  []core.KeywordGap
	err   error
	calls int
}

func (s *stubStrategy) Name() core.StrategyName { return s.name }

func (s *stubStrategy) TryFetch(ctx context.Context, req Request) ([]core.KeywordGap, error) {
	s.calls++
	return s.gaps, s.err
}

type recordedAttempt struct {
	strategy, outcome string
	gaps              int
}

type stubRecorder struct {
	attempts []recordedAttempt
}

func (r *stubRecorder) ObserveAttempt(strategy, outcome string, elapsed time.Duration, gaps int) {
	r.attempts = append(r.attempts, recordedAttempt{strategy, outcome, gaps})
}

func oneGap(keyword string) []core.KeywordGap {
	return []core.KeywordGap{{Keyword: keyword, Competitor: core.StringPtr("a.com"), KeywordType: core.KeywordTypeGap}}
}

func TestSelectorShortCircuitsOnFirstSuccess(t *testing.T) {
	failing := &stubStrategy{name: core.StrategyLocal, err: core.ErrNoKeywordData}
	empty := &stubStrategy{name: core.StrategyIntersection}
	winner := &stubStrategy{name: core.StrategyAI, gaps: oneGap("widget pricing")}
	never := &stubStrategy{name: core.StrategyMock, gaps: oneGap("placeholder")}
	rec := &stubRecorder{}

	out, err := NewSelector(rec, failing, empty, winner, never).Run(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, core.StrategyAI, out.Strategy)
	assert.False(t, out.Illustrative)
	assert.Equal(t, "widget pricing", out.Gaps[0].Keyword)
	assert.Equal(t, 0, never.calls, "later strategies must not run after a success")

	require.Len(t, out.Attempts, 3)
	assert.Equal(t, core.ErrNoKeywordData.Error(), out.Attempts[0].Error)
	assert.Equal(t, "no gaps", out.Attempts[1].Error)
	assert.Equal(t, 1, out.Attempts[2].Gaps)

	assert.Equal(t, []recordedAttempt{
		{"local", metrics.OutcomeError, 0},
		{"intersection", metrics.OutcomeEmpty, 0},
		{"ai", metrics.OutcomeSuccess, 1},
	}, rec.attempts)
}

func TestSelectorAggregatesAllFailures(t *testing.T) {
	chain := NewSelector(nil,
		&stubStrategy{name: core.StrategyLocal, err: core.ErrNoKeywordData},
		&stubStrategy{name: core.StrategyIntersection, err: core.ErrProviderUnavailable},
		&stubStrategy{name: core.StrategyAI, err: core.ErrMalformedProviderResponse},
		&stubStrategy{name: core.StrategyMock},
	)

	out, err := chain.Run(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAllStrategiesExhausted)
	assert.ErrorIs(t, err, core.ErrProviderUnavailable)
	assert.ErrorIs(t, err, core.ErrMalformedProviderResponse)
	assert.Contains(t, err.Error(), "mock: no gaps")
	assert.Empty(t, out.Gaps)
	assert.Len(t, out.Attempts, 4)
}

func TestSelectorMarksIllustrativeResults(t *testing.T) {
	out, err := NewSelector(nil, NewMock(42)).Run(context.Background(), Request{
		PrimaryDomain:     "example.com",
		CompetitorDomains: []string{"a.com"},
		TargetGapCount:    3,
	})
	require.NoError(t, err)
	assert.Equal(t, core.StrategyMock, out.Strategy)
	assert.True(t, out.Illustrative)
}

func TestSelectorStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &stubStrategy{name: core.StrategyLocal, gaps: oneGap("x")}
	_, err := NewSelector(nil, s).Run(ctx, Request{})
	assert.ErrorIs(t, err, core.ErrAllStrategiesExhausted)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, s.calls)
}

func TestSelectorWithoutStrategies(t *testing.T) {
	_, err := NewSelector(nil).Run(context.Background(), Request{})
	assert.ErrorIs(t, err, core.ErrAllStrategiesExhausted)
}

func TestLocalStrategy(t *testing.T) {
	records := []core.KeywordRecord{{
		Keyword:             "widget pricing",
		MonthlySearchVolume: 1200,
		CompetitionIndex:    25,
		CompetitorRanks:     map[string]*int{"rival.com": core.IntPtr(3)},
	}}

	gaps, err := NewLocal().TryFetch(context.Background(), Request{
		PrimaryDomain:     "https://example.com",
		CompetitorDomains: []string{"rival.com"},
		Records:           records,
		TargetGapCount:    10,
	})
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, 57.0, gaps[0].CompetitiveAdvantage)
	assert.True(t, gaps[0].IsTopOpportunity)

	_, err = NewLocal().TryFetch(context.Background(), Request{PrimaryDomain: "example.com", CompetitorDomains: []string{"a.com"}})
	assert.ErrorIs(t, err, core.ErrNoKeywordData)
}

func TestRequestPerCompetitor(t *testing.T) {
	assert.Equal(t, 15, Request{TargetGapCount: 30, CompetitorDomains: []string{"a.com", "b.com"}}.PerCompetitor())
}

func TestSelectorMarksIllustrativeGaps(t *testing.T) {
	out, err := NewSelector(nil, NewMock(7)).Run(context.Background(), Request{
		PrimaryDomain:     "example.com",
		CompetitorDomains: []string{"a.com", "b.com"},
		TargetGapCount:    4,
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Gaps)
	for _, g := range out.Gaps {
		assert.True(t, g.Illustrative)
	}

	local, err := NewSelector(nil, &stubStrategy{name: core.StrategyLocal, gaps: oneGap("x")}).Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.False(t, local.Gaps[0].Illustrative)
}
