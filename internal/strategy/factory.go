package strategy

import (
	"fmt"
	"strings"

	"gapscout/internal/core"
	"gapscout/internal/logger"
)

// Dependencies are the provider clients available to the chain. A nil Fetcher or Estimator leaves
// the matching strategy out of the chain.
type Dependencies struct {
	Fetcher     IntersectionFetcher
	Estimator   GapEstimator
	Concurrency int
	SampleSize  int
	MockSeed    int64
	Recorder    Recorder
}

// ParseOrder converts configured names into strategy names, rejecting unknown ones.
// An empty list yields the default order.
func ParseOrder(names []string) ([]core.StrategyName, error) {
	if len(names) == 0 {
		return append([]core.StrategyName(nil), core.DefaultStrategyOrder...), nil
	}
	order := make([]core.StrategyName, 0, len(names))
	seen := make(map[core.StrategyName]bool, len(names))
	for _, raw := range names {
		name := core.StrategyName(strings.ToLower(strings.TrimSpace(raw)))
		switch name {
		case core.StrategyLocal, core.StrategyIntersection, core.StrategyAI, core.StrategyMock:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, raw)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		order = append(order, name)
	}
	return order, nil
}

// Build creates a selector for the given order. Strategies whose provider is not configured are
// skipped with a log line.
func Build(order []core.StrategyName, deps Dependencies) (*Selector, error) {
	strategies := make([]GapStrategy, 0, len(order))
	for _, name := range order {
		switch name {
		case core.StrategyLocal:
			strategies = append(strategies, NewLocal())
		case core.StrategyIntersection:
			if deps.Fetcher == nil {
				logger.Info("Skipping intersection strategy: DataForSEO is not configured")
				continue
			}
			strategies = append(strategies, NewIntersection(deps.Fetcher, deps.Concurrency))
		case core.StrategyAI:
			if deps.Estimator == nil {
				logger.Info("Skipping ai strategy: Gemini is not configured")
				continue
			}
			strategies = append(strategies, NewAI(deps.Estimator, deps.SampleSize))
		case core.StrategyMock:
			strategies = append(strategies, NewMock(deps.MockSeed))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, name)
		}
	}
	if len(strategies) == 0 {
		return nil, ErrNoUsableStrategies
	}
	return NewSelector(deps.Recorder, strategies...), nil
}
