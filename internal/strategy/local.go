package strategy

import (
	"context"
	"fmt"

	"gapscout/internal/core"
	"gapscout/internal/gap"
)

// Local analyzes already-fetched keyword records without any network calls.
type Local struct{}

// NewLocal creates the local analysis strategy.
func NewLocal() *Local {
	return &Local{}
}

func (l *Local) Name() core.StrategyName { return core.StrategyLocal }

func (l *Local) TryFetch(ctx context.Context, req Request) ([]core.KeywordGap, error) {
	if len(req.Records) == 0 {
		return nil, fmt.Errorf("%w: no merged keyword records supplied", core.ErrNoKeywordData)
	}
	return gap.Analyze(req.Records, req.PrimaryDomain, req.CompetitorDomains, req.TargetGapCount)
}
