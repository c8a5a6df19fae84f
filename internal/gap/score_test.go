package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gapscout/internal/core"
)

func TestScoreWidgetPricing(t *testing.T) {
	rec := record("widget pricing", 1200, 25, nil, map[string]*int{"rival.com": core.IntPtr(3)})
	s := Score(rec, "example.com", core.IntPtr(3))

	assert.Equal(t, 75.0, s.Relevance)
	assert.Equal(t, 57.0, s.CompetitiveAdvantage)
	assert.Equal(t, core.OpportunityHigh, s.Opportunity)
}

func TestRelevanceDomainBonus(t *testing.T) {
	rec := record("Example reviews", 100, 50, nil, nil)
	assert.Equal(t, 70.0, Relevance(rec, "https://www.example.com"))

	easy := record("example login", 100, 5, nil, nil)
	assert.Equal(t, 100.0, Relevance(easy, "example.com"), "relevance is clamped to 100")

	assert.Equal(t, 50.0, Relevance(rec, "other.com"))
}

func TestCompetitiveAdvantage(t *testing.T) {
	assert.Equal(t, 48.0+50.0, CompetitiveAdvantage(100000, core.IntPtr(1)))
	assert.Equal(t, 0.0, CompetitiveAdvantage(0, core.IntPtr(30)))
	assert.Equal(t, 3.0, CompetitiveAdvantage(250, nil), "nil rank contributes nothing")
	assert.Equal(t, 0.0, CompetitiveAdvantage(0, core.IntPtr(90)), "clamped at zero")
}

func TestTier(t *testing.T) {
	assert.Equal(t, core.OpportunityHigh, Tier(501, 29, 71))
	assert.Equal(t, core.OpportunityMedium, Tier(500, 29, 71))
	assert.Equal(t, core.OpportunityLow, Tier(99, 61, 39))
	assert.Equal(t, core.OpportunityMedium, Tier(100, 61, 39))
}

func TestNewGapCopiesValues(t *testing.T) {
	rank := core.IntPtr(7)
	competitor := "a.com"
	rec := record("widgets", 900, 20, nil, map[string]*int{"a.com": rank})

	g := NewGap(rec, "example.com", &competitor, rank, core.KeywordTypeGap, rank)
	*rank = 99
	competitor = "changed"

	assert.Equal(t, 7, *g.Rank)
	assert.Equal(t, "a.com", g.CompetitorName())
	assert.Equal(t, 900, g.Volume)
	assert.Equal(t, 20.0, g.Difficulty)
}
