package strategy

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"gapscout/internal/core"
	"gapscout/internal/gap"
)

var mockKeywordTemplates = []string{
	"%s pricing",
	"%s alternatives",
	"best %s tools",
	"%s reviews",
	"how to choose %s",
	"%s for small business",
	"%s comparison",
	"%s guide",
	"free %s",
	"%s checklist",
	"%s examples",
	"%s vs competitors",
	"cheap %s",
	"%s tutorial",
	"%s software",
	"%s near me",
}

// Mock generates placeholder gaps evenly distributed across competitors. Its output is
// illustrative only and is marked as such on the analysis result.
type Mock struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMock creates the mock strategy. A zero seed uses the current time.
func NewMock(seed int64) *Mock {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Mock{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))}
}

func (m *Mock) Name() core.StrategyName { return core.StrategyMock }

func (m *Mock) Illustrative() bool { return true }

func (m *Mock) TryFetch(ctx context.Context, req Request) ([]core.KeywordGap, error) {
	primary, err := gap.ValidateDomain(req.PrimaryDomain)
	if err != nil {
		return nil, err
	}
	competitors, err := gap.ValidateDomains(primary, req.CompetitorDomains)
	if err != nil {
		return nil, err
	}

	topic := mockTopic(primary)
	per := gap.PerCompetitorTarget(req.TargetGapCount, len(competitors))

	m.mu.Lock()
	defer m.mu.Unlock()

	gaps := make([]core.KeywordGap, 0, per*len(competitors))
	used := make(map[string]bool)
	for ci, competitor := range competitors {
		for i := 0; i < per; i++ {
			keyword := fmt.Sprintf(mockKeywordTemplates[(ci+i*len(competitors))%len(mockKeywordTemplates)], topic)
			if used[keyword] {
				keyword = fmt.Sprintf("%s %d", keyword, i+1)
			}
			used[keyword] = true

			rank := 1 + m.rng.IntN(gap.WellRankedThreshold)
			rec := core.KeywordRecord{
				Keyword:             keyword,
				MonthlySearchVolume: 100 + m.rng.IntN(4900),
				CompetitionIndex:    float64(10 + m.rng.IntN(70)),
				CompetitorRanks:     map[string]*int{competitor: core.IntPtr(rank)},
			}
			c := competitor
			g := gap.NewGap(rec, primary, &c, core.IntPtr(rank), core.KeywordTypeGap, core.IntPtr(rank))
			g.Illustrative = true
			gaps = append(gaps, g)
		}
	}

	return gap.Prioritize(gaps), nil
}

// mockTopic derives a readable topic from the primary domain ("acme-widgets.com" -> "acme widgets").
func mockTopic(domain string) string {
	host := domain
	if i := strings.IndexAny(host, "/?#:"); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndex(host, "."); i >= 0 {
		host = host[:i]
	}
	topic := strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(strings.ToLower(host))
	if strings.TrimSpace(topic) == "" {
		return "keyword research"
	}
	return topic
}
