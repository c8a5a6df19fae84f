package core

import "time"

// KeywordType classifies how a keyword relates the primary domain to its competitors.
type KeywordType string

const (
	KeywordTypeGap     KeywordType = "gap"     // Competitor ranks well, primary does not
	KeywordTypeShared  KeywordType = "shared"  // Both rank well
	KeywordTypeMissing KeywordType = "missing" // Nobody ranks well but volume suggests latent demand
)

// Opportunity is the coarse attractiveness tier of a gap.
type Opportunity string

const (
	OpportunityHigh   Opportunity = "high"
	OpportunityMedium Opportunity = "medium"
	OpportunityLow    Opportunity = "low"
)

// DomainKeyword is one ranking row for a single domain as delivered by a fetch layer.
type DomainKeyword struct {
	Keyword             string  `json:"keyword" yaml:"keyword"`
	MonthlySearchVolume int     `json:"monthlySearchVolume" yaml:"monthlySearchVolume"`
	CompetitionIndex    float64 `json:"competitionIndex" yaml:"competitionIndex"`
	Rank                *int    `json:"rank,omitempty" yaml:"rank,omitempty"` // nil means not in the top 100
	URL                 *string `json:"url,omitempty" yaml:"url,omitempty"`
}

// DomainKeywords groups the ranking rows fetched for one domain.
type DomainKeywords struct {
	Domain   string          `json:"domain" yaml:"domain"`
	Keywords []DomainKeyword `json:"keywords" yaml:"keywords"`
}

// KeywordRecord merges the primary domain's position with every competitor's position for one keyword.
type KeywordRecord struct {
	Keyword             string             `json:"keyword" yaml:"keyword"`                         // Unique within a run, case-sensitive
	MonthlySearchVolume int                `json:"monthlySearchVolume" yaml:"monthlySearchVolume"` // >= 0
	CompetitionIndex    float64            `json:"competitionIndex" yaml:"competitionIndex"`       // 0-100, higher is harder
	PrimaryRank         *int               `json:"primaryRank" yaml:"primaryRank"`
	PrimaryURL          *string            `json:"primaryUrl" yaml:"primaryUrl"`
	CompetitorRanks     map[string]*int    `json:"competitorRanks" yaml:"competitorRanks"` // Keyed by normalized domain
	CompetitorURLs      map[string]*string `json:"competitorUrls" yaml:"competitorUrls"`
}

// KeywordGap is a scored opportunity derived from a KeywordRecord. Values are copied at creation time.
type KeywordGap struct {
	Keyword              string      `json:"keyword"`
	Competitor           *string     `json:"competitor"` // nil for shared and missing keywords
	Volume               int         `json:"volume"`
	Difficulty           float64     `json:"difficulty"`
	Rank                 *int        `json:"rank"`
	Opportunity          Opportunity `json:"opportunity"`
	Relevance            float64     `json:"relevance"`
	CompetitiveAdvantage float64     `json:"competitiveAdvantage"`
	IsTopOpportunity     bool        `json:"isTopOpportunity"`
	KeywordType          KeywordType `json:"keywordType"`
	Illustrative         bool        `json:"illustrative,omitempty"` // placeholder data, not real rankings
}

// CompetitorName returns the competitor domain or an empty string for shared and missing keywords.
func (g KeywordGap) CompetitorName() string {
	if g.Competitor == nil {
		return ""
	}
	return *g.Competitor
}

// StrategyName identifies one data source in the fallback chain.
type StrategyName string

const (
	StrategyLocal        StrategyName = "local"
	StrategyIntersection StrategyName = "intersection"
	StrategyAI           StrategyName = "ai"
	StrategyMock         StrategyName = "mock"
)

// DefaultStrategyOrder is the fallback chain used when callers do not specify one.
var DefaultStrategyOrder = []StrategyName{StrategyLocal, StrategyIntersection, StrategyAI, StrategyMock}

// Attempt records the outcome of one strategy during a run.
type Attempt struct {
	Strategy StrategyName  `json:"strategy"`
	Gaps     int           `json:"gaps"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// AnalysisResult is the outcome of one analysis run.
type AnalysisResult struct {
	RunID             string       `json:"runId"`
	PrimaryDomain     string       `json:"primaryDomain"`
	CompetitorDomains []string     `json:"competitorDomains"`
	LocationCode      int          `json:"locationCode"`
	TargetGapCount    int          `json:"targetGapCount"`
	Strategy          StrategyName `json:"strategy"`
	Provenance        string       `json:"provenance"`
	Illustrative      bool         `json:"illustrative"` // Placeholder data, not real rankings
	Cached            bool         `json:"cached"`
	Gaps              []KeywordGap `json:"gaps"`
	Attempts          []Attempt    `json:"attempts,omitempty"`
	GeneratedAt       time.Time    `json:"generatedAt"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
