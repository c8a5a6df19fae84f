package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestKeywordGapCompetitorName(t *testing.T) {
	gap := KeywordGap{Keyword: "widget pricing", Competitor: StringPtr("rival.com")}
	if gap.CompetitorName() != "rival.com" {
		t.Errorf("Expected competitor 'rival.com', got %s", gap.CompetitorName())
	}

	shared := KeywordGap{Keyword: "widgets", KeywordType: KeywordTypeShared}
	if shared.CompetitorName() != "" {
		t.Errorf("Expected empty competitor for shared keyword, got %s", shared.CompetitorName())
	}
}

func TestKeywordGapJSONUsesNullForMissingCompetitor(t *testing.T) {
	gap := KeywordGap{Keyword: "latent demand", KeywordType: KeywordTypeMissing, Opportunity: OpportunityMedium}

	data, err := json.Marshal(gap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	body := string(data)
	if !strings.Contains(body, `"competitor":null`) {
		t.Errorf("Expected null competitor in %s", body)
	}
	if !strings.Contains(body, `"rank":null`) {
		t.Errorf("Expected null rank in %s", body)
	}
	if !strings.Contains(body, `"keywordType":"missing"`) {
		t.Errorf("Expected keywordType missing in %s", body)
	}
}

func TestDefaultStrategyOrder(t *testing.T) {
	expected := []StrategyName{"local", "intersection", "ai", "mock"}
	if len(DefaultStrategyOrder) != len(expected) {
		t.Fatalf("Expected %d strategies, got %d", len(expected), len(DefaultStrategyOrder))
	}
	for i, name := range expected {
		if DefaultStrategyOrder[i] != name {
			t.Errorf("Expected strategy %d to be %s, got %s", i, name, DefaultStrategyOrder[i])
		}
	}
}
