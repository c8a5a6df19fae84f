package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gapscout/internal/core"
)

func sampleResult() *core.AnalysisResult {
	return &core.AnalysisResult{
		RunID:             "run-1",
		PrimaryDomain:     "example.com",
		CompetitorDomains: []string{"a.com", "b.com"},
		LocationCode:      2840,
		Strategy:          core.StrategyLocal,
		Provenance:        "local",
		GeneratedAt:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Gaps: []core.KeywordGap{
			{
				Keyword: "cheap widgets", Competitor: core.StringPtr("b.com"), Volume: 300, Difficulty: 50,
				Rank: core.IntPtr(12), Opportunity: core.OpportunityMedium, Relevance: 50, CompetitiveAdvantage: 12,
				KeywordType: core.KeywordTypeGap,
			},
			{
				Keyword: "widget pricing", Competitor: core.StringPtr("a.com"), Volume: 1200, Difficulty: 25,
				Rank: core.IntPtr(3), Opportunity: core.OpportunityHigh, Relevance: 75, CompetitiveAdvantage: 57,
				KeywordType: core.KeywordTypeGap, IsTopOpportunity: true,
			},
			{
				Keyword: "widget history", Volume: 150, Difficulty: 70, Opportunity: core.OpportunityMedium,
				Relevance: 30, CompetitiveAdvantage: 2, KeywordType: core.KeywordTypeMissing,
			},
		},
	}
}

func TestApplySortsByCompositeScore(t *testing.T) {
	gaps := Apply(sampleResult().Gaps, Filter{})
	if len(gaps) != 3 {
		t.Fatalf("Expected 3 gaps, got %d", len(gaps))
	}
	if gaps[0].Keyword != "widget pricing" {
		t.Errorf("Expected 'widget pricing' first, got %s", gaps[0].Keyword)
	}
	if gaps[2].Keyword != "widget history" {
		t.Errorf("Expected 'widget history' last, got %s", gaps[2].Keyword)
	}
}

func TestApplyFilters(t *testing.T) {
	result := sampleResult()

	byCompetitor := Apply(result.Gaps, Filter{Competitor: "https://www.B.com"})
	if len(byCompetitor) != 1 || byCompetitor[0].Keyword != "cheap widgets" {
		t.Errorf("Expected only b.com gap, got %+v", byCompetitor)
	}

	byTier := Apply(result.Gaps, Filter{Tier: core.OpportunityMedium})
	if len(byTier) != 2 {
		t.Errorf("Expected 2 medium gaps, got %d", len(byTier))
	}

	byType := Apply(result.Gaps, Filter{KeywordType: core.KeywordTypeMissing})
	if len(byType) != 1 || byType[0].Competitor != nil {
		t.Errorf("Expected one missing keyword, got %+v", byType)
	}

	top := Apply(result.Gaps, Filter{TopOnly: true})
	if len(top) != 1 || !top[0].IsTopOpportunity {
		t.Errorf("Expected one top pick, got %+v", top)
	}

	none := Apply(result.Gaps, Filter{Competitor: "a.com", Tier: core.OpportunityLow})
	if len(none) != 0 {
		t.Errorf("Expected no gaps, got %d", len(none))
	}
}

func TestParseFormatAndTier(t *testing.T) {
	formats := map[string]Format{"": FormatTable, "TABLE": FormatTable, "md": FormatMarkdown, "json": FormatJSON}
	for input, expected := range formats {
		got, err := ParseFormat(input)
		if err != nil || got != expected {
			t.Errorf("ParseFormat(%q) = %s, %v; expected %s", input, got, err, expected)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Error("Expected error for csv format")
	}

	if tier, err := ParseTier(" High "); err != nil || tier != core.OpportunityHigh {
		t.Errorf("ParseTier(High) = %s, %v", tier, err)
	}
	if _, err := ParseTier("urgent"); err == nil {
		t.Error("Expected error for unknown tier")
	}
}

func TestTableRendersBadgeAndSummary(t *testing.T) {
	result := sampleResult()
	out := Table(result, Apply(result.Gaps, Filter{}))

	for _, want := range []string{"widget pricing", "cheap widgets", TopPickBadge, "Opportunity", "3 of 3 gaps shown (local), 1 top picks."} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected table to contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, IllustrativeWarning) {
		t.Error("Real data should not carry the illustrative warning")
	}
}

func TestTableIllustrativeAndEmpty(t *testing.T) {
	result := sampleResult()
	result.Illustrative = true
	result.Provenance = "mock"

	out := Table(result, nil)
	if !strings.Contains(out, IllustrativeWarning) {
		t.Errorf("Expected illustrative warning, got:\n%s", out)
	}
	if !strings.Contains(out, "No keyword gaps match") {
		t.Errorf("Expected empty message, got:\n%s", out)
	}
}

func TestMarkdown(t *testing.T) {
	result := sampleResult()
	result.Cached = true
	out := Markdown(result, Apply(result.Gaps, Filter{}))

	if !strings.HasPrefix(out, "# Keyword Gaps for example.com") {
		t.Errorf("Unexpected markdown heading:\n%s", out)
	}
	if !strings.Contains(out, "| ★ | widget pricing | a.com | gap | 1200 | 25 | 3 | 75 | 57 | high |") {
		t.Errorf("Expected widget pricing row:\n%s", out)
	}
	if !strings.Contains(out, "| - | missing |") {
		t.Errorf("Expected missing keyword row without competitor or rank:\n%s", out)
	}
	if !strings.Contains(out, "(local, cached)") {
		t.Errorf("Expected cached marker:\n%s", out)
	}
}

func TestWriteJSONUsesFilteredGaps(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(), FormatJSON, Filter{Tier: core.OpportunityHigh}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded core.AnalysisResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON: %v", err)
	}
	if len(decoded.Gaps) != 1 || decoded.Gaps[0].Keyword != "widget pricing" {
		t.Errorf("Expected filtered gaps, got %+v", decoded.Gaps)
	}
	if decoded.RunID != "run-1" {
		t.Errorf("Expected run ID run-1, got %s", decoded.RunID)
	}
}

func TestReportFilename(t *testing.T) {
	result := sampleResult()
	if got := ReportFilename(result, FormatMarkdown); got != "gaps_example.com_2024-05-01.md" {
		t.Errorf("Unexpected filename %s", got)
	}
	if got := ReportFilename(result, FormatJSON); !strings.HasSuffix(got, ".json") {
		t.Errorf("Expected json extension, got %s", got)
	}
}

func TestWriteReportToFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := "# Keyword Gaps\n\nTest content."
	filename := "gaps.md"

	filePath, err := WriteReportToFile(content, tmpDir, filename)
	if err != nil {
		t.Fatalf("WriteReportToFile failed: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, filename)
	if filePath != expectedPath {
		t.Errorf("Expected file path %s, got %s", expectedPath, filePath)
	}

	fileContent, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	if string(fileContent) != content {
		t.Errorf("Expected content %q, got %q", content, string(fileContent))
	}
}

func TestWriteReportToFile_DefaultOutputDir(t *testing.T) {
	originalWd, _ := os.Getwd()
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	defer os.Chdir(originalWd)

	filePath, err := WriteReportToFile("Test content", "", "gaps.md")
	if err != nil {
		t.Fatalf("WriteReportToFile failed: %v", err)
	}
	if !strings.Contains(filePath, "reports") {
		t.Errorf("Expected file to be in reports directory, got %s", filePath)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "reports")); os.IsNotExist(err) {
		t.Error("Default reports directory should be created")
	}
}

func TestWriteReportToFile_InvalidOutputDir(t *testing.T) {
	// A regular file cannot be used as the output directory
	tmpDir := t.TempDir()
	invalidPath := filepath.Join(tmpDir, "file.txt")
	os.WriteFile(invalidPath, []byte("test"), 0644)

	if _, err := WriteReportToFile("content", invalidPath, "gaps.md"); err == nil {
		t.Error("Expected error when output directory is invalid")
	}
}
