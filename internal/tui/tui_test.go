package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapscout/internal/core"
)

func testResult() *core.AnalysisResult {
	return &core.AnalysisResult{
		PrimaryDomain:     "example.com",
		CompetitorDomains: []string{"a.com", "b.com"},
		Provenance:        "local",
		Gaps: []core.KeywordGap{
			{Keyword: "cheap widgets", Competitor: core.StringPtr("b.com"), Volume: 300, Opportunity: core.OpportunityMedium, Relevance: 50, CompetitiveAdvantage: 12, KeywordType: core.KeywordTypeGap},
			{Keyword: "widget pricing", Competitor: core.StringPtr("a.com"), Volume: 1200, Rank: core.IntPtr(3), Opportunity: core.OpportunityHigh, Relevance: 75, CompetitiveAdvantage: 57, KeywordType: core.KeywordTypeGap, IsTopOpportunity: true},
			{Keyword: "widget history", Volume: 150, Opportunity: core.OpportunityMedium, Relevance: 30, CompetitiveAdvantage: 2, KeywordType: core.KeywordTypeMissing},
		},
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestNewModelRanksGaps(t *testing.T) {
	m := NewModel(testResult())

	visible := m.Visible()
	require.Len(t, visible, 3)
	assert.Equal(t, "widget pricing", visible[0].Keyword)

	selected, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "widget pricing", selected.Keyword)
}

func TestNavigationStaysInBounds(t *testing.T) {
	m := press(t, NewModel(testResult()), "up", "down", "down", "down", "down")
	selected, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "widget history", selected.Keyword)

	m = press(t, m, "k")
	selected, _ = m.Selected()
	assert.Equal(t, "cheap widgets", selected.Keyword)
}

func TestCompetitorFilterCycles(t *testing.T) {
	m := press(t, NewModel(testResult()), "c")
	assert.Equal(t, "a.com", m.Filter().Competitor)
	require.Len(t, m.Visible(), 1)
	assert.Equal(t, "widget pricing", m.Visible()[0].Keyword)

	m = press(t, m, "c")
	assert.Equal(t, "b.com", m.Filter().Competitor)
	require.Len(t, m.Visible(), 1)

	m = press(t, m, "c")
	assert.Empty(t, m.Filter().Competitor)
	assert.Len(t, m.Visible(), 3)
}

func TestTierAndTopFilters(t *testing.T) {
	m := press(t, NewModel(testResult()), "t")
	assert.Equal(t, core.OpportunityHigh, m.Filter().Tier)
	assert.Len(t, m.Visible(), 1)

	m = press(t, m, "t")
	assert.Equal(t, core.OpportunityMedium, m.Filter().Tier)
	assert.Len(t, m.Visible(), 2)

	m = press(t, m, "t")
	assert.Empty(t, m.Visible())
	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "No gaps match")

	m = press(t, m, "r", "p")
	assert.True(t, m.Filter().TopOnly)
	assert.Len(t, m.Visible(), 1)
}

func TestFilteringDoesNotAliasPreviousModel(t *testing.T) {
	before := NewModel(testResult())
	after := press(t, before, "c", "c")

	require.Len(t, after.Visible(), 1)
	require.Len(t, before.Visible(), 3)
	assert.Equal(t, "widget pricing", before.Visible()[0].Keyword)
}

func TestViewShowsDetailAndWarning(t *testing.T) {
	result := testResult()
	result.Illustrative = true
	m := NewModel(result)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = next.(Model)

	view := m.View()
	for _, want := range []string{"Keyword gaps for example.com", "Illustrative data", "Top opportunity", "a.com", "competitor: all"} {
		assert.True(t, strings.Contains(view, want), "view should contain %q", want)
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(testResult())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, "Quitting...\n", next.(Model).View())
}
