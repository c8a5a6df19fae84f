package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gapscout/internal/core"
	"gapscout/internal/gap"
	"gapscout/internal/render"
)

var tiers = []core.Opportunity{"", core.OpportunityHigh, core.OpportunityMedium, core.OpportunityLow}

// Model is the gap browser state. Gaps are kept in composite-score order; filters narrow the
// visible list without reordering it.
type Model struct {
	result        *core.AnalysisResult
	ranked        []core.KeywordGap
	visible       []core.KeywordGap
	competitors   []string // "" first, meaning all competitors
	competitorIdx int
	tierIdx       int
	topOnly       bool
	selectedIdx   int
	width         int
	height        int
	quitting      bool
}

// NewModel returns the initial browser state for a result.
func NewModel(result *core.AnalysisResult) Model {
	m := Model{
		result:      result,
		ranked:      gap.Ranked(result.Gaps),
		competitors: append([]string{""}, result.CompetitorDomains...),
	}
	m.applyFilter()
	return m
}

// Init is the first command that will be run. We don't need any for now.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model accordingly.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(m.visible)-1 {
				m.selectedIdx++
			}
		case "c":
			m.competitorIdx = (m.competitorIdx + 1) % len(m.competitors)
			m.applyFilter()
		case "t":
			m.tierIdx = (m.tierIdx + 1) % len(tiers)
			m.applyFilter()
		case "p":
			m.topOnly = !m.topOnly
			m.applyFilter()
		case "r":
			m.competitorIdx, m.tierIdx, m.topOnly = 0, 0, false
			m.applyFilter()
		}
	}

	return m, nil
}

func (m *Model) applyFilter() {
	f := m.Filter()
	m.visible = make([]core.KeywordGap, 0, len(m.ranked))
	for _, g := range m.ranked {
		if f.Match(g) {
			m.visible = append(m.visible, g)
		}
	}
	m.selectedIdx = 0
}

// Filter returns the active filter.
func (m Model) Filter() render.Filter {
	return render.Filter{
		Competitor: m.competitors[m.competitorIdx],
		Tier:       tiers[m.tierIdx],
		TopOnly:    m.topOnly,
	}
}

// Visible returns the gaps that pass the active filter.
func (m Model) Visible() []core.KeywordGap {
	return m.visible
}

// Selected returns the highlighted gap, if any.
func (m Model) Selected() (core.KeywordGap, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.visible) {
		return core.KeywordGap{}, false
	}
	return m.visible[m.selectedIdx], true
}

var (
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1)
)

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Quitting...\n"
	}

	var header strings.Builder
	header.WriteString(titleStyle.Render(fmt.Sprintf("Keyword gaps for %s", m.result.PrimaryDomain)))
	header.WriteString("\n")
	if m.result.Illustrative {
		header.WriteString(warningStyle.Render(render.IllustrativeWarning))
		header.WriteString("\n")
	}
	header.WriteString(labelStyle.Render(m.filterLine()))

	paneWidth := 0
	if m.width > 0 {
		paneWidth = max(20, m.width/2-5)
	}
	list := paneStyle.Width(paneWidth).Render(m.listView())
	detail := paneStyle.Width(paneWidth).Render(m.detailView())

	help := "\n[↑/k] Up | [↓/j] Down | [c] Competitor | [t] Tier | [p] Top picks | [r] Reset | [q] Quit"

	return docStyle.Render(header.String() + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, list, detail) + help)
}

func (m Model) filterLine() string {
	f := m.Filter()
	competitor := f.Competitor
	if competitor == "" {
		competitor = "all"
	}
	tier := string(f.Tier)
	if tier == "" {
		tier = "all"
	}
	return fmt.Sprintf("competitor: %s | tier: %s | top picks only: %t | %d of %d gaps",
		competitor, tier, f.TopOnly, len(m.visible), len(m.ranked))
}

func (m Model) listView() string {
	if len(m.visible) == 0 {
		return "No gaps match the current filters."
	}

	// Keep the selection on screen for long lists.
	limit := len(m.visible)
	if m.height > 10 {
		limit = min(limit, m.height-10)
	}
	start := 0
	if m.selectedIdx >= limit {
		start = m.selectedIdx - limit + 1
	}

	var b strings.Builder
	for i := start; i < len(m.visible) && i < start+limit; i++ {
		g := m.visible[i]
		cursor := " "
		if i == m.selectedIdx {
			cursor = cursorStyle.Render(">")
		}
		badge := " "
		if g.IsTopOpportunity {
			badge = render.TopPickBadge
		}
		fmt.Fprintf(&b, "%s %s %s\n", cursor, badge, g.Keyword)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) detailView() string {
	g, ok := m.Selected()
	if !ok {
		return "Nothing selected."
	}

	competitor := g.CompetitorName()
	if competitor == "" {
		competitor = "-"
	}
	lines := []string{
		titleStyle.Render(g.Keyword),
		"",
		fmt.Sprintf("Competitor:   %s", competitor),
		fmt.Sprintf("Type:         %s", g.KeywordType),
		fmt.Sprintf("Opportunity:  %s", g.Opportunity),
		fmt.Sprintf("Volume:       %d", g.Volume),
		fmt.Sprintf("Difficulty:   %.0f", g.Difficulty),
		fmt.Sprintf("Rank:         %s", render.FormatRank(g.Rank)),
		fmt.Sprintf("Relevance:    %.0f", g.Relevance),
		fmt.Sprintf("Advantage:    %.0f", g.CompetitiveAdvantage),
		fmt.Sprintf("Score:        %.1f", gap.CompositeScore(g)),
	}
	if g.IsTopOpportunity {
		lines = append(lines, "", cursorStyle.Render(render.TopPickBadge+" Top opportunity"))
	}
	return strings.Join(lines, "\n")
}

// Run starts the Bubble Tea browser for a result and blocks until the user quits.
func Run(result *core.AnalysisResult) error {
	p := tea.NewProgram(NewModel(result), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running gap browser: %w", err)
	}
	return nil
}
