package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"gapscout/internal/core"
	"gapscout/internal/gap"
)

// Format selects the report encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// TopPickBadge marks gaps flagged as top opportunities.
const TopPickBadge = "★"

// IllustrativeWarning is printed above reports built from placeholder data.
const IllustrativeWarning = "Illustrative data: these gaps were generated as placeholders and do not reflect real rankings."

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	topPickStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("220")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// ParseFormat accepts table, markdown (or md) and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// ParseTier accepts high, medium, low or an empty string for no tier filter.
func ParseTier(s string) (core.Opportunity, error) {
	switch tier := core.Opportunity(strings.ToLower(strings.TrimSpace(s))); tier {
	case "", core.OpportunityHigh, core.OpportunityMedium, core.OpportunityLow:
		return tier, nil
	default:
		return "", fmt.Errorf("unknown opportunity tier: %s", s)
	}
}

// Filter narrows a gap list. Zero values match everything.
type Filter struct {
	Competitor  string
	Tier        core.Opportunity
	KeywordType core.KeywordType
	TopOnly     bool
}

// Match reports whether g passes the filter.
func (f Filter) Match(g core.KeywordGap) bool {
	if f.Competitor != "" && !strings.EqualFold(g.CompetitorName(), gap.Normalize(f.Competitor)) {
		return false
	}
	if f.Tier != "" && g.Opportunity != f.Tier {
		return false
	}
	if f.KeywordType != "" && g.KeywordType != f.KeywordType {
		return false
	}
	if f.TopOnly && !g.IsTopOpportunity {
		return false
	}
	return true
}

// Apply returns the gaps that pass f, sorted by composite score.
func Apply(gaps []core.KeywordGap, f Filter) []core.KeywordGap {
	ranked := gap.Ranked(gaps)
	out := make([]core.KeywordGap, 0, len(ranked))
	for _, g := range ranked {
		if f.Match(g) {
			out = append(out, g)
		}
	}
	return out
}

// Write renders result in the requested format.
func Write(w io.Writer, result *core.AnalysisResult, format Format, f Filter) error {
	gaps := Apply(result.Gaps, f)
	switch format {
	case FormatJSON:
		return writeJSON(w, result, gaps)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(result, gaps))
		return err
	case FormatTable, "":
		_, err := io.WriteString(w, Table(result, gaps))
		return err
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// Table renders gaps as a terminal table with a one-line summary.
func Table(result *core.AnalysisResult, gaps []core.KeywordGap) string {
	var b strings.Builder
	if result.Illustrative {
		b.WriteString(warningStyle.Render(IllustrativeWarning))
		b.WriteString("\n\n")
	}

	if len(gaps) == 0 {
		b.WriteString("No keyword gaps match the current filters.\n")
		return b.String()
	}

	rows := make([][]string, 0, len(gaps))
	for _, g := range gaps {
		rows = append(rows, row(g))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(columns...).
		Rows(rows...).
		StyleFunc(func(r, c int) lipgloss.Style {
			switch {
			case r == table.HeaderRow:
				return headerStyle
			case r >= 0 && r < len(gaps) && gaps[r].IsTopOpportunity:
				return topPickStyle
			default:
				return cellStyle
			}
		})

	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(summaryStyle.Render(summary(result, gaps)))
	b.WriteString("\n")
	return b.String()
}

// Markdown renders gaps as a markdown report.
func Markdown(result *core.AnalysisResult, gaps []core.KeywordGap) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Keyword Gaps for %s\n\n", result.PrimaryDomain)
	if result.Illustrative {
		fmt.Fprintf(&b, "> **Warning:** %s\n\n", IllustrativeWarning)
	}
	fmt.Fprintf(&b, "- Competitors: %s\n", strings.Join(result.CompetitorDomains, ", "))
	fmt.Fprintf(&b, "- Source: %s\n", result.Provenance)
	fmt.Fprintf(&b, "- Location: %d\n", result.LocationCode)
	if !result.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- Generated: %s\n", result.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	}
	b.WriteString("\n")

	if len(gaps) == 0 {
		b.WriteString("No keyword gaps match the current filters.\n")
		return b.String()
	}

	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(columns)) + "\n")
	for _, g := range gaps {
		cells := row(g)
		for i, c := range cells {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	fmt.Fprintf(&b, "\n%s top picks are marked with %s.\n", summary(result, gaps), TopPickBadge)
	return b.String()
}

func writeJSON(w io.Writer, result *core.AnalysisResult, gaps []core.KeywordGap) error {
	out := *result
	out.Gaps = gaps
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var columns = []string{"", "Keyword", "Competitor", "Type", "Volume", "Difficulty", "Rank", "Relevance", "Advantage", "Opportunity"}

func row(g core.KeywordGap) []string {
	badge := ""
	if g.IsTopOpportunity {
		badge = TopPickBadge
	}
	return []string{
		badge,
		g.Keyword,
		competitorLabel(g),
		string(g.KeywordType),
		fmt.Sprintf("%d", g.Volume),
		fmt.Sprintf("%.0f", g.Difficulty),
		FormatRank(g.Rank),
		fmt.Sprintf("%.0f", g.Relevance),
		fmt.Sprintf("%.0f", g.CompetitiveAdvantage),
		string(g.Opportunity),
	}
}

func competitorLabel(g core.KeywordGap) string {
	if name := g.CompetitorName(); name != "" {
		return name
	}
	return "-"
}

// FormatRank renders a rank or "-" when the domain does not rank.
func FormatRank(rank *int) string {
	if rank == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *rank)
}

func summary(result *core.AnalysisResult, gaps []core.KeywordGap) string {
	top := 0
	for _, g := range gaps {
		if g.IsTopOpportunity {
			top++
		}
	}
	source := result.Provenance
	if result.Cached {
		source += ", cached"
	}
	return fmt.Sprintf("%d of %d gaps shown (%s), %d top picks.", len(gaps), len(result.Gaps), source, top)
}

// WriteReportToFile writes the provided content to a file in the specified directory
func WriteReportToFile(content, outputDir, filename string) (string, error) {
	if outputDir == "" {
		outputDir = "reports" // Default output directory
	}

	err := os.MkdirAll(outputDir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, filename)

	err = os.WriteFile(filePath, []byte(content), 0644)
	if err != nil {
		return "", fmt.Errorf("failed to write report file %s: %w", filePath, err)
	}

	return filePath, nil
}

// ReportFilename builds a dated file name for a result, e.g. gaps_example.com_2024-05-01.md.
func ReportFilename(result *core.AnalysisResult, format Format) string {
	ext := "txt"
	switch format {
	case FormatMarkdown:
		ext = "md"
	case FormatJSON:
		ext = "json"
	}
	date := result.GeneratedAt.UTC().Format("2006-01-02")
	return fmt.Sprintf("gaps_%s_%s.%s", result.PrimaryDomain, date, ext)
}
