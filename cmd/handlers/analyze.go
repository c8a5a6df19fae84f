package handlers

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gapscout/internal/analysis"
	"gapscout/internal/core"
	"gapscout/internal/logger"
	"gapscout/internal/render"
)

// reportFlags control how a result is printed.
type reportFlags struct {
	format     string
	competitor string
	tier       string
	topOnly    bool
	outputDir  string
}

func (f *reportFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "table", "Output format: table, markdown or json")
	cmd.Flags().StringVar(&f.competitor, "competitor", "", "Only show gaps for this competitor")
	cmd.Flags().StringVar(&f.tier, "tier", "", "Only show gaps in this opportunity tier: high, medium or low")
	cmd.Flags().BoolVar(&f.topOnly, "top", false, "Only show top opportunities")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "Write the report to this directory instead of stdout")
}

func (f *reportFlags) filter() (render.Filter, error) {
	tier, err := render.ParseTier(f.tier)
	if err != nil {
		return render.Filter{}, err
	}
	return render.Filter{Competitor: f.competitor, Tier: tier, TopOnly: f.topOnly}, nil
}

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	var (
		reqFlags    requestFlags
		reportFlags reportFlags
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Find keyword gaps between a domain and its competitors",
		Long: `Run a keyword gap analysis and print the scored gaps, best first.

Keyword records can be supplied with --input (JSON or YAML). Without records the
configured providers are used: DataForSEO domain intersections, then Gemini
estimates. When every real source fails, illustrative placeholder gaps are shown
with a clear warning.

Examples:
  # Analyze records exported earlier with 'gapscout fetch'
  gapscout analyze --input records.json

  # Query providers directly
  gapscout analyze --primary example.com --competitors rival.com,other.com

  # Fetch ranked keywords first so local analysis and Gemini have records to work with
  gapscout analyze -p example.com -c rival.com --fetch

  # Only high-opportunity gaps for one competitor, as markdown
  gapscout analyze -p example.com -c rival.com --tier high --competitor rival.com -f markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, reqFlags, reportFlags)
		},
	}

	reqFlags.bind(cmd)
	reportFlags.bind(cmd)
	return cmd
}

func runAnalyze(cmd *cobra.Command, reqFlags requestFlags, reportFlags reportFlags) error {
	result, err := runAnalysis(cmd, reqFlags)
	if err != nil {
		return err
	}
	return writeReport(result, reportFlags)
}

// runAnalysis builds the service from configuration and runs one request.
func runAnalysis(cmd *cobra.Command, reqFlags requestFlags) (*core.AnalysisResult, error) {
	req, err := reqFlags.request()
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, !req.NoCache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analysis: %w", err)
	}
	defer a.Close()

	if reqFlags.fetch && len(req.Records) == 0 {
		if a.dataForSEO == nil {
			return nil, fmt.Errorf("--fetch needs DataForSEO credentials. Set DATAFORSEO_LOGIN and DATAFORSEO_PASSWORD")
		}
		location := req.LocationCode
		if location <= 0 {
			location = a.cfg.Analysis.LocationCode
		}
		records, err := analysis.FetchRecords(ctx, a.dataForSEO, req.PrimaryDomain, req.CompetitorDomains, location, reqFlags.fetchLimit, a.cfg.DataForSEO.Concurrency)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch ranked keywords: %w", err)
		}
		req.Records = records
	}

	result, err := a.service.Analyze(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword gap analysis failed: %w", err)
	}
	return result, nil
}

func writeReport(result *core.AnalysisResult, flags reportFlags) error {
	format, err := render.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	filter, err := flags.filter()
	if err != nil {
		return err
	}

	if flags.outputDir == "" {
		return render.Write(os.Stdout, result, format, filter)
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, result, format, filter); err != nil {
		return err
	}
	path, err := render.WriteReportToFile(buf.String(), flags.outputDir, render.ReportFilename(result, format))
	if err != nil {
		return err
	}
	logger.Info("Report written", "path", path, "run_id", result.RunID)
	fmt.Printf("Report saved to %s\n", path)
	return nil
}
