package handlers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gapscout/internal/analysis"
	"gapscout/internal/config"
	"gapscout/internal/input"
	"gapscout/internal/logger"
)

// NewFetchCmd creates the fetch command
func NewFetchCmd() *cobra.Command {
	var (
		primary     string
		competitors []string
		location    int
		limit       int
		outFile     string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download ranked keywords from DataForSEO into a records file",
		Long: `Fetch the ranked keywords of the primary domain and every competitor from
DataForSEO, merge them into keyword records and save them as an analysis input
file for 'gapscout analyze --input'.

The output format follows the file extension: .json, .yaml or .yml.

Example:
  gapscout fetch -p example.com -c rival.com,other.com --out records.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, primary, competitors, location, limit, outFile)
		},
	}

	cmd.Flags().StringVarP(&primary, "primary", "p", "", "Primary domain")
	cmd.Flags().StringSliceVarP(&competitors, "competitors", "c", nil, "Competitor domains (comma separated)")
	cmd.Flags().IntVar(&location, "location", 0, "Location code (default from config: 2840)")
	cmd.Flags().IntVar(&limit, "limit", 1000, "Maximum ranked keywords per domain")
	cmd.Flags().StringVar(&outFile, "out", "records.json", "Output file (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("primary")
	_ = cmd.MarkFlagRequired("competitors")

	return cmd
}

func runFetch(cmd *cobra.Command, primary string, competitors []string, location, limit int, outFile string) error {
	format, err := input.DetectFormat(outFile)
	if err != nil {
		return err
	}

	client, err := requireDataForSEO()
	if err != nil {
		return err
	}

	cfg := config.Get()
	if location <= 0 {
		location = cfg.Analysis.LocationCode
	}

	records, err := analysis.FetchRecords(cmd.Context(), client, primary, competitors, location, limit, cfg.DataForSEO.Concurrency)
	if err != nil {
		return fmt.Errorf("failed to fetch ranked keywords: %w", err)
	}

	req := analysis.Request{
		PrimaryDomain:     primary,
		CompetitorDomains: competitors,
		Records:           records,
		LocationCode:      location,
	}

	var data []byte
	switch format {
	case input.FormatYAML:
		data, err = yaml.Marshal(req)
	default:
		data, err = json.MarshalIndent(req, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	if dir := filepath.Dir(outFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outFile, err)
	}

	logger.Info("Keyword records saved", "path", outFile, "records", len(records))
	fmt.Printf("Saved %d keyword records for %s vs %s to %s\n", len(records), primary, strings.Join(competitors, ", "), outFile)
	return nil
}
