package handlers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gapscout/internal/analysis"
	"gapscout/internal/input"
)

// requestFlags are the analysis inputs shared by analyze and browse.
type requestFlags struct {
	primary     string
	competitors []string
	inputFile   string
	target      int
	location    int
	strategies  []string
	noCache     bool
	fetch       bool
	fetchLimit  int
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.primary, "primary", "p", "", "Primary domain to analyze")
	cmd.Flags().StringSliceVarP(&f.competitors, "competitors", "c", nil, "Competitor domains (comma separated)")
	cmd.Flags().StringVarP(&f.inputFile, "input", "i", "", "JSON or YAML file with keyword records or per-domain keyword lists")
	cmd.Flags().IntVarP(&f.target, "target", "n", 0, "Target number of gaps (default from config: 30)")
	cmd.Flags().IntVar(&f.location, "location", 0, "Location code for provider queries (default from config: 2840)")
	cmd.Flags().StringSliceVar(&f.strategies, "strategies", nil, "Strategy order override, e.g. local,intersection,ai,mock")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Bypass the result cache")
	cmd.Flags().BoolVar(&f.fetch, "fetch", false, "Fetch ranked keywords from DataForSEO first when no records are supplied")
	cmd.Flags().IntVar(&f.fetchLimit, "fetch-limit", 1000, "Maximum ranked keywords per domain with --fetch")
}

// request builds an analysis request from the input file, if any, with flags taking precedence.
func (f *requestFlags) request() (analysis.Request, error) {
	var req analysis.Request
	if f.inputFile != "" {
		loaded, err := input.Load(f.inputFile)
		if err != nil {
			return req, err
		}
		req = *loaded
	}

	if f.primary != "" {
		req.PrimaryDomain = f.primary
	}
	if len(f.competitors) > 0 {
		req.CompetitorDomains = f.competitors
	}
	if f.target > 0 {
		req.TargetGapCount = f.target
	}
	if f.location > 0 {
		req.LocationCode = f.location
	}
	if len(f.strategies) > 0 {
		req.StrategyOrder = f.strategies
	}
	if f.noCache {
		req.NoCache = true
	}

	if strings.TrimSpace(req.PrimaryDomain) == "" {
		return req, fmt.Errorf("a primary domain is required: use --primary or set primaryDomain in the input file")
	}
	if len(req.CompetitorDomains) == 0 {
		return req, fmt.Errorf("at least one competitor is required: use --competitors or set competitorDomains in the input file")
	}
	return req, nil
}
