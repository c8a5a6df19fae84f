package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gapscout/internal/core"
	"gapscout/internal/tui"
)

// NewBrowseCmd creates the interactive gap browser command
func NewBrowseCmd() *cobra.Command {
	var (
		reqFlags   requestFlags
		resultFile string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse keyword gaps interactively",
		Long: `Run an analysis (same flags as analyze) or open a saved JSON result and browse
the gaps in the terminal, filtering by competitor and opportunity tier.

Examples:
  gapscout browse --input records.json
  gapscout browse --result reports/gaps_example.com_2024-05-01.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				result *core.AnalysisResult
				err    error
			)
			if resultFile != "" {
				result, err = loadResult(resultFile)
			} else {
				result, err = runAnalysis(cmd, reqFlags)
			}
			if err != nil {
				return err
			}
			return tui.Run(result)
		},
	}

	reqFlags.bind(cmd)
	cmd.Flags().StringVar(&resultFile, "result", "", "Saved JSON result from 'gapscout analyze -f json'")
	return cmd
}

func loadResult(path string) (*core.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file %s: %w", path, err)
	}
	var result core.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse result file %s: %w", path, err)
	}
	if len(result.Gaps) == 0 {
		return nil, fmt.Errorf("%w: %s contains no gaps", core.ErrNoKeywordData, path)
	}
	return &result, nil
}
