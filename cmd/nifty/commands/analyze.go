package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nifty50/internal/contracts"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute daily and cumulative returns",
	Long: `Computes daily and cumulative returns from the cleaned per-symbol files
and writes the combined analysis file and the market summary.

Example:
  go run ./cmd/nifty analyze
  EXPORT_PARQUET=true go run ./cmd/nifty analyze`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	PrintStageHeader("Analyze", map[string]string{
		"Input":  a.cfg.Paths.CleanedDir,
		"Output": a.cfg.Paths.AnalysisDir,
	}, "Input", "Output")

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	report, err := a.analyzer().Run(ctx)
	if report != nil {
		printAnalysisReport(report)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", contracts.StageAnalyze, err)
	}

	PrintStageCompletion(contracts.StageAnalyze, time.Since(start))
	return nil
}
