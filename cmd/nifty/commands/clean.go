package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nifty50/internal/contracts"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Normalize the raw files",
	Long: `Reads every raw CSV in RAW_DIR, drops rows without a date or close,
sorts by date and writes the cleaned files plus the combined cleaned file.

Example:
  go run ./cmd/nifty clean`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	PrintStageHeader("Clean", map[string]string{
		"Input":  a.cfg.Paths.RawDir,
		"Output": a.cfg.Paths.CleanedDir,
	}, "Input", "Output")

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	report, err := a.cleaner().Run(ctx)
	if report != nil {
		printCleanReport(report)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", contracts.StageClean, err)
	}

	PrintStageCompletion(contracts.StageClean, time.Since(start))
	return nil
}
