package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nifty50/internal/contracts"
)

// visualizeCmd represents the visualize command
var visualizeCmd = &cobra.Command{
	Use:   "visualize",
	Short: "Write per-symbol metrics and static charts",
	Long: `Reads the combined analysis file, writes the per-symbol metrics file and
renders the static chart set into CHARTS_DIR.

Example:
  go run ./cmd/nifty visualize
  EXPORT_XLSX=true go run ./cmd/nifty visualize`,
	RunE: runVisualize,
}

func init() {
	rootCmd.AddCommand(visualizeCmd)
}

func runVisualize(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	PrintStageHeader("Visualize", map[string]string{
		"Input":  a.cfg.Paths.AnalysisDir,
		"Output": a.cfg.Paths.ChartsDir,
	}, "Input", "Output")

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	report, err := a.visualizer().Run(ctx)
	if report != nil {
		printVisualizeReport(report)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", contracts.StageVisualize, err)
	}

	PrintStageCompletion(contracts.StageVisualize, time.Since(start))
	return nil
}
