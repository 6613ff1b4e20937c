package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/pipeline"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the batch stages in order",
	Long: `Runs fetch → clean → load → analyze → visualize, stopping at the first
stage that fails. --from and --to select a contiguous slice of stages.

Example:
  go run ./cmd/nifty run
  go run ./cmd/nifty run --from clean
  go run ./cmd/nifty run --from analyze --to visualize`,
	RunE: runPipeline,
}

var (
	runFrom    string
	runTo      string
	runSymbols []string
)

func init() {
	rootCmd.AddCommand(runCmd)

	stages := strings.Join(contracts.Stages, "|")
	runCmd.Flags().StringVar(&runFrom, "from", contracts.StageFetch, "first stage ("+stages+")")
	runCmd.Flags().StringVar(&runTo, "to", contracts.StageVisualize, "last stage ("+stages+")")
	runCmd.Flags().StringSliceVar(&runSymbols, "symbols", nil, "symbols to fetch instead of the universe")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	selected, err := pipeline.SelectStages(runFrom, runTo)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	symbols := runSymbols
	if len(symbols) == 0 {
		u, err := a.universe()
		if err != nil {
			return err
		}
		symbols = u.Symbols
	}

	orch, closeStores, err := a.orchestrator()
	if err != nil {
		return err
	}
	defer closeStores()

	PrintStageHeader("Pipeline", map[string]string{
		"Stages":  strings.Join(selected, " → "),
		"Symbols": fmt.Sprintf("%d", len(symbols)),
		"Data":    a.cfg.Paths.Root,
	}, "Stages", "Symbols", "Data")

	ctx, cancel := signalContext()
	defer cancel()

	result, err := orch.Run(ctx, pipeline.RunConfig{
		Symbols: symbols,
		From:    runFrom,
		To:      runTo,
	})
	if result != nil {
		printRunResult(result)
		fmt.Println()
		PrintKeyValue("Run ID", result.RunID, 10)
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintStageCompletion("run", result.Duration)
	return nil
}
