package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nifty50/internal/contracts"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace the prices and symbols tables",
	Long: `Loads the combined cleaned file into the SQLite database (DB_PATH),
replacing the prices and symbols tables. When DATABASE_URL is set the
same rows are mirrored into PostgreSQL.

Example:
  go run ./cmd/nifty load`,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	mirror := "disabled"
	if a.cfg.MirrorEnabled() {
		mirror = "postgres"
	}
	PrintStageHeader("Load", map[string]string{
		"Input":    a.cfg.Paths.CleanedDir,
		"Database": a.cfg.Database.Path,
		"Mirror":   mirror,
	}, "Input", "Database", "Mirror")

	loader, closeStores, err := a.loader()
	if err != nil {
		return fmt.Errorf("%s: %w", contracts.StageLoad, err)
	}
	defer closeStores()

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	report, err := loader.Run(ctx)
	if report != nil {
		printLoadReport(report)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", contracts.StageLoad, err)
	}

	PrintStageCompletion(contracts.StageLoad, time.Since(start))
	return nil
}
