package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nifty50/internal/contracts"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download daily bars for every universe symbol",
	Long: `Downloads one year of daily bars per symbol from Yahoo Finance.

Writes one raw CSV per symbol plus the combined file into RAW_DIR.
A symbol that fails is reported and skipped; the run continues.

Example:
  go run ./cmd/nifty fetch
  go run ./cmd/nifty fetch --symbols RELIANCE.NS,TCS.NS`,
	RunE: runFetch,
}

var fetchSymbols []string

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringSliceVar(&fetchSymbols, "symbols", nil, "symbols to fetch instead of the universe")
}

// signalContext is cancelled on Ctrl+C
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	symbols := fetchSymbols
	if len(symbols) == 0 {
		u, err := a.universe()
		if err != nil {
			return err
		}
		symbols = u.Symbols
	}

	PrintStageHeader("Fetch", map[string]string{
		"Symbols": strconv.Itoa(len(symbols)),
		"Range":   a.cfg.Yahoo.Range,
		"Output":  a.cfg.Paths.RawDir,
	}, "Symbols", "Range", "Output")

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	report, err := a.fetcher().Run(ctx, symbols)
	if report != nil {
		printFetchReport(report)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", contracts.StageFetch, err)
	}
	if len(report.Succeeded) == 0 {
		return fmt.Errorf("%s: no symbol succeeded (%s)", contracts.StageFetch, strings.Join(report.FailedSymbols(), ", "))
	}

	PrintStageCompletion(contracts.StageFetch, time.Since(start))
	return nil
}
