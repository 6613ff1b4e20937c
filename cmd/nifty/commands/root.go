package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nifty",
	Short: "NIFTY 50 daily price pipeline",
	Long: `NIFTY 50 pipeline CLI

Every stage reads the previous stage's files and writes its own:
  fetch → clean → load → analyze → visualize → dashboard

Usage:
  go run ./cmd/nifty [command]

Examples:
  go run ./cmd/nifty run
  go run ./cmd/nifty fetch
  go run ./cmd/nifty run --from clean --to analyze
  go run ./cmd/nifty dashboard
  go run ./cmd/nifty status`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production), overrides ENV")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
