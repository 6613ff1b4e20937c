package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nifty50/internal/api"
	"github.com/wonny/nifty50/internal/api/handlers"
	"github.com/wonny/nifty50/pkg/metrics"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the interactive dashboard",
	Long: `Serves the dashboard over HTTP. Every request re-reads the analysis
outputs, so re-running the pipeline needs no restart.

Endpoints:
  GET /                                        - Dashboard page (?symbol=&a=&b=)
  GET /charts/symbol/{symbol}/price.png        - Close price chart
  GET /charts/symbol/{symbol}/cumulative.png   - Cumulative return chart
  GET /charts/compare.png?a=&b=                - Comparison chart
  GET /static/charts/{file}                    - Static charts
  GET /api/summary | /api/metrics | /api/symbols | /api/symbols/{symbol}
  GET /health | /metrics

Example:
  go run ./cmd/nifty dashboard
  go run ./cmd/nifty dashboard --port 8080`,
	RunE: runDashboard,
}

var dashboardPort string

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().StringVar(&dashboardPort, "port", "", "listen port (default PORT)")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if dashboardPort != "" {
		a.cfg.Port = dashboardPort
	}

	var m *metrics.Metrics
	if a.cfg.MetricsEnabled {
		m = a.metrics
	}

	files := handlers.Files{AnalysisDir: a.cfg.Paths.AnalysisDir, ChartsDir: a.cfg.Paths.ChartsDir}
	server := api.New(a.cfg, a.log, api.NewRouter(files, m, a.log))

	ctx, cancel := signalContext()
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Dashboard running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown with timeout
	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Dashboard stopped")
	return nil
}
