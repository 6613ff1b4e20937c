package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/s4_visualize"
	"github.com/wonny/nifty50/internal/tabular"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the market summary and leaderboards",
	Long: `Renders the market summary, the top/bottom performers and the most
volatile symbols as Markdown in the terminal. Metrics are recomputed from
the analysis file when the metrics file has not been written yet.

Example:
  go run ./cmd/nifty report
  go run ./cmd/nifty report --markdown > report.md`,
	RunE: runReport,
}

var (
	reportMarkdown bool
	reportStyle    string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().BoolVar(&reportMarkdown, "markdown", false, "print raw Markdown")
	reportCmd.Flags().StringVar(&reportStyle, "style", "auto", "glamour style (auto|dark|light|notty)")
}

// loadReportInputs reads the summary and metrics; metrics fall back to the analysis file
func loadReportInputs(analysisDir string) (*contracts.MarketSummary, []contracts.SymbolMetrics, bool, error) {
	summaryPath := filepath.Join(analysisDir, tabular.SummaryFile)
	if err := contracts.RequireArtifact("report", summaryPath, contracts.StageAnalyze); err != nil {
		return nil, nil, false, err
	}
	summary, err := tabular.ReadSummary(summaryPath)
	if err != nil {
		return nil, nil, false, err
	}

	metricsPath := filepath.Join(analysisDir, tabular.MetricsFile)
	if contracts.RequireArtifact("report", metricsPath, contracts.StageVisualize) == nil {
		metrics, err := tabular.ReadMetrics(metricsPath)
		return summary, metrics, false, err
	}

	analysisPath := filepath.Join(analysisDir, tabular.AnalysisFile)
	if err := contracts.RequireArtifact("report", analysisPath, contracts.StageAnalyze); err != nil {
		return nil, nil, false, err
	}
	records, err := tabular.ReadReturns(analysisPath)
	if err != nil {
		return nil, nil, false, err
	}
	return summary, s4_visualize.ComputeMetrics(s4_visualize.SortRecords(records)), true, nil
}

// buildReport renders the report as Markdown
func buildReport(summary *contracts.MarketSummary, metrics []contracts.SymbolMetrics, recomputed bool) string {
	var b strings.Builder

	b.WriteString("# NIFTY 50 Market Summary\n\n")
	if recomputed {
		b.WriteString("> Metrics recomputed from the analysis file; run `visualize` to write them.\n\n")
	}
	b.WriteString("| Total | Green | Red | Green ratio | Best performer | Best return |\n")
	b.WriteString("|---:|---:|---:|---:|---|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %s | %s | %s |\n\n",
		summary.TotalStocks, summary.GreenStocks, summary.RedStocks,
		FormatPercent(summary.GreenRatio()), summary.BestStock, FormatPercent(summary.BestStockCumReturn))

	n := s4_visualize.RankedCount
	writeTable(&b, fmt.Sprintf("Top %d performers", n), s4_visualize.TopPerformers(metrics, n))
	writeTable(&b, fmt.Sprintf("Bottom %d performers", n), s4_visualize.BottomPerformers(metrics, n))
	writeTable(&b, fmt.Sprintf("Most volatile %d", n), s4_visualize.MostVolatile(metrics, n))

	return b.String()
}

func writeTable(b *strings.Builder, title string, rows []contracts.SymbolMetrics) {
	fmt.Fprintf(b, "## %s\n\n", title)
	if len(rows) == 0 {
		b.WriteString("_No symbols._\n\n")
		return
	}
	b.WriteString("| # | Symbol | Cumulative return | Avg daily return | Volatility | Last close |\n")
	b.WriteString("|---:|---|---:|---:|---:|---:|\n")
	for i, m := range rows {
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %s |\n", i+1, m.Symbol,
			FormatPercent(m.TotalCumulativeReturn), FormatPercent(m.AvgDailyReturn),
			FormatPercent(m.Volatility), FormatNumber(m.LastClose))
	}
	b.WriteString("\n")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	summary, metrics, recomputed, err := loadReportInputs(a.cfg.Paths.AnalysisDir)
	if err != nil {
		return err
	}
	md := buildReport(summary, metrics, recomputed)

	if reportMarkdown {
		fmt.Print(md)
		return nil
	}

	style := glamour.WithAutoStyle()
	if reportStyle != "auto" {
		style = glamour.WithStandardStyle(reportStyle)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(120))
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	fmt.Print(out)
	return nil
}
