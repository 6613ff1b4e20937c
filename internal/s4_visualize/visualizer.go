package s4_visualize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"

	"github.com/wonny/nifty50/internal/charts"
	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/tabular"
	"github.com/wonny/nifty50/pkg/logger"
)

// Visualizer writes per-symbol metrics and the static chart set
// ⭐ SSOT: 정적 차트 생성은 이 패키지에서만
type Visualizer struct {
	analysisDir string
	chartsDir   string
	exportXLSX  bool
	logger      *logger.Logger
}

// NewVisualizer creates a new Visualizer
func NewVisualizer(analysisDir, chartsDir string, log *logger.Logger) *Visualizer {
	return &Visualizer{
		analysisDir: analysisDir,
		chartsDir:   chartsDir,
		logger:      log.Stage(contracts.StageVisualize),
	}
}

// WithXLSX enables the workbook copy of the metrics file
func (v *Visualizer) WithXLSX(enabled bool) *Visualizer {
	v.exportXLSX = enabled
	return v
}

type figure struct {
	name  string
	size  charts.Size
	build func() (*plot.Plot, error)
}

// Run computes metrics and renders every chart.
// A chart that cannot be drawn is reported as skipped, not fatal.
func (v *Visualizer) Run(ctx context.Context) (*contracts.VisualizeReport, error) {
	analysisPath := filepath.Join(v.analysisDir, tabular.AnalysisFile)
	if err := contracts.RequireArtifact(contracts.StageVisualize, analysisPath, contracts.StageAnalyze); err != nil {
		return nil, err
	}

	records, err := tabular.ReadReturns(analysisPath)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no rows", analysisPath)
	}
	records = SortRecords(records)

	metrics := ComputeMetrics(records)
	report := &contracts.VisualizeReport{
		Symbols: len(metrics),
		Charts:  make([]string, 0),
		Skipped: make([]string, 0),
	}

	metricsPath := filepath.Join(v.analysisDir, tabular.MetricsFile)
	if err := tabular.WriteMetrics(metricsPath, metrics); err != nil {
		return report, fmt.Errorf("write metrics: %w", err)
	}
	report.Outputs = append(report.Outputs, metricsPath)

	if v.exportXLSX {
		xlsxPath := filepath.Join(v.analysisDir, tabular.MetricsXLSXFile)
		if err := tabular.WriteMetricsXLSX(xlsxPath, metrics); err != nil {
			return report, fmt.Errorf("write xlsx: %w", err)
		}
		report.Outputs = append(report.Outputs, xlsxPath)
	}

	if err := os.MkdirAll(v.chartsDir, 0o755); err != nil {
		return report, fmt.Errorf("create charts dir: %w", err)
	}

	for _, f := range v.figures(records, metrics) {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("visualize cancelled: %w", err)
		}
		v.render(report, f)
	}

	v.logger.WithFields(map[string]interface{}{
		"symbols": report.Symbols,
		"charts":  len(report.Charts),
		"skipped": len(report.Skipped),
	}).Info("Visualization completed")

	return report, nil
}

// figures lists the static charts in output order
func (v *Visualizer) figures(records []contracts.ReturnRecord, metrics []contracts.SymbolMetrics) []figure {
	figs := []figure{
		{AvgCloseChart, charts.Wide, func() (*plot.Plot, error) { return AverageCloseFigure(records) }},
		{TopCumulativeChart, charts.Standard, func() (*plot.Plot, error) {
			return RankedFigure("Top 10 Stocks by Cumulative Return", "Total cumulative return",
				TopPerformers(metrics, RankedCount), ByCumulativeReturn)
		}},
		{BottomCumulativeChart, charts.Standard, func() (*plot.Plot, error) {
			return RankedFigure("Bottom 10 Stocks by Cumulative Return", "Total cumulative return",
				BottomPerformers(metrics, RankedCount), ByCumulativeReturn)
		}},
		{TopVolatilityChart, charts.Standard, func() (*plot.Plot, error) {
			return RankedFigure("Top 10 Most Volatile Stocks", "Volatility (std of daily return)",
				MostVolatile(metrics, RankedCount), ByVolatility)
		}},
		{DistributionChart, charts.Standard, func() (*plot.Plot, error) { return DistributionFigure(records) }},
		{HeatmapChart, charts.Square, func() (*plot.Plot, error) { return HeatmapFigure(records) }},
	}

	symbols, groups := GroupBySymbol(records)
	for _, s := range symbols {
		symbol := s
		if len(groups[symbol]) < 2 {
			continue
		}
		figs = append(figs, figure{
			name: tabular.ChartFileName(symbol),
			size: charts.Compact,
			build: func() (*plot.Plot, error) {
				return PriceFigure(groups[symbol], symbol)
			},
		})
	}
	return figs
}

func (v *Visualizer) render(report *contracts.VisualizeReport, f figure) {
	p, err := f.build()
	if err == nil {
		err = charts.Save(p, f.size, filepath.Join(v.chartsDir, f.name))
	}
	if err != nil {
		report.Skipped = append(report.Skipped, fmt.Sprintf("%s: %v", f.name, err))
		v.logger.WithError(err).WithField("chart", f.name).Warn("Chart skipped")
		return
	}
	report.Charts = append(report.Charts, f.name)
}
