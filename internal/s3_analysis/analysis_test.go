package s3_analysis

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/tabular"
	"github.com/wonny/nifty50/pkg/logger"
)

func series(symbol string, closes ...float64) []contracts.Bar {
	bars := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		bars[i] = contracts.Bar{
			Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
			AdjClose: c,
			Volume:   1000,
			Symbol:   symbol,
		}
	}
	return bars
}

func TestComputeReturnsFirstRow(t *testing.T) {
	records := ComputeReturns(series("A.NS", 100, 110, 99))

	require.Len(t, records, 3)
	assert.True(t, math.IsNaN(records[0].DailyReturn))
	assert.Equal(t, 0.0, records[0].DailyReturnFilled)
	assert.Equal(t, 0.0, records[0].CumulativeReturn)
	assert.InDelta(t, 0.1, records[1].DailyReturn, 1e-12)
	assert.InDelta(t, -0.1, records[2].DailyReturn, 1e-12)
	assert.InDelta(t, -0.01, records[2].CumulativeReturn, 1e-12)
}

func TestComputeReturnsCompounding(t *testing.T) {
	closes := []float64{50, 51.5, 49.2, 49.2, 60.1, 58.7, 70, 69.99}
	records := ComputeReturns(series("A.NS", closes...))

	growth := 1.0
	for _, r := range records {
		growth *= 1 + r.DailyReturnFilled
		assert.InDelta(t, growth-1, r.CumulativeReturn, 1e-12)
	}
	assert.InDelta(t, closes[len(closes)-1]/closes[0]-1, records[len(records)-1].CumulativeReturn, 1e-12)
}

func TestComputeReturnsSortsByDate(t *testing.T) {
	bars := series("A.NS", 100, 200)
	bars[0], bars[1] = bars[1], bars[0]

	records := ComputeReturns(bars)

	assert.Equal(t, 100.0, records[0].Close)
	assert.InDelta(t, 1.0, records[1].DailyReturn, 1e-12)
	// input untouched
	assert.Equal(t, 200.0, bars[0].Close)
}

func TestSummarizeRisingAndFlat(t *testing.T) {
	records := append(
		ComputeReturns(series("A.NS", 10, 11, 12, 13)),
		ComputeReturns(series("B.NS", 10, 10, 10, 10))...,
	)

	summary := Summarize(records)

	assert.Equal(t, 2, summary.TotalStocks)
	assert.Equal(t, 1, summary.GreenStocks)
	assert.Equal(t, 1, summary.RedStocks)
	assert.Equal(t, "A.NS", summary.BestStock)
	assert.InDelta(t, 0.3, summary.BestStockCumReturn, 1e-12)

	final := FinalReturns(records)
	assert.InDelta(t, 0.0, final["B.NS"], 1e-12)
}

func TestSummarizeTieGoesToFirstSymbol(t *testing.T) {
	records := append(
		ComputeReturns(series("Z.NS", 10, 20)),
		ComputeReturns(series("M.NS", 5, 10))...,
	)

	summary := Summarize(records)
	assert.Equal(t, "M.NS", summary.BestStock)
}

func writeCleaned(t *testing.T, dir string, bars []contracts.Bar) {
	t.Helper()
	require.NoError(t, tabular.WriteBars(filepath.Join(dir, tabular.SymbolFileName(bars[0].Symbol)), bars))
}

func TestAnalyzerRun(t *testing.T) {
	root := t.TempDir()
	cleaned := filepath.Join(root, "cleaned")
	out := filepath.Join(root, "analysis_outputs")
	require.NoError(t, os.MkdirAll(cleaned, 0o755))

	writeCleaned(t, cleaned, series("A.NS", 10, 11, 12))
	writeCleaned(t, cleaned, series("B.NS", 10, 10))
	// combined file must not be analyzed as a symbol
	require.NoError(t, tabular.WriteBars(filepath.Join(cleaned, tabular.CombinedCleanedFile),
		append(series("A.NS", 10, 11, 12), series("B.NS", 10, 10)...)))
	require.NoError(t, os.WriteFile(filepath.Join(cleaned, "EMPTY_NS.csv"), []byte("Date,Close\n"), 0o644))

	report, err := NewAnalyzer(cleaned, out, logger.Nop()).WithParquet(true).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Symbols)
	assert.Equal(t, 5, report.Rows)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "EMPTY_NS.csv", report.Skipped[0].File)
	assert.Len(t, report.Outputs, 3)
	assert.FileExists(t, filepath.Join(out, tabular.AnalysisParquetFile))

	records, err := tabular.ReadReturns(filepath.Join(out, tabular.AnalysisFile))
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "A.NS", records[0].Symbol)
	assert.True(t, math.IsNaN(records[0].DailyReturn))
	assert.Equal(t, 0.0, records[3].CumulativeReturn) // B's first row restarts at 0

	summary, err := tabular.ReadSummary(filepath.Join(out, tabular.SummaryFile))
	require.NoError(t, err)
	assert.Equal(t, "A.NS", summary.BestStock)
	assert.Equal(t, 1, summary.GreenStocks)
	assert.Equal(t, 1, summary.RedStocks)
}

func TestAnalyzerNoInput(t *testing.T) {
	root := t.TempDir()
	_, err := NewAnalyzer(filepath.Join(root, "cleaned"), filepath.Join(root, "out"), logger.Nop()).Run(context.Background())

	var missing *contracts.MissingArtifactError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, contracts.StageAnalyze, missing.Stage)
	assert.Equal(t, contracts.StageClean, missing.Producer)
}
