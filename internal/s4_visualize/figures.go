package s4_visualize

import (
	"fmt"
	"time"

	"gonum.org/v1/plot"

	"github.com/wonny/nifty50/internal/charts"
	"github.com/wonny/nifty50/internal/contracts"
)

// Chart file names
const (
	AvgCloseChart         = "nifty50_avg_close.png"
	TopCumulativeChart    = "top10_cumulative_return.png"
	BottomCumulativeChart = "bottom10_cumulative_return.png"
	TopVolatilityChart    = "top10_volatility.png"
	DistributionChart     = "daily_return_distribution.png"
	HeatmapChart          = "correlation_heatmap.png"
)

// HistogramBins is the bin count of the daily return distribution
const HistogramBins = 80

// RankedCount is the size of every top/bottom list
const RankedCount = 10

// SymbolSeries returns one symbol's records in date order
func SymbolSeries(records []contracts.ReturnRecord, symbol string) []contracts.ReturnRecord {
	_, groups := GroupBySymbol(records)
	return groups[symbol]
}

func seriesOf(name string, records []contracts.ReturnRecord, value func(contracts.ReturnRecord) float64) charts.Series {
	s := charts.Series{
		Name:   name,
		Dates:  make([]time.Time, len(records)),
		Values: make([]float64, len(records)),
	}
	for i, r := range records {
		s.Dates[i] = r.Date
		s.Values[i] = value(r)
	}
	return s
}

func closeOf(r contracts.ReturnRecord) float64      { return r.Close }
func cumulativeOf(r contracts.ReturnRecord) float64 { return r.CumulativeReturn }

// PriceFigure is a symbol's close over time
func PriceFigure(records []contracts.ReturnRecord, symbol string) (*plot.Plot, error) {
	series := SymbolSeries(records, symbol)
	if len(series) == 0 {
		return nil, fmt.Errorf("unknown symbol %q", symbol)
	}
	return charts.TimeSeries(fmt.Sprintf("%s Close Price", symbol), "Close", seriesOf(symbol, series, closeOf))
}

// CumulativeFigure is a symbol's cumulative return over time
func CumulativeFigure(records []contracts.ReturnRecord, symbol string) (*plot.Plot, error) {
	series := SymbolSeries(records, symbol)
	if len(series) == 0 {
		return nil, fmt.Errorf("unknown symbol %q", symbol)
	}
	return charts.TimeSeries(fmt.Sprintf("%s Cumulative Return", symbol), "Cumulative return", seriesOf(symbol, series, cumulativeOf))
}

// CompareFigure overlays the cumulative returns of two symbols
func CompareFigure(records []contracts.ReturnRecord, a, b string) (*plot.Plot, error) {
	_, groups := GroupBySymbol(records)
	sa, sb := groups[a], groups[b]
	if len(sa) == 0 || len(sb) == 0 {
		return nil, fmt.Errorf("unknown symbol in comparison %q / %q", a, b)
	}
	return charts.TimeSeries(fmt.Sprintf("%s vs %s Cumulative Return", a, b), "Cumulative return",
		seriesOf(a, sa, cumulativeOf), seriesOf(b, sb, cumulativeOf))
}

// AverageCloseFigure is the cross-symbol mean close by date
func AverageCloseFigure(records []contracts.ReturnRecord) (*plot.Plot, error) {
	dates, values := AverageClose(records)
	return charts.TimeSeries("NIFTY 50 Average Close Price", "Average close",
		charts.Series{Name: "average", Dates: dates, Values: values})
}

// RankedFigure draws a bar per metric row
func RankedFigure(title, ylabel string, rows []contracts.SymbolMetrics, key func(contracts.SymbolMetrics) float64) (*plot.Plot, error) {
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, m := range rows {
		labels[i] = m.Symbol
		values[i] = key(m)
	}
	return charts.Bars(title, ylabel, labels, values)
}

// DistributionFigure is the histogram of every defined daily return
func DistributionFigure(records []contracts.ReturnRecord) (*plot.Plot, error) {
	return charts.Histogram("Distribution of Daily Returns", "Daily return", DailyReturns(records), HistogramBins)
}

// HeatmapFigure is the (restricted) correlation heatmap
func HeatmapFigure(records []contracts.ReturnRecord) (*plot.Plot, error) {
	corr := CorrelationMatrix(records).Restrict(MaxHeatmapSymbols)
	if len(corr.Symbols) < 2 {
		return nil, fmt.Errorf("need at least two symbols: %w", charts.ErrNoData)
	}
	return charts.Heatmap("Correlation of Daily Returns", corr.Symbols, corr.Matrix)
}
