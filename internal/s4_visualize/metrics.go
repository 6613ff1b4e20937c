package s4_visualize

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/nifty50/internal/contracts"
)

// SortRecords orders records by symbol, then date (stable)
func SortRecords(records []contracts.ReturnRecord) []contracts.ReturnRecord {
	sorted := make([]contracts.ReturnRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Symbol != sorted[j].Symbol {
			return sorted[i].Symbol < sorted[j].Symbol
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// GroupBySymbol splits sorted records into per-symbol runs, in symbol order
func GroupBySymbol(records []contracts.ReturnRecord) ([]string, map[string][]contracts.ReturnRecord) {
	groups := make(map[string][]contracts.ReturnRecord)
	symbols := make([]string, 0)
	for _, r := range SortRecords(records) {
		if _, ok := groups[r.Symbol]; !ok {
			symbols = append(symbols, r.Symbol)
		}
		groups[r.Symbol] = append(groups[r.Symbol], r)
	}
	return symbols, groups
}

// defined drops NaN values
func defined(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	xs := defined(values)
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// sampleStd is the n-1 standard deviation; NaN below two values
func sampleStd(values []float64) float64 {
	xs := defined(values)
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(xs, nil)
}

func last(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			return values[i]
		}
	}
	return math.NaN()
}

// ComputeMetrics aggregates one row per symbol, sorted by symbol
// ⭐ SSOT: 종목별 지표 계산은 여기서만
func ComputeMetrics(records []contracts.ReturnRecord) []contracts.SymbolMetrics {
	symbols, groups := GroupBySymbol(records)

	metrics := make([]contracts.SymbolMetrics, 0, len(symbols))
	for _, s := range symbols {
		g := groups[s]
		daily := make([]float64, len(g))
		closes := make([]float64, len(g))
		volumes := make([]float64, len(g))
		cums := make([]float64, len(g))
		for i, r := range g {
			daily[i] = r.DailyReturn
			closes[i] = r.Close
			volumes[i] = r.Volume
			cums[i] = r.CumulativeReturn
		}

		metrics = append(metrics, contracts.SymbolMetrics{
			Symbol:                s,
			AvgDailyReturn:        mean(daily),
			Volatility:            sampleStd(daily),
			LastClose:             last(closes),
			AvgVolume:             mean(volumes),
			TotalCumulativeReturn: last(cums),
		})
	}
	return metrics
}

// Rank returns up to n metrics ordered by key, NaN keys excluded.
// Ties keep the input order.
func Rank(metrics []contracts.SymbolMetrics, key func(contracts.SymbolMetrics) float64, descending bool, n int) []contracts.SymbolMetrics {
	ranked := make([]contracts.SymbolMetrics, 0, len(metrics))
	for _, m := range metrics {
		if !math.IsNaN(key(m)) {
			ranked = append(ranked, m)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if descending {
			return key(ranked[i]) > key(ranked[j])
		}
		return key(ranked[i]) < key(ranked[j])
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ByCumulativeReturn and ByVolatility are ranking keys
func ByCumulativeReturn(m contracts.SymbolMetrics) float64 { return m.TotalCumulativeReturn }
func ByVolatility(m contracts.SymbolMetrics) float64 { return m.Volatility }

// TopPerformers returns the n best symbols by total cumulative return
func TopPerformers(metrics []contracts.SymbolMetrics, n int) []contracts.SymbolMetrics {
	return Rank(metrics, ByCumulativeReturn, true, n)
}

// BottomPerformers returns the n worst symbols by total cumulative return
func BottomPerformers(metrics []contracts.SymbolMetrics, n int) []contracts.SymbolMetrics {
	return Rank(metrics, ByCumulativeReturn, false, n)
}

// MostVolatile returns the n most volatile symbols
func MostVolatile(metrics []contracts.SymbolMetrics, n int) []contracts.SymbolMetrics {
	return Rank(metrics, ByVolatility, true, n)
}

// AverageClose returns the cross-symbol mean close per date, ascending
func AverageClose(records []contracts.ReturnRecord) ([]time.Time, []float64) {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, r := range records {
		if math.IsNaN(r.Close) {
			continue
		}
		sums[r.Date] += r.Close
		counts[r.Date]++
	}

	dates := make([]time.Time, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = sums[d] / float64(counts[d])
	}
	return dates, values
}

// DailyReturns returns every defined daily return
func DailyReturns(records []contracts.ReturnRecord) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if !math.IsNaN(r.DailyReturn) && !math.IsInf(r.DailyReturn, 0) {
			out = append(out, r.DailyReturn)
		}
	}
	return out
}
