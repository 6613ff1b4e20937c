package s3_analysis

import (
	"math"
	"sort"

	"github.com/wonny/nifty50/internal/contracts"
)

// ComputeReturns derives the return series of one symbol's bars.
// Bars are sorted by date (stable) first; the input slice is not modified.
func ComputeReturns(bars []contracts.Bar) []contracts.ReturnRecord {
	sorted := make([]contracts.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	records := make([]contracts.ReturnRecord, len(sorted))
	growth := 1.0
	for i, b := range sorted {
		daily := math.NaN()
		if i > 0 {
			daily = b.Close/sorted[i-1].Close - 1
		}
		filled := daily
		if math.IsNaN(filled) {
			filled = 0
		}
		growth *= 1 + filled

		records[i] = contracts.ReturnRecord{
			Bar:               b,
			DailyReturn:       daily,
			DailyReturnFilled: filled,
			CumulativeReturn:  growth - 1,
		}
	}
	return records
}

// FinalReturns returns each symbol's last cumulative return, keyed by symbol.
// Records must be chronological within a symbol.
func FinalReturns(records []contracts.ReturnRecord) map[string]float64 {
	final := make(map[string]float64)
	for _, r := range records {
		final[r.Symbol] = r.CumulativeReturn
	}
	return final
}

// Summarize builds the market summary.
// Best performer ties go to the lexically first symbol.
func Summarize(records []contracts.ReturnRecord) contracts.MarketSummary {
	final := FinalReturns(records)

	symbols := make([]string, 0, len(final))
	for s := range final {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	summary := contracts.MarketSummary{TotalStocks: len(symbols), BestStockCumReturn: math.NaN()}
	for _, s := range symbols {
		cum := final[s]
		if cum > 0 {
			summary.GreenStocks++
		} else {
			summary.RedStocks++
		}
		if math.IsNaN(cum) {
			continue
		}
		if summary.BestStock == "" || cum > summary.BestStockCumReturn {
			summary.BestStock = s
			summary.BestStockCumReturn = cum
		}
	}
	return summary
}
