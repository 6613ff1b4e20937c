package contracts

import (
	"math"
	"time"
)

// SectorUnknown is the placeholder sector written for every symbol.
// No enrichment source exists yet; the column is kept for it.
const SectorUnknown = "Unknown"

// Bar represents one daily OHLCV row for a symbol
// ⭐ SSOT: 일봉 데이터 구조는 여기서만 정의
//
// Numeric fields use NaN as the missing marker.
type Bar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   float64   `json:"volume"`
	Symbol   string    `json:"symbol"`
}

// CleanedBar is a Bar that passed the cleaner: calendar date, non-missing
// close, chronological within its symbol.
type CleanedBar = Bar

// SymbolRow is one row of the symbols dimension table
type SymbolRow struct {
	Symbol string `json:"symbol"`
	Sector string `json:"sector"`
}

// Missing returns the missing-value marker
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing-value marker
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// DistinctSymbols returns one SymbolRow per symbol in first-appearance order
func DistinctSymbols(bars []Bar) []SymbolRow {
	seen := make(map[string]bool)
	rows := make([]SymbolRow, 0)
	for _, b := range bars {
		if seen[b.Symbol] {
			continue
		}
		seen[b.Symbol] = true
		rows = append(rows, SymbolRow{Symbol: b.Symbol, Sector: SectorUnknown})
	}
	return rows
}
