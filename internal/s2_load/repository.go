package s2_load

import (
	"context"
	"math"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/tabular"
)

// Table names
const (
	PricesTable  = "daily_prices"
	SymbolsTable = "symbols"
)

// PriceColumns is the column order of daily_prices
var PriceColumns = tabular.BarColumns

// Store replaces both tables of one target
type Store interface {
	Name() string
	ReplaceAll(ctx context.Context, bars []contracts.Bar, symbols []contracts.SymbolRow) error
}

// nullable maps NaN to SQL NULL
func nullable(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// priceArgs returns one daily_prices row in PriceColumns order
func priceArgs(b contracts.Bar) []interface{} {
	return []interface{}{
		tabular.FormatDate(b.Date),
		nullable(b.Open),
		nullable(b.High),
		nullable(b.Low),
		nullable(b.Close),
		nullable(b.AdjClose),
		nullable(b.Volume),
		b.Symbol,
	}
}
