package tabular

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/wonny/nifty50/internal/contracts"
)

// ReturnRow is the parquet layout of the analysis file; nil = missing
type ReturnRow struct {
	Date              string   `parquet:"date"`
	Open              *float64 `parquet:"open,optional"`
	High              *float64 `parquet:"high,optional"`
	Low               *float64 `parquet:"low,optional"`
	Close             *float64 `parquet:"close,optional"`
	AdjClose          *float64 `parquet:"adj_close,optional"`
	Volume            *float64 `parquet:"volume,optional"`
	Symbol            string   `parquet:"symbol"`
	DailyReturn       *float64 `parquet:"daily_return,optional"`
	DailyReturnFilled *float64 `parquet:"daily_return_filled,optional"`
	CumulativeReturn  *float64 `parquet:"cumulative_return,optional"`
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// WriteReturnsParquet writes the analysis records as parquet
func WriteReturnsParquet(path string, records []contracts.ReturnRecord) error {
	rows := make([]ReturnRow, len(records))
	for i, r := range records {
		rows[i] = ReturnRow{
			Date:              FormatDate(r.Date),
			Open:              optional(r.Open),
			High:              optional(r.High),
			Low:               optional(r.Low),
			Close:             optional(r.Close),
			AdjClose:          optional(r.AdjClose),
			Volume:            optional(r.Volume),
			Symbol:            r.Symbol,
			DailyReturn:       optional(r.DailyReturn),
			DailyReturnFilled: optional(r.DailyReturnFilled),
			CumulativeReturn:  optional(r.CumulativeReturn),
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet %s: %w", path, err)
	}
	return nil
}

// ReadReturnsParquet reads rows written by WriteReturnsParquet
func ReadReturnsParquet(path string) ([]ReturnRow, error) {
	rows, err := parquet.ReadFile[ReturnRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet %s: %w", path, err)
	}
	return rows, nil
}
