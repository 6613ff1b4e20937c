package tabular

import (
	"encoding/csv"
	"fmt"

	"github.com/wonny/nifty50/internal/contracts"
)

// WriteReturns writes the analysis file
func WriteReturns(path string, records []contracts.ReturnRecord) error {
	return writeCSV(path, ReturnColumns, func(w *csv.Writer) error {
		for _, r := range records {
			row := append(barRecord(r.Bar),
				FormatFloat(r.DailyReturn),
				FormatFloat(r.DailyReturnFilled),
				FormatFloat(r.CumulativeReturn),
			)
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
		return nil
	})
}

// ReadReturns reads the analysis file in file order
func ReadReturns(path string) ([]contracts.ReturnRecord, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	cols := LocateBarColumns(t)
	daily := t.Column("Daily_Return")
	filled := t.Column("Daily_Return_filled")
	cum := t.Column("Cumulative_Return")
	if cum < 0 {
		return nil, fmt.Errorf("%s: missing Cumulative_Return column", path)
	}

	records := make([]contracts.ReturnRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		b, ok := cols.ParseBar(row, "")
		if !ok || b.Symbol == "" {
			continue
		}
		records = append(records, contracts.ReturnRecord{
			Bar:               b,
			DailyReturn:       ParseFloat(Cell(row, daily)),
			DailyReturnFilled: ParseFloat(Cell(row, filled)),
			CumulativeReturn:  ParseFloat(Cell(row, cum)),
		})
	}
	return records, nil
}
