package tabular

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/wonny/nifty50/internal/contracts"
)

func barRecord(b contracts.Bar) []string {
	return []string{
		FormatDate(b.Date),
		FormatFloat(b.Open),
		FormatFloat(b.High),
		FormatFloat(b.Low),
		FormatFloat(b.Close),
		FormatFloat(b.AdjClose),
		FormatFloat(b.Volume),
		b.Symbol,
	}
}

// WriteBars writes raw or cleaned bars (same layout)
func WriteBars(path string, bars []contracts.Bar) error {
	return writeCSV(path, BarColumns, func(w *csv.Writer) error {
		for _, b := range bars {
			if err := w.Write(barRecord(b)); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
		return nil
	})
}

// BarColumnsOf locates the bar columns of a table.
// Date falls back to the first column; other missing columns are -1.
type BarColumnsOf struct {
	Date, Open, High, Low, Close, AdjClose, Volume, Symbol int
}

// LocateBarColumns maps headers to bar fields
func LocateBarColumns(t *Table) BarColumnsOf {
	c := BarColumnsOf{
		Date:     t.Column("Date", "Datetime", "Timestamp"),
		Open:     t.Column("Open"),
		High:     t.Column("High"),
		Low:      t.Column("Low"),
		Close:    t.Column("Close"),
		AdjClose: t.Column("Adj Close", "Adj_Close", "AdjClose"),
		Volume:   t.Column("Volume"),
		Symbol:   t.Column("Symbol", "Ticker"),
	}
	if c.Date < 0 {
		c.Date = 0
	}
	return c
}

// ParseBar decodes one row; ok is false when the date does not parse
func (c BarColumnsOf) ParseBar(row []string, fallbackSymbol string) (contracts.Bar, bool) {
	date, ok := ParseDate(Cell(row, c.Date))
	if !ok {
		return contracts.Bar{}, false
	}
	symbol := strings.TrimSpace(Cell(row, c.Symbol))
	if symbol == "" {
		symbol = fallbackSymbol
	}
	return contracts.Bar{
		Date:     date,
		Open:     ParseFloat(Cell(row, c.Open)),
		High:     ParseFloat(Cell(row, c.High)),
		Low:      ParseFloat(Cell(row, c.Low)),
		Close:    ParseFloat(Cell(row, c.Close)),
		AdjClose: ParseFloat(Cell(row, c.AdjClose)),
		Volume:   ParseFloat(Cell(row, c.Volume)),
		Symbol:   symbol,
	}, true
}

// ReadBars reads a bar file, dropping rows with unparseable dates
func ReadBars(path string) ([]contracts.Bar, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	cols := LocateBarColumns(t)
	fallback := SymbolFromFileName(path)

	bars := make([]contracts.Bar, 0, len(t.Rows))
	for _, row := range t.Rows {
		if b, ok := cols.ParseBar(row, fallback); ok {
			bars = append(bars, b)
		}
	}
	return bars, nil
}
