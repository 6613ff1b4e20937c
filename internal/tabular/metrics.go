package tabular

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/wonny/nifty50/internal/contracts"
)

// WriteSummary writes the one-row market summary
func WriteSummary(path string, s contracts.MarketSummary) error {
	return writeCSV(path, SummaryColumns, func(w *csv.Writer) error {
		return w.Write([]string{
			strconv.Itoa(s.TotalStocks),
			strconv.Itoa(s.GreenStocks),
			strconv.Itoa(s.RedStocks),
			s.BestStock,
			FormatFloat(s.BestStockCumReturn),
		})
	})
}

// ReadSummary reads the first summary row
func ReadSummary(path string) (*contracts.MarketSummary, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("%s: summary has no data row", path)
	}
	row := t.Rows[0]

	atoi := func(name string) (int, error) {
		v := strings.TrimSpace(Cell(row, t.Column(name)))
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid %s %q", path, name, v)
		}
		return n, nil
	}

	s := &contracts.MarketSummary{}
	if s.TotalStocks, err = atoi("total_stocks"); err != nil {
		return nil, err
	}
	if s.GreenStocks, err = atoi("green_stocks"); err != nil {
		return nil, err
	}
	if s.RedStocks, err = atoi("red_stocks"); err != nil {
		return nil, err
	}
	s.BestStock = Cell(row, t.Column("best_stock"))
	s.BestStockCumReturn = ParseFloat(Cell(row, t.Column("best_stock_cum_return")))
	return s, nil
}

// WriteMetrics writes one row per symbol in the given order
func WriteMetrics(path string, metrics []contracts.SymbolMetrics) error {
	return writeCSV(path, MetricsColumns, func(w *csv.Writer) error {
		for _, m := range metrics {
			err := w.Write([]string{
				m.Symbol,
				FormatFloat(m.AvgDailyReturn),
				FormatFloat(m.Volatility),
				FormatFloat(m.LastClose),
				FormatFloat(m.AvgVolume),
				FormatFloat(m.TotalCumulativeReturn),
			})
			if err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
		return nil
	})
}

// ReadMetrics reads the per-symbol metrics file
func ReadMetrics(path string) ([]contracts.SymbolMetrics, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	sym := t.Column("Symbol")
	if sym < 0 {
		return nil, fmt.Errorf("%s: missing Symbol column", path)
	}
	avg := t.Column("Avg_Daily_Return")
	vol := t.Column("Volatility")
	last := t.Column("Last_Close")
	avgVol := t.Column("Avg_Volume")
	total := t.Column("Total_Cumulative_Return")

	metrics := make([]contracts.SymbolMetrics, 0, len(t.Rows))
	for _, row := range t.Rows {
		s := strings.TrimSpace(Cell(row, sym))
		if s == "" {
			continue
		}
		metrics = append(metrics, contracts.SymbolMetrics{
			Symbol:                s,
			AvgDailyReturn:        ParseFloat(Cell(row, avg)),
			Volatility:            ParseFloat(Cell(row, vol)),
			LastClose:             ParseFloat(Cell(row, last)),
			AvgVolume:             ParseFloat(Cell(row, avgVol)),
			TotalCumulativeReturn: ParseFloat(Cell(row, total)),
		})
	}
	return metrics, nil
}
