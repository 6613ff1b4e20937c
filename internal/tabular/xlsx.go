package tabular

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/nifty50/internal/contracts"
)

// MetricsSheet is the worksheet name of the metrics workbook
const MetricsSheet = "metrics"

// WriteMetricsXLSX writes the per-symbol metrics as a workbook; NaN cells stay empty
func WriteMetricsXLSX(path string, metrics []contracts.SymbolMetrics) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), MetricsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(MetricsColumns))
	for i, c := range MetricsColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(MetricsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, m := range metrics {
		row := []interface{}{
			m.Symbol,
			cellValue(m.AvgDailyReturn),
			cellValue(m.Volatility),
			cellValue(m.LastClose),
			cellValue(m.AvgVolume),
			cellValue(m.TotalCumulativeReturn),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(MetricsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
