package tabular

import (
	"path/filepath"
	"strings"
)

// Artifact file names
// ⭐ SSOT: 산출물 파일명은 여기서만 정의
const (
	CombinedRawFile     = "nifty50_all.csv"
	CombinedCleanedFile = "nifty50_cleaned.csv"
	AnalysisFile        = "nifty50_analysis.csv"
	AnalysisParquetFile = "nifty50_analysis.parquet"
	SummaryFile         = "metrics_summary.csv"
	MetricsFile         = "metrics_by_symbol.csv"
	MetricsXLSXFile     = "metrics_by_symbol.xlsx"
)

// Column headers
var (
	BarColumns     = []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume", "Symbol"}
	ReturnColumns  = append(append([]string{}, BarColumns...), "Daily_Return", "Daily_Return_filled", "Cumulative_Return")
	SummaryColumns = []string{"total_stocks", "green_stocks", "red_stocks", "best_stock", "best_stock_cum_return"}
	MetricsColumns = []string{"Symbol", "Avg_Daily_Return", "Volatility", "Last_Close", "Avg_Volume", "Total_Cumulative_Return"}
)

// SymbolFileName maps a ticker to its per-symbol CSV name ("RELIANCE.NS" → "RELIANCE_NS.csv")
func SymbolFileName(symbol string) string {
	return strings.ReplaceAll(symbol, ".", "_") + ".csv"
}

// SymbolFromFileName reverses SymbolFileName ("RELIANCE_NS.csv" → "RELIANCE.NS")
func SymbolFromFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return strings.ReplaceAll(base, "_", ".")
}

// CleanedFileName maps a raw file name to the cleaned one, named by symbol ("RELIANCE_NS.csv" → "RELIANCE.NS.csv")
func CleanedFileName(rawName string) string {
	return SymbolFromFileName(rawName) + ".csv"
}

// ChartFileName is the per-symbol close chart name
func ChartFileName(symbol string) string {
	r := strings.NewReplacer("/", "_", " ", "_")
	return r.Replace(symbol) + "_close.png"
}

// SymbolFiles returns the per-symbol CSVs in dir, sorted, excluding the combined file
func SymbolFiles(dir, combined string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if filepath.Base(m) == combined {
			continue
		}
		files = append(files, m)
	}
	// Glob already sorts lexically
	return files, nil
}
