package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/s4_visualize"
	"github.com/wonny/nifty50/internal/tabular"
	"github.com/wonny/nifty50/pkg/logger"
)

// DataHandler serves the dashboard data as JSON
// ⭐ SSOT: 대시보드 JSON API 핸들러는 이 구조체에서만
type DataHandler struct {
	files  Files
	logger *logger.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(files Files, log *logger.Logger) *DataHandler {
	return &DataHandler{
		files:  files,
		logger: log,
	}
}

// SummaryResponse is the market summary
type SummaryResponse struct {
	TotalStocks        int      `json:"total_stocks"`
	GreenStocks        int      `json:"green_stocks"`
	RedStocks          int      `json:"red_stocks"`
	GreenRatio         *float64 `json:"green_ratio"`
	BestStock          string   `json:"best_stock"`
	BestStockCumReturn *float64 `json:"best_stock_cum_return"`
}

// MetricsResponse is one symbol's metrics row
type MetricsResponse struct {
	Symbol                string   `json:"symbol"`
	AvgDailyReturn        *float64 `json:"avg_daily_return"`
	Volatility            *float64 `json:"volatility"`
	LastClose             *float64 `json:"last_close"`
	AvgVolume             *float64 `json:"avg_volume"`
	TotalCumulativeReturn *float64 `json:"total_cumulative_return"`
}

// SeriesPoint is one day of a symbol's analysis series
type SeriesPoint struct {
	Date             string   `json:"date"`
	Close            *float64 `json:"close"`
	Volume           *float64 `json:"volume"`
	DailyReturn      *float64 `json:"daily_return"`
	CumulativeReturn *float64 `json:"cumulative_return"`
}

func toMetricsResponse(m contracts.SymbolMetrics) MetricsResponse {
	return MetricsResponse{
		Symbol:                m.Symbol,
		AvgDailyReturn:        number(m.AvgDailyReturn),
		Volatility:            number(m.Volatility),
		LastClose:             number(m.LastClose),
		AvgVolume:             number(m.AvgVolume),
		TotalCumulativeReturn: number(m.TotalCumulativeReturn),
	}
}

// GetSummary returns the market summary
// GET /api/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	path := h.files.summaryPath()
	if err := contracts.RequireArtifact(contracts.StageDashboard, path, contracts.StageAnalyze); err != nil {
		h.fail(w, err)
		return
	}
	s, err := tabular.ReadSummary(path)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": SummaryResponse{
			TotalStocks:        s.TotalStocks,
			GreenStocks:        s.GreenStocks,
			RedStocks:          s.RedStocks,
			GreenRatio:         number(s.GreenRatio()),
			BestStock:          s.BestStock,
			BestStockCumReturn: number(s.BestStockCumReturn),
		},
	})
}

// GetMetrics returns every symbol's metrics, recomputed when the metrics file is absent
// GET /api/metrics
func (h *DataHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	st, err := h.files.load()
	if err != nil {
		h.fail(w, err)
		return
	}

	result := make([]MetricsResponse, len(st.Metrics))
	for i, m := range st.Metrics {
		result[i] = toMetricsResponse(m)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"recomputed": st.Recomputed,
		"data":       result,
	})
}

// GetSymbols returns the symbols present in the analysis file
// GET /api/symbols
func (h *DataHandler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	records, err := h.files.loadRecords()
	if err != nil {
		h.fail(w, err)
		return
	}
	symbols, _ := s4_visualize.GroupBySymbol(records)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(symbols),
		"data":    symbols,
	})
}

// GetSymbol returns one symbol's metrics and daily series
// GET /api/symbols/{symbol}
func (h *DataHandler) GetSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	records, err := h.files.loadRecords()
	if err != nil {
		h.fail(w, err)
		return
	}
	series := s4_visualize.SymbolSeries(records, symbol)
	if len(series) == 0 {
		respondError(w, http.StatusNotFound, "unknown symbol "+symbol)
		return
	}

	metrics := s4_visualize.ComputeMetrics(series)
	points := make([]SeriesPoint, len(series))
	for i, rec := range series {
		points[i] = SeriesPoint{
			Date:             tabular.FormatDate(rec.Date),
			Close:            number(rec.Close),
			Volume:           number(rec.Volume),
			DailyReturn:      number(rec.DailyReturn),
			CumulativeReturn: number(rec.CumulativeReturn),
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"metrics": toMetricsResponse(metrics[0]),
			"series":  points,
		},
	})
}

func (h *DataHandler) fail(w http.ResponseWriter, err error) {
	var missing *contracts.MissingArtifactError
	if errors.As(err, &missing) {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": err.Error(),
			"path":  missing.Path,
			"stage": missing.Producer,
		})
		return
	}
	h.logger.WithError(err).Error("Failed to load dashboard data")
	respondError(w, http.StatusInternalServerError, "failed to load dashboard data")
}
