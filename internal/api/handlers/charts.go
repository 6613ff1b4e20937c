package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gonum.org/v1/plot"

	"github.com/wonny/nifty50/internal/charts"
	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/s4_visualize"
	"github.com/wonny/nifty50/pkg/logger"
)

// ChartHandler renders per-symbol and comparison charts on demand
type ChartHandler struct {
	files  Files
	logger *logger.Logger
}

// NewChartHandler creates a new chart handler
func NewChartHandler(files Files, log *logger.Logger) *ChartHandler {
	return &ChartHandler{
		files:  files,
		logger: log,
	}
}

// Price renders a symbol's close price
// GET /charts/symbol/{symbol}/price.png
func (h *ChartHandler) Price(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	h.serve(w, charts.Compact, []string{symbol}, func(records []contracts.ReturnRecord) (*plot.Plot, error) {
		return s4_visualize.PriceFigure(records, symbol)
	})
}

// Cumulative renders a symbol's cumulative return
// GET /charts/symbol/{symbol}/cumulative.png
func (h *ChartHandler) Cumulative(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	h.serve(w, charts.Compact, []string{symbol}, func(records []contracts.ReturnRecord) (*plot.Plot, error) {
		return s4_visualize.CumulativeFigure(records, symbol)
	})
}

// Compare overlays two symbols' cumulative returns
// GET /charts/compare.png?a=&b=
func (h *ChartHandler) Compare(w http.ResponseWriter, r *http.Request) {
	a, b := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	if a == "" || b == "" {
		http.Error(w, "query parameters a and b are required", http.StatusBadRequest)
		return
	}
	h.serve(w, charts.Wide, []string{a, b}, func(records []contracts.ReturnRecord) (*plot.Plot, error) {
		return s4_visualize.CompareFigure(records, a, b)
	})
}

func (h *ChartHandler) serve(w http.ResponseWriter, size charts.Size, symbols []string, build func([]contracts.ReturnRecord) (*plot.Plot, error)) {
	records, err := h.files.loadRecords()
	if err != nil {
		var missing *contracts.MissingArtifactError
		if errors.As(err, &missing) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		h.logger.WithError(err).Error("Failed to read analysis file")
		http.Error(w, "failed to read analysis file", http.StatusInternalServerError)
		return
	}

	known, _ := s4_visualize.GroupBySymbol(records)
	for _, s := range symbols {
		if !contains(known, s) {
			http.Error(w, "unknown symbol "+s, http.StatusNotFound)
			return
		}
	}

	p, err := build(records)
	var buf bytes.Buffer
	if err == nil {
		err = charts.WritePNG(&buf, p, size)
	}
	if err != nil {
		h.logger.WithError(err).WithField("symbols", symbols).Warn("Chart not rendered")
		status := http.StatusInternalServerError
		if errors.Is(err, charts.ErrNoData) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}
