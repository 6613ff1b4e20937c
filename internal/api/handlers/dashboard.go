package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/s4_visualize"
	"github.com/wonny/nifty50/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTitle = "NIFTY 50 Dashboard"

var funcs = template.FuncMap{
	"pct":        formatPercent,
	"num":        formatNumber,
	"pathEscape": url.PathEscape,
	"dict":       dict,
}

func formatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func dict(kv ...interface{}) (map[string]interface{}, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict: odd argument count")
	}
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[key] = kv[i+1]
	}
	return m, nil
}

// page templates: the layout's "content" slot is bound per page
func parsePage(content string) *template.Template {
	t := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	return template.Must(t.New("content").Parse(`{{template "` + content + `" .}}`))
}

var (
	dashboardPage = parsePage("dashboard-content")
	failurePage   = parsePage("failure-content")
)

// DashboardHandler renders the HTML dashboard
// ⭐ SSOT: 대시보드 화면은 이 핸들러에서만
type DashboardHandler struct {
	files  Files
	logger *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(files Files, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		files:  files,
		logger: log,
	}
}

type dashboardView struct {
	Title        string
	Summary      *contracts.MarketSummary
	Top          []contracts.SymbolMetrics
	Bottom       []contracts.SymbolMetrics
	Symbols      []string
	Symbol       string
	CompareA     string
	CompareB     string
	Recomputed   bool
	MetricsFile  string
	StaticCharts []string
}

type failureView struct {
	Title   string
	Message string
	Path    string
	Stage   string
}

// Index renders the dashboard page
// GET /?symbol=&a=&b=
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	st, err := h.files.load()
	if err != nil {
		h.fail(w, err)
		return
	}

	q := r.URL.Query()
	view := dashboardView{
		Title:        pageTitle,
		Summary:      st.Summary,
		Top:          s4_visualize.TopPerformers(st.Metrics, s4_visualize.RankedCount),
		Bottom:       s4_visualize.BottomPerformers(st.Metrics, s4_visualize.RankedCount),
		Symbols:      st.Symbols,
		Symbol:       pick(st.Symbols, q.Get("symbol"), 0),
		CompareA:     pick(st.Symbols, q.Get("a"), 0),
		CompareB:     pick(st.Symbols, q.Get("b"), 1),
		Recomputed:   st.Recomputed,
		MetricsFile:  h.files.metricsPath(),
		StaticCharts: h.files.staticCharts(),
	}

	h.render(w, http.StatusOK, dashboardPage, view)
}

// fail renders the error page; a missing input is 503, anything else 500
func (h *DashboardHandler) fail(w http.ResponseWriter, err error) {
	view := failureView{Title: pageTitle, Message: err.Error()}
	status := http.StatusInternalServerError

	var missing *contracts.MissingArtifactError
	if errors.As(err, &missing) {
		status = http.StatusServiceUnavailable
		view.Message = "Dashboard inputs are not available."
		view.Path = missing.Path
		view.Stage = missing.Producer
		h.logger.WithField("path", missing.Path).Warn("Dashboard input missing")
	} else {
		h.logger.WithError(err).Error("Failed to load dashboard inputs")
	}

	h.render(w, status, failurePage, view)
}

func (h *DashboardHandler) render(w http.ResponseWriter, status int, t *template.Template, data interface{}) {
	// buffered so a failed render writes nothing
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.WithError(err).Error("Failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

