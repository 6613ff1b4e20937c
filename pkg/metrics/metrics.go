package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nifty50"

// Metrics holds every Prometheus collector of the pipeline
// ⭐ SSOT: 모든 메트릭은 여기서만 등록
type Metrics struct {
	Registry *prometheus.Registry

	StageRuns     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	StageItems    *prometheus.GaugeVec
	FetchFailures prometheus.Counter
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		StageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by outcome.",
		}, []string{"stage", "status"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of pipeline stages.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"stage"}),
		StageItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_items",
			Help:      "Items handled by the last run of a stage (symbols, rows, charts).",
		}, []string{"stage", "kind"}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Symbols the fetcher could not retrieve.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Dashboard requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Dashboard request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.Registry.MustRegister(
		m.StageRuns,
		m.StageDuration,
		m.StageItems,
		m.FetchFailures,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveStage records one stage execution
func (m *Metrics) ObserveStage(stage string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.StageRuns.WithLabelValues(stage, status).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// SetItems records a count produced by the last run of a stage
func (m *Metrics) SetItems(stage, kind string, n int) {
	if m == nil {
		return
	}
	m.StageItems.WithLabelValues(stage, kind).Set(float64(n))
}

// AddFetchFailures increments the failed-symbol counter
func (m *Metrics) AddFetchFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.FetchFailures.Add(float64(n))
}

// ObserveRequest records one dashboard request
func (m *Metrics) ObserveRequest(route string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
