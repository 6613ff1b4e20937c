package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/nifty50/internal/api/handlers"
	"github.com/wonny/nifty50/pkg/logger"
	"github.com/wonny/nifty50/pkg/metrics"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(files handlers.Files, m *metrics.Metrics, log *logger.Logger) http.Handler {
	dashboard := handlers.NewDashboardHandler(files, log)
	chart := handlers.NewChartHandler(files, log)
	data := handlers.NewDataHandler(files, log)

	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}

	// Dashboard page
	r.HandleFunc("/", dashboard.Index).Methods("GET")

	// On-demand charts
	r.HandleFunc("/charts/symbol/{symbol}/price.png", chart.Price).Methods("GET")
	r.HandleFunc("/charts/symbol/{symbol}/cumulative.png", chart.Cumulative).Methods("GET")
	r.HandleFunc("/charts/compare.png", chart.Compare).Methods("GET")

	// Static charts written by the visualize stage
	r.PathPrefix("/static/charts/").Handler(
		http.StripPrefix("/static/charts/", http.FileServer(http.Dir(files.ChartsDir))),
	).Methods("GET")

	// JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/summary", data.GetSummary).Methods("GET")
	api.HandleFunc("/metrics", data.GetMetrics).Methods("GET")
	api.HandleFunc("/symbols", data.GetSymbols).Methods("GET")
	api.HandleFunc("/symbols/{symbol}", data.GetSymbol).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log, m))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "nifty50-dashboard",
	})
}

// statusRecorder captures the status code for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests and records them by route template
func loggingMiddleware(log *logger.Logger, m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.ObserveRequest(route, rec.status, time.Since(start))

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
