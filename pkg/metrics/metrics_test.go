package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStage(t *testing.T) {
	m := New()

	m.ObserveStage("fetch", time.Now(), nil)
	m.ObserveStage("fetch", time.Now(), errors.New("boom"))
	m.ObserveStage("clean", time.Now(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRuns.WithLabelValues("fetch", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRuns.WithLabelValues("fetch", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRuns.WithLabelValues("clean", "success")))
}

func TestSetItemsAndFailures(t *testing.T) {
	m := New()

	m.SetItems("analyze", "symbols", 50)
	m.AddFetchFailures(2)
	m.AddFetchFailures(0)

	assert.Equal(t, 50.0, testutil.ToFloat64(m.StageItems.WithLabelValues("analyze", "symbols")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchFailures))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStage("fetch", time.Now(), nil)
		m.SetItems("fetch", "symbols", 1)
		m.AddFetchFailures(1)
		m.ObserveRequest("/", 200, time.Millisecond)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/summary", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `nifty50_http_requests_total{code="200",route="/api/summary"} 1`)
}
