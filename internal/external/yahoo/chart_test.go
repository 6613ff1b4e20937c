package yahoo

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nifty50/pkg/config"
	"github.com/wonny/nifty50/pkg/httputil"
	"github.com/wonny/nifty50/pkg/logger"
)

// two IST sessions: 2024-01-02 and 2024-01-03 09:15 +05:30; second close is null
const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "TCS.NS", "currency": "INR", "gmtoffset": 19800},
      "timestamp": [1704167100, 1704253500],
      "indicators": {
        "quote": [{
          "open":   [3700.0, 3755.5],
          "high":   [3800.0, 3790.0],
          "low":    [3690.0, 3740.0],
          "close":  [3790.5, null],
          "volume": [1200000, 900000]
        }],
        "adjclose": [{"adjclose": [3750.25, null]}]
      }
    }],
    "error": null
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Yahoo: config.YahooConfig{
		BaseURL: server.URL, Range: "1y", Interval: "1d",
		Pause: time.Millisecond, Timeout: 5 * time.Second,
	}}
	return NewClient(httputil.New(cfg, logger.Nop()), cfg.Yahoo, logger.Nop())
}

func TestFetchBars(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/TCS.NS", r.URL.Path)
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartFixture))
	})

	bars, err := client.FetchBars(context.Background(), "TCS.NS")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 3700.0, bars[0].Open)
	assert.Equal(t, 3790.5, bars[0].Close)
	assert.Equal(t, 3750.25, bars[0].AdjClose)
	assert.Equal(t, 1200000.0, bars[0].Volume)
	assert.Equal(t, "TCS.NS", bars[0].Symbol)

	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), bars[1].Date)
	assert.True(t, math.IsNaN(bars[1].Close))
	assert.True(t, math.IsNaN(bars[1].AdjClose))
}

func TestFetchBarsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := client.FetchBars(context.Background(), "GONE.NS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol may be delisted")
}

func TestFetchBarsServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchBars(context.Background(), "TCS.NS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestParseChart(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr error
	}{
		{"empty result", `{"chart":{"result":[],"error":null}}`, 0, ErrNoData},
		{"no timestamps", `{"chart":{"result":[{"meta":{},"indicators":{"quote":[{}]}}],"error":null}}`, 0, ErrNoData},
		{"no adjclose falls back", `{"chart":{"result":[{"meta":{"gmtoffset":0},"timestamp":[1704153600],"indicators":{"quote":[{"close":[10.5]}]}}]}}`, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars, err := parseChart([]byte(tt.body), "X.NS")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			require.Len(t, bars, tt.want)
			assert.Equal(t, 10.5, bars[0].AdjClose)
			assert.True(t, math.IsNaN(bars[0].Open))
		})
	}
}

func TestParseChartInvalidJSON(t *testing.T) {
	_, err := parseChart([]byte("<html>"), "X.NS")
	assert.Error(t, err)
}
