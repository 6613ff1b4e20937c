package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nifty50/pkg/config"
	"github.com/wonny/nifty50/pkg/logger"
)

func testConfig(pause time.Duration) *config.Config {
	return &config.Config{
		Env:      "development",
		LogLevel: "error",
		Yahoo: config.YahooConfig{
			Pause:   pause,
			Timeout: 5 * time.Second,
		},
	}
}

func TestNew(t *testing.T) {
	client := New(testConfig(time.Second), logger.Nop())

	require.NotNil(t, client)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	require.NotNil(t, client.limiter)
	assert.Equal(t, 1, client.limiter.Burst())
}

func TestNewDefaultTimeout(t *testing.T) {
	client := New(&config.Config{}, logger.Nop())

	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Nil(t, client.limiter)
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(testConfig(time.Millisecond), logger.Nop())

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestConfiguredUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nifty-test/2.0", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(time.Millisecond)
	cfg.Yahoo.UserAgent = "nifty-test/2.0"
	client := New(cfg, logger.Nop())
	assert.Equal(t, "nifty-test/2.0", client.userAgent)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
}

func TestNoRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(testConfig(time.Millisecond), logger.Nop())

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestPauseBetweenRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	pause := 50 * time.Millisecond
	client := New(testConfig(pause), logger.Nop())
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := client.Get(ctx, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	// first request is immediate, the next two each wait one pause
	assert.GreaterOrEqual(t, time.Since(start), 2*pause-5*time.Millisecond)
}

func TestPauseRespectsContext(t *testing.T) {
	client := New(testConfig(time.Hour), logger.Nop())
	// consume the only token
	require.True(t, client.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "http://127.0.0.1:1")
	assert.Error(t, err)
}

func TestContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(testConfig(time.Millisecond), logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, server.URL)
	assert.Error(t, err)
}
