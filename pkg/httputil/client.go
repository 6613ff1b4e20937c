package httputil

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/nifty50/pkg/config"
	"github.com/wonny/nifty50/pkg/logger"
)

// DefaultUserAgent is sent on every request unless overridden
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) nifty50-pipeline/1.0"

// Client is an HTTP client wrapper with request pacing and logging
// ⭐ SSOT: 모든 HTTP 요청은 이 클라이언트를 통해서만 수행
//
// There is no retry: a failed request is reported to the caller once.
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	limiter    *rate.Limiter
	userAgent  string
}

// New creates a new HTTP client from config.
// Consecutive requests are separated by at least cfg.Yahoo.Pause.
// ⭐ SSOT: http.Client 인스턴스는 여기서만 생성
func New(cfg *config.Config, log *logger.Logger) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Yahoo.Timeout,
		},
		logger:    log,
		userAgent: DefaultUserAgent,
	}
	if client.httpClient.Timeout <= 0 {
		client.httpClient.Timeout = 30 * time.Second
	}
	if cfg.Yahoo.UserAgent != "" {
		client.WithUserAgent(cfg.Yahoo.UserAgent)
	}
	return client.WithPause(cfg.Yahoo.Pause)
}

// WithPause sets the minimum gap between two requests; zero disables pacing
func (c *Client) WithPause(pause time.Duration) *Client {
	if pause <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Every(pause), 1)
	return c
}

// WithUserAgent overrides the User-Agent header
func (c *Client) WithUserAgent(ua string) *Client {
	c.userAgent = ua
	return c
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	return c.do(req)
}

// do waits for the pacing token, executes the request and logs it
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("pause wait failed: %w", err)
		}
	}

	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	startTime := time.Now()
	url := req.URL.String()
	method := req.Method

	c.logger.WithFields(map[string]interface{}{
		"method": method,
		"url":    url,
	}).Debug("HTTP request started")

	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"method":   method,
			"url":      url,
			"duration": duration,
			"error":    err.Error(),
		}).Error("HTTP request failed")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": resp.StatusCode,
		"duration":    duration,
	}).Debug("HTTP request completed")

	return resp, nil
}
