package yahoo

import (
	"github.com/wonny/nifty50/pkg/config"
	"github.com/wonny/nifty50/pkg/httputil"
	"github.com/wonny/nifty50/pkg/logger"
)

// Client handles communication with the Yahoo Finance chart API
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	rangeParam string
	interval   string
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg config.YahooConfig, log *logger.Logger) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BaseURL,
		rangeParam: cfg.Range,
		interval:   cfg.Interval,
	}
	if c.baseURL == "" {
		c.baseURL = "https://query1.finance.yahoo.com"
	}
	if c.rangeParam == "" {
		c.rangeParam = "1y"
	}
	if c.interval == "" {
		c.interval = "1d"
	}
	return c
}
