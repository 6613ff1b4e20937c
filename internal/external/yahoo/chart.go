package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/nifty50/internal/contracts"
)

// ErrNoData is returned when the provider answers without any bar
var ErrNoData = errors.New("no data returned")

// chartResponse mirrors /v8/finance/chart; nulls decode to nil pointers
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// FetchBars fetches the configured range of daily bars for one symbol
// ⭐ SSOT: Yahoo 일봉 조회는 이 함수에서만
func (c *Client) FetchBars(ctx context.Context, symbol string) ([]contracts.Bar, error) {
	params := url.Values{}
	params.Set("range", c.rangeParam)
	params.Set("interval", c.interval)
	params.Set("events", "div,split")
	params.Set("includeAdjustedClose", "true")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		strings.TrimRight(c.baseURL, "/"), url.PathEscape(symbol), params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := chartErrorMessage(body); msg != "" {
			return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	bars, err := parseChart(body, symbol)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(bars),
	}).Debug("Fetched bars")
	return bars, nil
}

// chartErrorMessage extracts chart.error.description from an error body
func chartErrorMessage(body []byte) string {
	var r chartResponse
	if err := json.Unmarshal(body, &r); err != nil || r.Chart.Error == nil {
		return ""
	}
	if r.Chart.Error.Description != "" {
		return r.Chart.Error.Description
	}
	return r.Chart.Error.Code
}

// parseChart converts a chart payload to bars.
// Dates are exchange-local calendar days (timestamp + gmtoffset); null
// points are kept as NaN.
func parseChart(body []byte, symbol string) ([]contracts.Bar, error) {
	var r chartResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}
	if r.Chart.Error != nil {
		return nil, fmt.Errorf("provider error: %s", r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	result := r.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	quote := result.Indicators.Quote[0]

	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]contracts.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		local := time.Unix(ts+result.Meta.GMTOffset, 0).UTC()
		y, m, d := local.Date()

		bar := contracts.Bar{
			Date:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Open:     at(quote.Open, i),
			High:     at(quote.High, i),
			Low:      at(quote.Low, i),
			Close:    at(quote.Close, i),
			AdjClose: at(adj, i),
			Volume:   at(quote.Volume, i),
			Symbol:   symbol,
		}
		// no adjclose series → fall back to close
		if adj == nil {
			bar.AdjClose = bar.Close
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}
	return *values[i]
}
