package contracts

// ReturnRecord is a cleaned bar with its derived return series
type ReturnRecord struct {
	Bar

	// DailyReturn is close/prev_close - 1; NaN on the symbol's first row
	DailyReturn float64 `json:"daily_return"`
	// DailyReturnFilled is DailyReturn with NaN replaced by 0
	DailyReturnFilled float64 `json:"daily_return_filled"`
	// CumulativeReturn compounds DailyReturnFilled from the symbol's first row
	CumulativeReturn float64 `json:"cumulative_return"`
}

// SymbolMetrics aggregates one symbol's return series
type SymbolMetrics struct {
	Symbol                string  `json:"symbol"`
	AvgDailyReturn        float64 `json:"avg_daily_return"`
	Volatility            float64 `json:"volatility"`
	LastClose             float64 `json:"last_close"`
	AvgVolume             float64 `json:"avg_volume"`
	TotalCumulativeReturn float64 `json:"total_cumulative_return"`
}

// MarketSummary is the one-row market overview
// ⭐ SSOT: S3 → Dashboard 요약 정보 전달
type MarketSummary struct {
	TotalStocks        int     `json:"total_stocks"`
	GreenStocks        int     `json:"green_stocks"`
	RedStocks          int     `json:"red_stocks"`
	BestStock          string  `json:"best_stock"`
	BestStockCumReturn float64 `json:"best_stock_cum_return"`
}

// GreenRatio returns the share of symbols with a positive cumulative return
func (s *MarketSummary) GreenRatio() float64 {
	if s.TotalStocks == 0 {
		return 0.0
	}
	return float64(s.GreenStocks) / float64(s.TotalStocks)
}
