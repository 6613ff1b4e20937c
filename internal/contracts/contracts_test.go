package contracts

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistinctSymbols(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := []Bar{
		{Date: day, Symbol: "TCS.NS"},
		{Date: day, Symbol: "INFY.NS"},
		{Date: day.AddDate(0, 0, 1), Symbol: "TCS.NS"},
	}

	rows := DistinctSymbols(bars)

	require.Len(t, rows, 2)
	assert.Equal(t, SymbolRow{Symbol: "TCS.NS", Sector: SectorUnknown}, rows[0])
	assert.Equal(t, "INFY.NS", rows[1].Symbol)
}

func TestMissing(t *testing.T) {
	assert.True(t, IsMissing(Missing()))
	assert.False(t, IsMissing(0))
}

func TestMarketSummary_GreenRatio(t *testing.T) {
	tests := []struct {
		name    string
		summary MarketSummary
		want    float64
	}{
		{"empty", MarketSummary{}, 0},
		{"half", MarketSummary{TotalStocks: 4, GreenStocks: 2, RedStocks: 2}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.summary.GreenRatio())
		})
	}
}

func TestFetchReport_FailedSymbols(t *testing.T) {
	r := FetchReport{Failed: []SymbolFailure{{Symbol: "A.NS"}, {Symbol: "B.NS"}}}
	assert.Equal(t, []string{"A.NS", "B.NS"}, r.FailedSymbols())
}

func TestRequireArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nifty50_cleaned.csv")

	err := RequireArtifact(StageLoad, path, StageClean)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingArtifact))

	var missing *MissingArtifactError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &missing))
	assert.Equal(t, StageLoad, missing.Stage)
	assert.Equal(t, StageClean, missing.Producer)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), `"clean"`)
}
