package s0_fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/tabular"
	"github.com/wonny/nifty50/pkg/logger"
)

type fakeProvider struct {
	bars  map[string][]contracts.Bar
	errs  map[string]error
	calls []string
}

func (p *fakeProvider) FetchBars(_ context.Context, symbol string) ([]contracts.Bar, error) {
	p.calls = append(p.calls, symbol)
	if err, ok := p.errs[symbol]; ok {
		return nil, err
	}
	return p.bars[symbol], nil
}

func bars(closes ...float64) []contracts.Bar {
	out := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		out[i] = contracts.Bar{
			Date:     time.Date(2024, 1, 2+i, 0, 0, 0, 0, time.UTC),
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
			AdjClose: c,
			Volume:   100,
		}
	}
	return out
}

func TestFetcherRun(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{
		bars: map[string][]contracts.Bar{
			"A.NS": bars(1, 2, 3),
			"C.NS": bars(5),
		},
		errs: map[string]error{"B.NS": errors.New("404 not found")},
	}

	var progress []string
	fetcher := NewFetcher(provider, dir, logger.Nop()).WithProgress(func(symbol string, rows int, err error) {
		progress = append(progress, symbol)
	})

	report, err := fetcher.Run(context.Background(), []string{"A.NS", "B.NS", "C.NS", "D.NS"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A.NS", "B.NS", "C.NS", "D.NS"}, provider.calls)
	assert.Equal(t, []string{"A.NS", "B.NS", "C.NS", "D.NS"}, progress)
	assert.Equal(t, []string{"A.NS", "C.NS"}, report.Succeeded)
	assert.Equal(t, []string{"B.NS", "D.NS"}, report.FailedSymbols())
	assert.Equal(t, "404 not found", report.Failed[0].Reason)
	assert.Equal(t, "empty response", report.Failed[1].Reason)
	assert.Equal(t, 4, report.Rows)

	for _, name := range []string{"A_NS.csv", "C_NS.csv", tabular.CombinedRawFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.NoFileExists(t, filepath.Join(dir, "B_NS.csv"))

	combined, err := tabular.ReadBars(filepath.Join(dir, tabular.CombinedRawFile))
	require.NoError(t, err)
	require.Len(t, combined, 4)
	assert.Equal(t, "A.NS", combined[0].Symbol)
	assert.Equal(t, "C.NS", combined[3].Symbol)
}

func TestFetcherAllFailedSkipsCombined(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{errs: map[string]error{"A.NS": errors.New("boom")}}

	report, err := NewFetcher(provider, dir, logger.Nop()).Run(context.Background(), []string{"A.NS"})
	require.NoError(t, err)

	assert.Empty(t, report.Succeeded)
	assert.Empty(t, report.CombinedPath)
	assert.NoFileExists(t, filepath.Join(dir, tabular.CombinedRawFile))
}

func TestFetcherRemovesStaleRawFile(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "A_NS.csv")
	require.NoError(t, os.WriteFile(stale, []byte("Date,Close\n2023-01-02,1\n"), 0o644))

	provider := &fakeProvider{errs: map[string]error{"A.NS": errors.New("boom")}}
	_, err := NewFetcher(provider, dir, logger.Nop()).Run(context.Background(), []string{"A.NS"})
	require.NoError(t, err)

	assert.NoFileExists(t, stale)
}

func TestFetcherAttachesSymbol(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{bars: map[string][]contracts.Bar{"M&M.NS": bars(1)}}

	_, err := NewFetcher(provider, dir, logger.Nop()).Run(context.Background(), []string{"M&M.NS"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "M&M_NS.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(data)), ",M&M.NS"))
}

func TestFetcherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &fakeProvider{}
	_, err := NewFetcher(provider, t.TempDir(), logger.Nop()).Run(ctx, []string{"A.NS"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, provider.calls)
}
