package s0_fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/tabular"
	"github.com/wonny/nifty50/pkg/logger"
)

// BarProvider returns the daily history of one symbol
type BarProvider interface {
	FetchBars(ctx context.Context, symbol string) ([]contracts.Bar, error)
}

// ProgressFunc is called once per symbol; err is nil on success
type ProgressFunc func(symbol string, rows int, err error)

// Fetcher downloads raw daily bars for every symbol of the universe
// ⭐ SSOT: 원천 데이터 수집은 이 패키지에서만
type Fetcher struct {
	provider BarProvider
	rawDir   string
	logger   *logger.Logger
	progress ProgressFunc
}

// NewFetcher creates a new Fetcher writing into rawDir
func NewFetcher(provider BarProvider, rawDir string, log *logger.Logger) *Fetcher {
	return &Fetcher{
		provider: provider,
		rawDir:   rawDir,
		logger:   log.Stage(contracts.StageFetch),
	}
}

// WithProgress registers a per-symbol callback
func (f *Fetcher) WithProgress(fn ProgressFunc) *Fetcher {
	f.progress = fn
	return f
}

// Run fetches symbols in order, one at a time.
// A failing symbol is recorded in the report and never aborts the run;
// only a cancelled context or an unwritable combined file returns an error.
func (f *Fetcher) Run(ctx context.Context, symbols []string) (*contracts.FetchReport, error) {
	if err := os.MkdirAll(f.rawDir, 0o755); err != nil {
		return nil, fmt.Errorf("create raw dir: %w", err)
	}

	f.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"dir":     f.rawDir,
	}).Info("Starting fetch")

	report := &contracts.FetchReport{
		Succeeded: make([]string, 0, len(symbols)),
		Failed:    make([]contracts.SymbolFailure, 0),
	}
	all := make([]contracts.Bar, 0)

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("fetch cancelled: %w", err)
		}

		bars, err := f.fetchOne(ctx, symbol)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, fmt.Errorf("fetch cancelled: %w", err)
			}
			f.fail(report, symbol, err)
			continue
		}

		report.Succeeded = append(report.Succeeded, symbol)
		all = append(all, bars...)
		f.notify(symbol, len(bars), nil)
	}

	report.Rows = len(all)
	if len(report.Succeeded) > 0 {
		combined := filepath.Join(f.rawDir, tabular.CombinedRawFile)
		if err := tabular.WriteBars(combined, all); err != nil {
			return report, fmt.Errorf("write combined raw file: %w", err)
		}
		report.CombinedPath = combined
	}

	if len(report.Failed) > 0 {
		f.logger.WithField("failed", report.FailedSymbols()).Warn("Some symbols could not be fetched")
	}
	f.logger.WithFields(map[string]interface{}{
		"success": len(report.Succeeded),
		"failed":  len(report.Failed),
		"rows":    report.Rows,
	}).Info("Fetch completed")

	return report, nil
}

// fetchOne downloads and persists one symbol
func (f *Fetcher) fetchOne(ctx context.Context, symbol string) ([]contracts.Bar, error) {
	bars, err := f.provider.FetchBars(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, errors.New("empty response")
	}

	for i := range bars {
		bars[i].Symbol = symbol
	}

	path := filepath.Join(f.rawDir, tabular.SymbolFileName(symbol))
	if err := tabular.WriteBars(path, bars); err != nil {
		return nil, fmt.Errorf("write raw file: %w", err)
	}
	return bars, nil
}

// fail records a symbol failure and drops its stale raw file
func (f *Fetcher) fail(report *contracts.FetchReport, symbol string, err error) {
	report.Failed = append(report.Failed, contracts.SymbolFailure{Symbol: symbol, Reason: err.Error()})

	stale := filepath.Join(f.rawDir, tabular.SymbolFileName(symbol))
	if rmErr := os.Remove(stale); rmErr != nil && !os.IsNotExist(rmErr) {
		f.logger.WithError(rmErr).WithField("file", stale).Warn("Failed to remove stale raw file")
	}

	f.logger.WithError(err).WithField("symbol", symbol).Warn("Fetch failed")
	f.notify(symbol, 0, err)
}

func (f *Fetcher) notify(symbol string, rows int, err error) {
	if f.progress != nil {
		f.progress(symbol, rows, err)
	}
}
