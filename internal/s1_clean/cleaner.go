package s1_clean

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/tabular"
	"github.com/wonny/nifty50/pkg/logger"
)

// ErrNoRows is returned for a file with no usable row left after cleaning
var ErrNoRows = errors.New("no rows with a valid date and close")

// FileStats counts what cleaning did to one file
type FileStats struct {
	RowsIn       int
	BadDate      int // unparseable date
	MissingClose int
}

// Kept returns the number of surviving rows
func (s FileStats) Kept() int {
	return s.RowsIn - s.BadDate - s.MissingClose
}

// Cleaner normalizes raw per-symbol files
// ⭐ SSOT: S0 → S1 정제 규칙은 이 패키지에서만
type Cleaner struct {
	rawDir     string
	cleanedDir string
	logger     *logger.Logger
}

// NewCleaner creates a new Cleaner
func NewCleaner(rawDir, cleanedDir string, log *logger.Logger) *Cleaner {
	return &Cleaner{
		rawDir:     rawDir,
		cleanedDir: cleanedDir,
		logger:     log.Stage(contracts.StageClean),
	}
}

// Run cleans every raw per-symbol file in lexical order.
// A bad file is skipped and reported; the run continues.
func (c *Cleaner) Run(ctx context.Context) (*contracts.CleanReport, error) {
	if err := contracts.RequireArtifact(contracts.StageClean, c.rawDir, contracts.StageFetch); err != nil {
		return nil, err
	}
	files, err := tabular.SymbolFiles(c.rawDir, tabular.CombinedRawFile)
	if err != nil {
		return nil, fmt.Errorf("list raw files: %w", err)
	}
	if len(files) == 0 {
		return nil, &contracts.MissingArtifactError{
			Stage:    contracts.StageClean,
			Path:     filepath.Join(c.rawDir, "*.csv"),
			Producer: contracts.StageFetch,
		}
	}
	if err := os.MkdirAll(c.cleanedDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cleaned dir: %w", err)
	}

	report := &contracts.CleanReport{
		Cleaned: make([]string, 0, len(files)),
		Skipped: make([]contracts.FileFailure, 0),
	}
	all := make([]contracts.Bar, 0)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("clean cancelled: %w", err)
		}

		name := filepath.Base(file)
		out := filepath.Join(c.cleanedDir, tabular.CleanedFileName(name))

		bars, stats, err := CleanFile(file)
		if err == nil {
			err = tabular.WriteBars(out, bars)
		}
		if err != nil {
			c.skip(report, name, out, err)
			continue
		}

		report.Cleaned = append(report.Cleaned, name)
		report.Dropped += stats.BadDate + stats.MissingClose
		all = append(all, bars...)

		c.logger.WithFields(map[string]interface{}{
			"file":          name,
			"rows":          len(bars),
			"bad_date":      stats.BadDate,
			"missing_close": stats.MissingClose,
		}).Debug("Cleaned file")
	}

	report.Rows = len(all)
	combined := filepath.Join(c.cleanedDir, tabular.CombinedCleanedFile)
	if err := tabular.WriteBars(combined, all); err != nil {
		return report, fmt.Errorf("write combined cleaned file: %w", err)
	}
	report.CombinedPath = combined

	c.logger.WithFields(map[string]interface{}{
		"cleaned": len(report.Cleaned),
		"skipped": len(report.Skipped),
		"rows":    report.Rows,
		"dropped": report.Dropped,
	}).Info("Clean completed")

	return report, nil
}

// skip records a file failure and removes the stale cleaned output
func (c *Cleaner) skip(report *contracts.CleanReport, name, out string, err error) {
	report.Skipped = append(report.Skipped, contracts.FileFailure{File: name, Reason: err.Error()})
	if rmErr := os.Remove(out); rmErr != nil && !os.IsNotExist(rmErr) {
		c.logger.WithError(rmErr).WithField("file", out).Warn("Failed to remove stale cleaned file")
	}
	c.logger.WithError(err).WithField("file", name).Warn("Skipping file")
}

// CleanFile reads one raw file and returns its cleaned bars:
// dates parsed, numerics coerced, close required, ascending by date.
func CleanFile(path string) ([]contracts.Bar, FileStats, error) {
	var stats FileStats

	table, err := tabular.ReadTable(path)
	if err != nil {
		return nil, stats, err
	}

	cols := tabular.LocateBarColumns(table)
	fallback := tabular.SymbolFromFileName(path)

	bars := make([]contracts.Bar, 0, len(table.Rows))
	for _, row := range table.Rows {
		stats.RowsIn++
		bar, ok := cols.ParseBar(row, fallback)
		if !ok {
			stats.BadDate++
			continue
		}
		if math.IsNaN(bar.Close) {
			stats.MissingClose++
			continue
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, stats, ErrNoRows
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
	return bars, stats, nil
}
