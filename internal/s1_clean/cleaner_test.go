package s1_clean

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/tabular"
	"github.com/wonny/nifty50/pkg/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCleanFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "TCS_NS.csv", ""+
		"Date,Open,High,Low,Close,Adj Close,Volume,Symbol\n"+
		"2024-01-04,3,3,3,3,3,300,TCS.NS\n"+
		"not-a-date,1,1,1,1,1,100,TCS.NS\n"+
		"2024-01-02 00:00:00+05:30,1,1,1,1,1,100,\n"+
		"2024-01-03,2,2,2,,2,200,TCS.NS\n"+
		"01/05/2024,x,4,4,4,4,400,TCS.NS\n")

	bars, stats, err := CleanFile(path)
	require.NoError(t, err)

	assert.Equal(t, FileStats{RowsIn: 5, BadDate: 1, MissingClose: 1}, stats)
	assert.Equal(t, 3, stats.Kept())
	require.Len(t, bars, 3)
	assert.Equal(t, "2024-01-02", tabular.FormatDate(bars[0].Date))
	assert.Equal(t, "TCS.NS", bars[0].Symbol) // empty cell filled from file name
	assert.Equal(t, "2024-01-04", tabular.FormatDate(bars[1].Date))
	assert.Equal(t, "2024-01-05", tabular.FormatDate(bars[2].Date))
	assert.True(t, contracts.IsMissing(bars[2].Open))
}

func TestCleanFileWithoutDateOrSymbolColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "INFY_NS.csv", "Day,close\n2024-01-02,10\n2024-01-03,11\n")

	bars, _, err := CleanFile(path)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "INFY.NS", bars[0].Symbol)
	assert.Equal(t, 11.0, bars[1].Close)
	assert.True(t, contracts.IsMissing(bars[1].Volume))
}

func TestCleanFileNoRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "BAD_NS.csv", "Date,Close\nfoo,1\nbar,2\n")

	_, stats, err := CleanFile(path)
	assert.True(t, errors.Is(err, ErrNoRows))
	assert.Equal(t, 2, stats.BadDate)
}

func setupRaw(t *testing.T) (rawDir, cleanedDir string) {
	t.Helper()
	root := t.TempDir()
	rawDir = filepath.Join(root, "data")
	cleanedDir = filepath.Join(root, "cleaned")
	require.NoError(t, os.MkdirAll(rawDir, 0o755))

	writeFile(t, rawDir, "B_NS.csv", "Date,Close,Volume,Symbol\n2024-01-03,20,5,B.NS\n2024-01-02,19,4,B.NS\n")
	writeFile(t, rawDir, "A_NS.csv", "Date,Close,Volume,Symbol\n2024-01-02,10,1,A.NS\n2024-01-03,11,2,A.NS\n")
	writeFile(t, rawDir, "BAD_NS.csv", "Date,Close\nnope,1\n")
	writeFile(t, rawDir, tabular.CombinedRawFile, "Date,Close,Symbol\n2024-01-02,99,ZZZ\n")
	return rawDir, cleanedDir
}

func TestCleanerRun(t *testing.T) {
	rawDir, cleanedDir := setupRaw(t)
	// stale output of the bad symbol from an earlier run
	require.NoError(t, os.MkdirAll(cleanedDir, 0o755))
	writeFile(t, cleanedDir, "BAD.NS.csv", "Date,Close\n2023-01-02,1\n")

	report, err := NewCleaner(rawDir, cleanedDir, logger.Nop()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"A_NS.csv", "B_NS.csv"}, report.Cleaned)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "BAD_NS.csv", report.Skipped[0].File)
	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, 0, report.Dropped)
	assert.NoFileExists(t, filepath.Join(cleanedDir, "BAD.NS.csv"))
	// cleaned files are named by symbol
	assert.FileExists(t, filepath.Join(cleanedDir, "A.NS.csv"))
	assert.FileExists(t, filepath.Join(cleanedDir, "B.NS.csv"))
	assert.NoFileExists(t, filepath.Join(cleanedDir, "A_NS.csv"))

	combined, err := tabular.ReadBars(filepath.Join(cleanedDir, tabular.CombinedCleanedFile))
	require.NoError(t, err)
	require.Len(t, combined, 4)
	symbols := []string{combined[0].Symbol, combined[1].Symbol, combined[2].Symbol, combined[3].Symbol}
	assert.Equal(t, []string{"A.NS", "A.NS", "B.NS", "B.NS"}, symbols)
	assert.Equal(t, 19.0, combined[2].Close) // B sorted ascending
	for _, b := range combined {
		assert.NotEqual(t, "ZZZ", b.Symbol)
	}
}

func TestCleanerIdempotent(t *testing.T) {
	rawDir, cleanedDir := setupRaw(t)
	cleaner := NewCleaner(rawDir, cleanedDir, logger.Nop())

	_, err := cleaner.Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(cleanedDir, tabular.CombinedCleanedFile))
	require.NoError(t, err)
	firstA, err := os.ReadFile(filepath.Join(cleanedDir, "A.NS.csv"))
	require.NoError(t, err)

	_, err = cleaner.Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(cleanedDir, tabular.CombinedCleanedFile))
	require.NoError(t, err)
	secondA, err := os.ReadFile(filepath.Join(cleanedDir, "A.NS.csv"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstA, secondA)
}

func TestCleanerMissingRawDir(t *testing.T) {
	root := t.TempDir()
	_, err := NewCleaner(filepath.Join(root, "data"), filepath.Join(root, "cleaned"), logger.Nop()).Run(context.Background())

	var missing *contracts.MissingArtifactError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, contracts.StageFetch, missing.Producer)
}

func TestCleanerOnlyCombinedFile(t *testing.T) {
	root := t.TempDir()
	rawDir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(rawDir, 0o755))
	writeFile(t, rawDir, tabular.CombinedRawFile, "Date,Close\n2024-01-02,1\n")

	_, err := NewCleaner(rawDir, filepath.Join(root, "cleaned"), logger.Nop()).Run(context.Background())
	assert.ErrorIs(t, err, contracts.ErrMissingArtifact)
}
