package s2_load

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/tabular"
	"github.com/wonny/nifty50/pkg/config"
	"github.com/wonny/nifty50/pkg/database"
	"github.com/wonny/nifty50/pkg/logger"
)

func cleanedFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	bars := []contracts.Bar{
		{Date: day(2), Open: 1, High: 1, Low: 1, Close: 1, AdjClose: 1, Volume: 10, Symbol: "B.NS"},
		{Date: day(3), Open: contracts.Missing(), High: 2, Low: 2, Close: 2, AdjClose: 2, Volume: 20, Symbol: "B.NS"},
		{Date: day(2), Open: 5, High: 5, Low: 5, Close: 5, AdjClose: 5, Volume: 50, Symbol: "A.NS"},
	}
	require.NoError(t, tabular.WriteBars(filepath.Join(dir, tabular.CombinedCleanedFile), bars))
	return dir
}

func openSQLite(t *testing.T) *database.SQLite {
	t.Helper()
	store, err := database.OpenSQLite(filepath.Join(t.TempDir(), "nifty50.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoaderRunSQLite(t *testing.T) {
	dir := cleanedFixture(t)
	store := openSQLite(t)
	repo := NewSQLiteRepository(store.DB)
	ctx := context.Background()

	report, err := NewLoader(dir, logger.Nop(), repo).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 2, report.Symbols)
	assert.Equal(t, []string{"sqlite"}, report.Targets)

	n, err := repo.CountPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	symbols, err := repo.GetSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []contracts.SymbolRow{
		{Symbol: "B.NS", Sector: contracts.SectorUnknown},
		{Symbol: "A.NS", Sector: contracts.SectorUnknown},
	}, symbols)

	var open interface{}
	require.NoError(t, store.DB.QueryRowContext(ctx,
		`SELECT "Open" FROM daily_prices WHERE "Symbol" = 'B.NS' AND "Date" = '2024-01-03'`).Scan(&open))
	assert.Nil(t, open)
}

func TestLoaderReplaceSemantics(t *testing.T) {
	dir := cleanedFixture(t)
	store := openSQLite(t)
	repo := NewSQLiteRepository(store.DB)
	ctx := context.Background()
	loader := NewLoader(dir, logger.Nop(), repo)

	_, err := loader.Run(ctx)
	require.NoError(t, err)
	_, err = loader.Run(ctx)
	require.NoError(t, err)

	n, err := repo.CountPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	closes, err := repo.GetCloses(ctx, "B.NS")
	require.NoError(t, err)
	require.Len(t, closes, 2)
	assert.Equal(t, 2.0, closes[1].Float64)

	tables, err := store.TableNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{PricesTable, SymbolsTable}, tables)
}

func TestLoaderMissingInput(t *testing.T) {
	store := openSQLite(t)
	_, err := NewLoader(t.TempDir(), logger.Nop(), NewSQLiteRepository(store.DB)).Run(context.Background())

	var missing *contracts.MissingArtifactError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, contracts.StageClean, missing.Producer)
	assert.Contains(t, missing.Path, tabular.CombinedCleanedFile)
}

type failingStore struct{}

func (failingStore) Name() string { return "broken" }
func (failingStore) ReplaceAll(context.Context, []contracts.Bar, []contracts.SymbolRow) error {
	return errors.New("disk full")
}

func TestLoaderStoreFailure(t *testing.T) {
	_, err := NewLoader(cleanedFixture(t), logger.Nop(), failingStore{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestPostgresRepository(t *testing.T) {
	// Skip if DATABASE_URL is not set
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db.Pool)
	ctx := context.Background()

	_, err = NewLoader(cleanedFixture(t), logger.Nop(), repo).Run(ctx)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM daily_prices`).Scan(&n))
	assert.Equal(t, 3, n)
}
