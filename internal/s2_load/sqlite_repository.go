package s2_load

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wonny/nifty50/internal/contracts"
)

// SQLiteRepository writes the embedded store
// ⭐ SSOT: SQLite 테이블 스키마는 여기서만
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new repository on an open handle
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Name identifies the target in reports
func (r *SQLiteRepository) Name() string {
	return "sqlite"
}

// ReplaceAll drops and recreates both tables inside one transaction
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, bars []contracts.Bar, symbols []contracts.SymbolRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DROP TABLE IF EXISTS daily_prices`,
		`CREATE TABLE daily_prices (
			"Date" TEXT,
			"Open" REAL,
			"High" REAL,
			"Low" REAL,
			"Close" REAL,
			"Adj Close" REAL,
			"Volume" REAL,
			"Symbol" TEXT
		)`,
		`DROP TABLE IF EXISTS symbols`,
		`CREATE TABLE symbols ("Symbol" TEXT, "Sector" TEXT)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("prepare schema: %w", err)
		}
	}

	insertPrice, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_prices ("Date", "Open", "High", "Low", "Close", "Adj Close", "Volume", "Symbol")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare price insert: %w", err)
	}
	defer insertPrice.Close()

	for _, b := range bars {
		if _, err := insertPrice.ExecContext(ctx, priceArgs(b)...); err != nil {
			return fmt.Errorf("insert %s %s: %w", b.Symbol, b.Date.Format("2006-01-02"), err)
		}
	}

	insertSymbol, err := tx.PrepareContext(ctx, `INSERT INTO symbols ("Symbol", "Sector") VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare symbol insert: %w", err)
	}
	defer insertSymbol.Close()

	for _, s := range symbols {
		if _, err := insertSymbol.ExecContext(ctx, s.Symbol, s.Sector); err != nil {
			return fmt.Errorf("insert symbol %s: %w", s.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CountPrices returns the number of daily_prices rows
func (r *SQLiteRepository) CountPrices(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM daily_prices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count prices: %w", err)
	}
	return n, nil
}

// GetSymbols returns the symbols table in insertion order
func (r *SQLiteRepository) GetSymbols(ctx context.Context) ([]contracts.SymbolRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT "Symbol", "Sector" FROM symbols ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var out []contracts.SymbolRow
	for rows.Next() {
		var s contracts.SymbolRow
		if err := rows.Scan(&s.Symbol, &s.Sector); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetCloses returns a symbol's closes by date; NULL comes back as invalid
func (r *SQLiteRepository) GetCloses(ctx context.Context, symbol string) ([]sql.NullFloat64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT "Close" FROM daily_prices WHERE "Symbol" = ? ORDER BY "Date" ASC`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query closes: %w", err)
	}
	defer rows.Close()

	var out []sql.NullFloat64
	for rows.Next() {
		var v sql.NullFloat64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
