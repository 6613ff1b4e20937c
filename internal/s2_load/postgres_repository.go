package s2_load

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/nifty50/internal/contracts"
)

// PostgresRepository mirrors the store into PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new mirror repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Name identifies the target in reports
func (r *PostgresRepository) Name() string {
	return "postgres"
}

// ReplaceAll recreates both tables and bulk-copies the rows in one transaction
func (r *PostgresRepository) ReplaceAll(ctx context.Context, bars []contracts.Bar, symbols []contracts.SymbolRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	schema := []string{
		`DROP TABLE IF EXISTS daily_prices`,
		`CREATE TABLE daily_prices (
			"Date" DATE NOT NULL,
			"Open" DOUBLE PRECISION,
			"High" DOUBLE PRECISION,
			"Low" DOUBLE PRECISION,
			"Close" DOUBLE PRECISION,
			"Adj Close" DOUBLE PRECISION,
			"Volume" DOUBLE PRECISION,
			"Symbol" TEXT NOT NULL
		)`,
		`DROP TABLE IF EXISTS symbols`,
		`CREATE TABLE symbols ("Symbol" TEXT NOT NULL, "Sector" TEXT)`,
	}
	for _, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("prepare schema: %w", err)
		}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{PricesTable},
		PriceColumns,
		pgx.CopyFromSlice(len(bars), func(i int) ([]interface{}, error) {
			row := priceArgs(bars[i])
			row[0] = bars[i].Date
			return row, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy daily_prices: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{SymbolsTable},
		[]string{"Symbol", "Sector"},
		pgx.CopyFromSlice(len(symbols), func(i int) ([]interface{}, error) {
			return []interface{}{symbols[i].Symbol, symbols[i].Sector}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy symbols: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
