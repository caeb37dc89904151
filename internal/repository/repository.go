// Package repository provides the durable rate archive on PostgreSQL.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database access methods.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new Repository with a connection pool and ensures the
// rates schema exists.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &Repository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// ensureSchema creates the rates table if it does not exist.
func (r *Repository) ensureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS rates (
			day      date        NOT NULL,
			currency char(3)     NOT NULL,
			rate     numeric     NOT NULL,
			PRIMARY KEY (day, currency)
		)
	`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create rates schema: %w", err)
	}

	return nil
}
