// Package db persists analyses and profiles in Postgres. The database is
// optional: without one the service runs in OCR-only mode.
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the global database connection pool
var Pool *pgxpool.Pool

// ErrNoDatabase is returned by every query when Init has not succeeded.
var ErrNoDatabase = errors.New("no database configuration")

// DatabaseURL builds the connection string from DATABASE_URL or the DB_* variables.
func DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	if host == "" || user == "" || dbname == "" {
		return ""
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		user, os.Getenv("DB_PASSWORD"), host, port, dbname, sslmode)
}

// Init initializes the database connection pool and creates the tables.
func Init(ctx context.Context, logger *slog.Logger) error {
	databaseURL := DatabaseURL()
	if databaseURL == "" {
		logger.Info("no database configuration found, running in OCR-only mode")
		return ErrNoDatabase
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("failed to create tables: %w", err)
	}

	Pool = pool
	logger.Info("database connection pool initialized")
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS fra_documents (
	id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	task_id        TEXT NOT NULL,
	filename       TEXT NOT NULL,
	document_type  TEXT NOT NULL DEFAULT '',
	holder_name    TEXT NOT NULL DEFAULT '',
	district       TEXT NOT NULL DEFAULT '',
	storage_url    TEXT NOT NULL DEFAULT '',
	analysis       JSONB NOT NULL,
	classification JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS fra_documents_created_at_idx ON fra_documents (created_at DESC);

CREATE TABLE IF NOT EXISTS fra_profiles (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	document_id UUID REFERENCES fra_documents (id) ON DELETE SET NULL,
	holder_name TEXT NOT NULL DEFAULT '',
	profile     JSONB NOT NULL,
	needs_review BOOLEAN NOT NULL DEFAULT false,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool
func Close(logger *slog.Logger) {
	if Pool != nil {
		Pool.Close()
		Pool = nil
		logger.Info("database connection pool closed")
	}
}

// Available reports whether a pool is configured.
func Available() bool {
	return Pool != nil
}

// Ping checks the pool for the health endpoint.
func Ping(ctx context.Context) error {
	if Pool == nil {
		return ErrNoDatabase
	}
	return Pool.Ping(ctx)
}
