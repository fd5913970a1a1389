// Package utils: connection helpers for the relational store, Redis and TLS material
package utils

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"property-api/internal/config"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func OpenPostgres(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	return db, nil
}

// OpenSQLite: open (and create if needed) a SQLite file with foreign keys and WAL enabled
func OpenSQLite(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	clean := filepath.Clean(path)
	if dir := filepath.Dir(clean); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := clean + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// OpenFromConfig: open the store selected by DB_DRIVER
func OpenFromConfig(cfg config.Config) (*sql.DB, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.DriverPostgres:
		return OpenPostgres(cfg.PostgresDSN(), cfg.PGMaxOpenConns, cfg.PGMaxIdleConns)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}
