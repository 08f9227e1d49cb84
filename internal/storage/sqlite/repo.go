// Package sqlite implements a SQLite-backed storage.Loader using
// database/sql and the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dataval/internal/dataset"
	"dataval/internal/storage"

	_ "modernc.org/sqlite"
)

// Config holds SQLite loader configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:data.db?mode=ro"
	//   "data.db"
	DSN string
}

// Repository reads tables from a SQLite database.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// LoadTable reads up to limit rows (all rows when limit <= 0) of table.
// Column kinds come from the declared column types.
func (r *Repository) LoadTable(ctx context.Context, table string, limit int) (*dataset.Dataset, error) {
	q, err := selectQuery(table, limit)
	if err != nil {
		return nil, err
	}
	ds, err := storage.QueryDataset(ctx, r.db, nil, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load %s: %w", table, err)
	}
	return ds, nil
}

func selectQuery(table string, limit int) (string, error) {
	name, err := storage.QuoteIdent(table, `"`, `"`)
	if err != nil {
		return "", err
	}
	q := "SELECT * FROM " + name
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return q, nil
}
