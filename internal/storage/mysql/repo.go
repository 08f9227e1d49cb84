// Package mysql implements a MySQL-backed storage.Loader using database/sql
// and go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"dataval/internal/dataset"
	"dataval/internal/storage"
)

// Config holds MySQL loader configuration.
type Config struct {
	DSN string // go-sql-driver DSN, e.g. "user:pass@tcp(localhost:3306)/db"
}

// Repository reads tables from MySQL.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup. DATE and DATETIME columns are always decoded as time.Time.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn, err := withParseTime(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { _ = db.Close() }
	return &Repository{db: db}, close, nil
}

func withParseTime(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	c.ParseTime = true
	return c.FormatDSN(), nil
}

// LoadTable reads up to limit rows (all when limit <= 0) of table.
func (r *Repository) LoadTable(ctx context.Context, table string, limit int) (*dataset.Dataset, error) {
	q, err := selectQuery(table, limit)
	if err != nil {
		return nil, err
	}
	ds, err := storage.QueryDataset(ctx, r.db, convertValue, q)
	if err != nil {
		return nil, fmt.Errorf("mysql: load %s: %w", table, err)
	}
	return ds, nil
}

// convertValue turns BIT(1) payloads into integers so they load as booleans.
func convertValue(dbType string, v any) any {
	b, ok := v.([]byte)
	if !ok || !strings.EqualFold(dbType, "BIT") || len(b) != 1 {
		return v
	}
	return int64(b[0])
}

func selectQuery(table string, limit int) (string, error) {
	name, err := storage.QuoteIdent(table, "`", "`")
	if err != nil {
		return "", err
	}
	q := "SELECT * FROM " + name
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return q, nil
}
