// Package mssql implements a Microsoft SQL Server storage.Loader using
// database/sql and go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"dataval/internal/dataset"
	"dataval/internal/storage"
)

// Config holds MSSQL loader configuration.
type Config struct {
	DSN string
}

// Repository reads tables from SQL Server.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// LoadTable reads up to limit rows (all when limit <= 0) of table, which may
// be qualified as schema.table or db.schema.table.
func (r *Repository) LoadTable(ctx context.Context, table string, limit int) (*dataset.Dataset, error) {
	q, err := selectQuery(table, limit)
	if err != nil {
		return nil, err
	}
	ds, err := storage.QueryDataset(ctx, r.db, convertValue, q)
	if err != nil {
		return nil, fmt.Errorf("mssql: load %s: %w", table, err)
	}
	return ds, nil
}

// convertValue renders UNIQUEIDENTIFIER bytes, which SQL Server stores in
// mixed-endian order, as the canonical string form.
func convertValue(dbType string, v any) any {
	b, ok := v.([]byte)
	if !ok || !strings.EqualFold(dbType, "UNIQUEIDENTIFIER") {
		return v
	}
	var id mssql.UniqueIdentifier
	if err := id.Scan(b); err != nil {
		return v
	}
	return id.String()
}

func selectQuery(table string, limit int) (string, error) {
	name, err := storage.QuoteIdent(table, "[", "]")
	if err != nil {
		return "", err
	}
	if limit > 0 {
		return fmt.Sprintf("SELECT TOP (%d) * FROM %s", limit, name), nil
	}
	return "SELECT * FROM " + name, nil
}
