// Package postgres implements a Postgres-backed storage.Loader using pgx v5.
// Column kinds come from the result set's type OIDs; user-defined enum types
// are looked up in pg_type and loaded as categories.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"dataval/internal/dataset"
	"dataval/internal/storage"
)

// Config holds Postgres loader configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Repository reads tables through a pgx connection pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { pool.Close() }
	return &Repository{pool: pool}, close, nil
}

// LoadTable reads up to limit rows (all when limit <= 0) of a possibly
// schema-qualified table.
func (r *Repository) LoadTable(ctx context.Context, table string, limit int) (*dataset.Dataset, error) {
	q, err := selectQuery(table, limit)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("postgres: query %s: %w", table, err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	names := make([]string, len(fds))
	kinds := make([]dataset.Kind, len(fds))
	var unknown []int64
	for i, fd := range fds {
		names[i] = fd.Name
		k, ok := kindForOID(fd.DataTypeOID)
		if !ok {
			unknown = append(unknown, int64(fd.DataTypeOID))
		}
		kinds[i] = k
	}

	var vals [][]any
	for rows.Next() {
		v, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: read row: %w", err)
		}
		vals = append(vals, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}

	if len(unknown) > 0 {
		enums, err := r.enumOIDs(ctx, unknown)
		if err != nil {
			return nil, err
		}
		for i, fd := range fds {
			if enums[int64(fd.DataTypeOID)] {
				kinds[i] = dataset.KindCategory
			}
		}
	}

	b := storage.NewBuilder(names, kinds)
	for _, v := range vals {
		for i := range v {
			v[i] = toPlain(v[i])
		}
		b.Append(v)
	}
	return b.Dataset()
}

// enumOIDs reports which of oids name enum types.
func (r *Repository) enumOIDs(ctx context.Context, oids []int64) (map[int64]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT oid::int8 FROM pg_type WHERE typtype = 'e' AND oid::int8 = ANY($1)`, oids)
	if err != nil {
		return nil, fmt.Errorf("postgres: enum lookup: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("postgres: enum lookup: %w", err)
	}
	out := make(map[int64]bool, len(found))
	for _, oid := range found {
		out[oid] = true
	}
	return out, nil
}

// kindForOID maps built-in type OIDs. ok is false for OIDs that need a
// catalog lookup.
func kindForOID(oid uint32) (dataset.Kind, bool) {
	switch oid {
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID:
		return dataset.KindInteger, true
	case pgtype.Float4OID, pgtype.Float8OID, pgtype.NumericOID:
		return dataset.KindFloat, true
	case pgtype.BoolOID:
		return dataset.KindBoolean, true
	case pgtype.DateOID, pgtype.TimestampOID, pgtype.TimestamptzOID:
		return dataset.KindDatetime, true
	case pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID, pgtype.NameOID, pgtype.UUIDOID:
		return dataset.KindText, true
	case pgtype.JSONOID, pgtype.JSONBOID, pgtype.ByteaOID, pgtype.IntervalOID, pgtype.TimeOID:
		return dataset.KindObject, true
	}
	return dataset.KindObject, false
}

// toPlain unwraps pgtype values that Normalize does not know about.
func toPlain(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	}
	return v
}

func selectQuery(table string, limit int) (string, error) {
	id := splitFQN(table)
	if len(id) == 0 {
		return "", fmt.Errorf("postgres: table name must not be empty")
	}
	q := "SELECT * FROM " + id.Sanitize()
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return q, nil
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(strings.TrimSpace(fqn), ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
