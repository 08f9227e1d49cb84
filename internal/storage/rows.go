package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"dataval/internal/dataset"
)

// ValueHook lets a backend rewrite a raw driver value before it is
// normalised. dbType is the driver's type name for the column.
type ValueHook func(dbType string, v any) any

// Builder accumulates result rows into typed columns. A column whose values
// do not fit its declared kind is downgraded to KindObject.
type Builder struct {
	cols []*dataset.Column
}

// NewBuilder prepares one column per name with the given kinds.
func NewBuilder(names []string, kinds []dataset.Kind) *Builder {
	b := &Builder{cols: make([]*dataset.Column, len(names))}
	for i, n := range names {
		b.cols[i] = &dataset.Column{Name: n, Kind: kinds[i]}
	}
	return b
}

// Append adds one row. len(row) must equal the number of columns.
func (b *Builder) Append(row []any) {
	for i, c := range b.cols {
		v, ok := Normalize(row[i], c.Kind)
		if !ok {
			c.Kind = dataset.KindObject
		}
		c.Values = append(c.Values, v)
	}
}

// Dataset returns the accumulated columns.
func (b *Builder) Dataset() (*dataset.Dataset, error) {
	return dataset.New(b.cols...)
}

// QueryDataset runs query on db and pivots the result set into a dataset,
// deriving kinds from the driver's column type names.
func QueryDataset(ctx context.Context, db *sql.DB, hook ValueHook, query string, args ...any) (*dataset.Dataset, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	names := make([]string, len(types))
	kinds := make([]dataset.Kind, len(types))
	dbTypes := make([]string, len(types))
	for i, ct := range types {
		names[i] = ct.Name()
		dbTypes[i] = ct.DatabaseTypeName()
		kinds[i] = KindForSQLType(dbTypes[i])
	}

	b := NewBuilder(names, kinds)
	raw := make([]any, len(types))
	ptrs := make([]any, len(types))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make([]any, len(raw))
		for i, v := range raw {
			if hook != nil {
				v = hook(dbTypes[i], v)
			}
			row[i] = v
		}
		b.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return b.Dataset()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Normalize converts a driver value into the canonical Go type for kind
// (int64, float64, bool, string, time.Time). ok is false when v cannot be
// represented as kind; v is then returned in its closest plain form.
func Normalize(v any, kind dataset.Kind) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case []byte:
		return fromString(string(x), kind)
	case string:
		return fromString(x, kind)
	case [16]byte:
		return uuid.UUID(x).String(), kind == dataset.KindText || kind == dataset.KindObject
	case time.Time:
		return x, kind == dataset.KindDatetime || kind == dataset.KindObject
	case bool:
		return x, kind == dataset.KindBoolean || kind == dataset.KindObject
	case float32:
		return float64(x), kind == dataset.KindFloat || kind == dataset.KindObject
	case float64:
		return x, kind == dataset.KindFloat || kind == dataset.KindObject
	}
	if n, ok := asInt64(v); ok {
		switch kind {
		case dataset.KindBoolean:
			if n == 0 || n == 1 {
				return n == 1, true
			}
			return n, false
		case dataset.KindFloat:
			return float64(n), true
		case dataset.KindInteger, dataset.KindObject:
			return n, true
		}
		return n, false
	}
	return v, kind == dataset.KindObject
}

func fromString(s string, kind dataset.Kind) (any, bool) {
	switch kind {
	case dataset.KindText, dataset.KindCategory, dataset.KindObject:
		return s, true
	case dataset.KindInteger:
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n, true
		}
	case dataset.KindFloat:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	case dataset.KindBoolean:
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	case dataset.KindDatetime:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
				return t, true
			}
		}
	}
	return s, false
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	case uint:
		return int64(x), true
	}
	return 0, false
}
