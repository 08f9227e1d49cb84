package dataset

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dataval/pkg/records"
)

var (
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("dataset: duplicate column name")
	// ErrLengthMismatch is returned when columns have different row counts.
	ErrLengthMismatch = errors.New("dataset: column length mismatch")
)

// Column is a named sequence of values with a physical kind. A nil value (or
// a NaN float) is a missing cell.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// NewColumn builds a column whose kind is derived from the Go types of values.
func NewColumn(name string, values []any) *Column {
	return &Column{Name: name, Kind: KindOf(values), Values: values}
}

// Len returns the number of cells in the column.
func (c *Column) Len() int { return len(c.Values) }

// IsMissing reports whether the i-th cell is missing.
func (c *Column) IsMissing(i int) bool { return IsMissing(c.Values[i]) }

// Missing returns the number of missing cells.
func (c *Column) Missing() int {
	n := 0
	for _, v := range c.Values {
		if IsMissing(v) {
			n++
		}
	}
	return n
}

// IsMissing reports whether v represents a missing cell.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// Dataset is an immutable, ordered collection of uniquely named columns.
type Dataset struct {
	cols  []*Column
	index map[string]int
}

// New assembles a dataset from cols, preserving their order. Column names must
// be unique and all columns must have the same length.
func New(cols ...*Column) (*Dataset, error) {
	d := &Dataset{
		cols:  make([]*Column, 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("dataset: column %d is nil", i)
		}
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if i > 0 && c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("%w: %q has %d rows, %q has %d",
				ErrLengthMismatch, c.Name, c.Len(), cols[0].Name, cols[0].Len())
		}
		d.index[c.Name] = i
		d.cols = append(d.cols, c)
	}
	return d, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(cols ...*Column) *Dataset {
	d, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return d
}

// FromRecords pivots row records into columns, in header order. Kinds are
// derived from the Go types found in each column.
func FromRecords(headers []string, recs []records.Record) (*Dataset, error) {
	cols := make([]*Column, len(headers))
	for i, h := range headers {
		vals := make([]any, len(recs))
		for r, rec := range recs {
			vals[r] = rec[h]
		}
		cols[i] = NewColumn(h, vals)
	}
	return New(cols...)
}

// Width returns the number of columns.
func (d *Dataset) Width() int { return len(d.cols) }

// Rows returns the number of rows (0 for a dataset without columns).
func (d *Dataset) Rows() int {
	if len(d.cols) == 0 {
		return 0
	}
	return d.cols[0].Len()
}

// IsEmpty reports whether the dataset has no columns.
func (d *Dataset) IsEmpty() bool { return len(d.cols) == 0 }

// Columns returns the columns in order. Callers must not modify the slice.
func (d *Dataset) Columns() []*Column { return d.cols }

// Column looks up a column by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// Index returns the position of the named column, or -1.
func (d *Dataset) Index(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// KindOf derives a physical kind from the Go types of the non-missing values:
//   - all integer types        -> integer
//   - floats (ints allowed)    -> float
//   - all bool                 -> boolean
//   - all time.Time            -> datetime
//   - all string               -> text
//   - anything else, or empty  -> object
func KindOf(values []any) Kind {
	var ints, floats, bools, times, strs, other, seen int
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		seen++
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			ints++
		case float32, float64:
			floats++
		case bool:
			bools++
		case time.Time:
			times++
		case string:
			strs++
		default:
			other++
		}
	}
	switch {
	case seen == 0 || other > 0:
		return KindObject
	case ints == seen:
		return KindInteger
	case ints+floats == seen:
		return KindFloat
	case bools == seen:
		return KindBoolean
	case times == seen:
		return KindDatetime
	case strs == seen:
		return KindText
	}
	return KindObject
}
