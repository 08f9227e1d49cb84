// Package parquet loads flat Parquet files into datasets. Column kinds come
// from the file schema rather than from the values: STRING is text, ENUM is
// category, DATE and TIMESTAMP are datetime.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"dataval/internal/dataset"
)

// ErrNestedColumn is returned for group or repeated columns.
var ErrNestedColumn = errors.New("parquet: nested or repeated columns are not supported")

const readBatch = 256

// ReadDataset reads every row group of the file in r.
func ReadDataset(r io.ReaderAt, size int64) (*dataset.Dataset, error) {
	f, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("parquet: open: %w", err)
	}

	fields := f.Schema().Fields()
	cols := make([]*dataset.Column, len(fields))
	decoders := make([]func(parquet.Value) any, len(fields))
	for i, fld := range fields {
		if !fld.Leaf() || fld.Repeated() {
			return nil, fmt.Errorf("%w: %q", ErrNestedColumn, fld.Name())
		}
		kind, dec := KindOf(fld.Type())
		cols[i] = &dataset.Column{Name: fld.Name(), Kind: kind, Values: make([]any, 0, f.NumRows())}
		decoders[i] = dec
	}

	buf := make([]parquet.Row, readBatch)
	for _, rg := range f.RowGroups() {
		if err := readRowGroup(rg, buf, cols, decoders); err != nil {
			return nil, err
		}
	}
	return dataset.New(cols...)
}

func readRowGroup(rg parquet.RowGroup, buf []parquet.Row, cols []*dataset.Column, decoders []func(parquet.Value) any) error {
	rows := rg.Rows()
	defer rows.Close()

	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			for _, v := range row {
				c := v.Column()
				if c < 0 || c >= len(cols) {
					continue
				}
				if v.IsNull() {
					cols[c].Values = append(cols[c].Values, nil)
					continue
				}
				cols[c].Values = append(cols[c].Values, decoders[c](v))
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parquet: read rows: %w", err)
		}
	}
}

// KindOf maps a Parquet column type onto a physical kind and returns the
// decoder for its non-null values.
func KindOf(t parquet.Type) (dataset.Kind, func(parquet.Value) any) {
	if lt := t.LogicalType(); lt != nil {
		switch {
		case lt.Enum != nil:
			return dataset.KindCategory, byteString
		case lt.UTF8 != nil, lt.Json != nil:
			return dataset.KindText, byteString
		case lt.Date != nil:
			return dataset.KindDatetime, func(v parquet.Value) any {
				return time.Unix(int64(v.Int32())*86400, 0).UTC()
			}
		case lt.Timestamp != nil:
			return dataset.KindDatetime, timestampDecoder(lt.Timestamp)
		}
	}

	switch t.Kind() {
	case parquet.Boolean:
		return dataset.KindBoolean, func(v parquet.Value) any { return v.Boolean() }
	case parquet.Int32:
		return dataset.KindInteger, func(v parquet.Value) any { return int64(v.Int32()) }
	case parquet.Int64:
		return dataset.KindInteger, func(v parquet.Value) any { return v.Int64() }
	case parquet.Float:
		return dataset.KindFloat, func(v parquet.Value) any { return float64(v.Float()) }
	case parquet.Double:
		return dataset.KindFloat, func(v parquet.Value) any { return v.Double() }
	}
	// Raw byte arrays and INT96 carry no reliable meaning for validation.
	return dataset.KindObject, func(v parquet.Value) any { return v.String() }
}

func byteString(v parquet.Value) any { return string(v.ByteArray()) }

func timestampDecoder(ts *format.TimestampType) func(parquet.Value) any {
	unit := time.Millisecond
	switch {
	case ts.Unit.Micros != nil:
		unit = time.Microsecond
	case ts.Unit.Nanos != nil:
		unit = time.Nanosecond
	}
	return func(v parquet.Value) any {
		return time.Unix(0, v.Int64()*int64(unit)).UTC()
	}
}
