// Package parser names the input formats a dataset can be loaded from. The
// format packages live below it: csv for delimited text with inferred
// kinds, json for object streams, parquet for files that carry their own
// schema.
package parser

import (
	"io"

	"dataval/pkg/records"
)

// Parser turns a byte stream into row records. The int result counts rows
// skipped as malformed.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}

// Format identifiers used in suite files.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
)
