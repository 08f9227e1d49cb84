// Package dataset models a column-oriented tabular dataset: an ordered list of
// uniquely named columns, each carrying its values and a physical kind.
//
// The physical kind describes how the values are actually stored (64-bit
// integers, floats, strings, ...), not what the caller intends them to mean.
// Loaders that know the storage type (SQL result sets, Parquet schemas) set
// the kind explicitly; in-memory construction derives it from Go value types.
package dataset

import (
	"fmt"
	"strings"
)

// Kind is the physical representation of a column's values.
type Kind uint8

const (
	// KindObject is a generic/unknown representation (mixed Go types, or a
	// column with no values at all).
	KindObject Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	// KindCategory marks a column with a fixed category set (an enum-like
	// dictionary column), as opposed to free text.
	KindCategory
	KindText
	KindDatetime
)

var kindNames = [...]string{
	KindObject:   "object",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindBoolean:  "boolean",
	KindCategory: "category",
	KindText:     "text",
	KindDatetime: "datetime",
}

// String returns the lower-case kind name used in diagnostics.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind converts a kind name (as produced by String) back into a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return KindObject, fmt.Errorf("dataset: unknown kind %q", s)
}

// MarshalText implements encoding.TextMarshaler so kinds render by name in
// JSON and YAML reports.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
