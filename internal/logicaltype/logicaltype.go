// Package logicaltype is the vocabulary of abstract column types used by the
// validators: numeric, integer, float, boolean, categorical, text and
// datetime.
//
// Logical types are predicates over a column's physical kind. They are not
// mutually exclusive: numeric is the union of integer and float, so an integer
// column satisfies both numeric and integer. All other types are disjoint.
package logicaltype

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"dataval/internal/dataset"
)

// Type is a logical column type.
type Type uint8

const (
	Numeric Type = iota
	Integer
	Float
	Boolean
	Categorical
	Text
	Datetime
)

// All lists every logical type in table order. Count checks report in this
// order.
var All = []Type{Numeric, Integer, Float, Boolean, Categorical, Text, Datetime}

var typeNames = [...]string{
	Numeric:     "numeric",
	Integer:     "integer",
	Float:       "float",
	Boolean:     "boolean",
	Categorical: "categorical",
	Text:        "text",
	Datetime:    "datetime",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("logicaltype(%d)", uint8(t))
}

// MarshalText renders the type by name.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

var (
	// ErrUnknownLogicalType is returned when a type name is not one of the
	// supported logical types.
	ErrUnknownLogicalType = errors.New("unknown logical type")
	// ErrUnsupportedType is returned when a primitive type alias has no
	// logical type equivalent.
	ErrUnsupportedType = errors.New("unsupported type")
)

// Token is a user-supplied reference to a logical type: either a type name
// ("integer", "Text") or a primitive type alias given as a reflect.Kind
// (reflect.Int, reflect.String, ...). The zero Token is an empty name.
type Token struct {
	name   string
	prim   reflect.Kind
	isPrim bool
}

// Name returns a token referring to a logical type by name.
func Name(s string) Token { return Token{name: s} }

// Primitive returns a token referring to a logical type through a primitive
// Go type alias.
func Primitive(k reflect.Kind) Token { return Token{prim: k, isPrim: true} }

// TokenOf builds a token from a loosely typed value: a string becomes a name,
// a reflect.Kind or reflect.Type becomes a primitive alias. Any other value is
// treated as a primitive alias of its own kind, which resolves only when that
// kind has a logical equivalent.
func TokenOf(v any) Token {
	switch x := v.(type) {
	case string:
		return Name(x)
	case Token:
		return x
	case reflect.Kind:
		return Primitive(x)
	case reflect.Type:
		return Primitive(x.Kind())
	case nil:
		return Primitive(reflect.Invalid)
	}
	return Primitive(reflect.TypeOf(v).Kind())
}

// IsPrimitive reports whether the token is a primitive type alias.
func (t Token) IsPrimitive() bool { return t.isPrim }

// String returns the token as the user wrote it: the raw name, or the Go
// kind name for primitive aliases.
func (t Token) String() string {
	if t.isPrim {
		return t.prim.String()
	}
	return t.name
}

// MarshalText renders the token as written.
func (t Token) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText decodes a token from configuration. Text always yields a
// name token.
func (t *Token) UnmarshalText(b []byte) error {
	*t = Name(string(b))
	return nil
}

// Resolve maps a token onto a logical type. Names are matched
// case-insensitively after trimming. Primitive aliases map integer kinds to
// Integer, float kinds to Float, bool to Boolean and string to Text.
func Resolve(tok Token) (Type, error) {
	if tok.isPrim {
		switch tok.prim {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return Integer, nil
		case reflect.Float32, reflect.Float64:
			return Float, nil
		case reflect.Bool:
			return Boolean, nil
		case reflect.String:
			return Text, nil
		}
		return 0, fmt.Errorf("%w '%s'", ErrUnsupportedType, tok.prim)
	}
	name := strings.ToLower(strings.TrimSpace(tok.name))
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("%w '%s'", ErrUnknownLogicalType, tok.name)
}

// Parse resolves a type name. It is shorthand for Resolve(Name(s)).
func Parse(s string) (Type, error) { return Resolve(Name(s)) }

// Classify returns every logical type the physical kind satisfies. Unknown
// and generic object kinds count as text.
func Classify(k dataset.Kind) Set {
	switch k {
	case dataset.KindInteger:
		return Of(Numeric, Integer)
	case dataset.KindFloat:
		return Of(Numeric, Float)
	case dataset.KindBoolean:
		return Of(Boolean)
	case dataset.KindCategory:
		return Of(Categorical)
	case dataset.KindDatetime:
		return Of(Datetime)
	default:
		return Of(Text)
	}
}
