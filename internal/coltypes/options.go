package coltypes

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"dataval/internal/logicaltype"
)

// Counts holds the expected number of columns per logical type.
//
// A count of 0 means "not enforced", not "expect none": there is no way to
// require that a dataset has zero columns of some type.
type Counts struct {
	Numeric     int `yaml:"numeric_cols" json:"numeric_cols"`
	Integer     int `yaml:"integer_cols" json:"integer_cols"`
	Float       int `yaml:"float_cols" json:"float_cols"`
	Boolean     int `yaml:"boolean_cols" json:"boolean_cols"`
	Categorical int `yaml:"categorical_cols" json:"categorical_cols"`
	Text        int `yaml:"text_cols" json:"text_cols"`
	Datetime    int `yaml:"datetime_cols" json:"datetime_cols"`
}

// For returns the expected count for t.
func (c Counts) For(t logicaltype.Type) int {
	switch t {
	case logicaltype.Numeric:
		return c.Numeric
	case logicaltype.Integer:
		return c.Integer
	case logicaltype.Float:
		return c.Float
	case logicaltype.Boolean:
		return c.Boolean
	case logicaltype.Categorical:
		return c.Categorical
	case logicaltype.Text:
		return c.Text
	case logicaltype.Datetime:
		return c.Datetime
	}
	return 0
}

// Engaged reports whether any count is enforced.
func (c Counts) Engaged() bool {
	for _, t := range logicaltype.All {
		if c.For(t) > 0 {
			return true
		}
	}
	return false
}

// SchemaEntry pairs a column name with its expected logical type.
type SchemaEntry struct {
	Column string
	Type   logicaltype.Token
}

// Entry builds a schema entry. typ is a type name or a primitive alias
// (reflect.Kind or reflect.Type); see logicaltype.TokenOf.
func Entry(column string, typ any) SchemaEntry {
	return SchemaEntry{Column: column, Type: logicaltype.TokenOf(typ)}
}

// Schema is an ordered column-name to logical-type mapping. Entries are
// checked in declaration order, so it decodes from YAML and JSON objects
// without losing key order.
type Schema []SchemaEntry

// UnmarshalYAML decodes a YAML mapping of column names to type names.
func (s *Schema) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: column_schema must be a mapping (line %d)", ErrArgumentShape, n.Line)
	}
	out := make(Schema, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: column_schema[%s] must be a type name (line %d)", ErrArgumentShape, k.Value, v.Line)
		}
		out = append(out, SchemaEntry{Column: k.Value, Type: logicaltype.Name(v.Value)})
	}
	*s = out
	return nil
}

// MarshalYAML encodes the schema as an ordered YAML mapping.
func (s Schema) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range s {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Column},
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Type.String()},
		)
	}
	return n, nil
}

// UnmarshalJSON decodes a JSON object of column names to type names,
// keeping key order.
func (s *Schema) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: column_schema must be an object", ErrArgumentShape)
	}
	var out Schema
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var typ string
		if err := dec.Decode(&typ); err != nil {
			return fmt.Errorf("%w: column_schema[%s] must be a type name: %v", ErrArgumentShape, key, err)
		}
		out = append(out, SchemaEntry{Column: key, Type: logicaltype.Name(typ)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalJSON encodes the schema as a JSON object in entry order.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(e.Column)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(e.Type.String())
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Options configures a column-type check. The zero value enforces nothing
// and reports extra columns only once some constraint is engaged.
type Options struct {
	Counts `yaml:",inline"`

	// Schema names specific columns and their expected logical types.
	// An empty schema disables schema checking.
	Schema Schema `yaml:"column_schema" json:"column_schema"`

	// AllowExtraCols suppresses the report of columns no count rule or
	// schema entry accounts for.
	AllowExtraCols bool `yaml:"allow_extra_cols" json:"allow_extra_cols"`
}

// validate rejects malformed arguments before any check runs.
func (o Options) validate() error {
	for _, t := range logicaltype.All {
		if n := o.Counts.For(t); n < 0 {
			return fmt.Errorf("%w: %s_cols must not be negative, got %d", ErrArgumentShape, t, n)
		}
	}
	seen := make(map[string]struct{}, len(o.Schema))
	for i, e := range o.Schema {
		if e.Column == "" {
			return fmt.Errorf("%w: column_schema entry %d has an empty column name", ErrArgumentShape, i)
		}
		if _, dup := seen[e.Column]; dup {
			return fmt.Errorf("%w: column_schema lists %q more than once", ErrArgumentShape, e.Column)
		}
		seen[e.Column] = struct{}{}
	}
	return nil
}
