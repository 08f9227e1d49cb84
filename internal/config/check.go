package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Check kinds.
const (
	CheckColTypes    = "col_types"
	CheckMissing     = "missing_values"
	CheckOutliers    = "outliers"
	CheckCategorical = "categorical"
)

// Check is one check run against a dataset. Options holds the loosely typed
// view; Decode binds them to the check's own options struct, keeping the key
// order of the source document.
type Check struct {
	Kind    string  `yaml:"kind" json:"kind"`
	Options Options `yaml:"options" json:"options"`

	rawYAML *yaml.Node
	rawJSON json.RawMessage
}

// UnmarshalYAML keeps the options node for Decode.
func (c *Check) UnmarshalYAML(n *yaml.Node) error {
	var aux struct {
		Kind    string    `yaml:"kind"`
		Options yaml.Node `yaml:"options"`
	}
	if err := n.Decode(&aux); err != nil {
		return err
	}
	c.Kind = aux.Kind
	c.Options = Options{}
	c.rawYAML = nil
	if aux.Options.Kind != 0 && aux.Options.Tag != "!!null" {
		if err := aux.Options.Decode(&c.Options); err != nil {
			return fmt.Errorf("check %s options (line %d): %w", aux.Kind, aux.Options.Line, err)
		}
		node := aux.Options
		c.rawYAML = &node
	}
	return nil
}

// UnmarshalJSON keeps the raw options object for Decode.
func (c *Check) UnmarshalJSON(b []byte) error {
	var aux struct {
		Kind    string          `json:"kind"`
		Options json.RawMessage `json:"options"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.Kind = aux.Kind
	c.rawJSON = nil
	if err := c.Options.UnmarshalJSON(aux.Options); err != nil {
		return fmt.Errorf("check %s options: %w", aux.Kind, err)
	}
	if len(aux.Options) > 0 && string(aux.Options) != "null" {
		c.rawJSON = aux.Options
	}
	return nil
}

// Decode binds the options to into (a pointer to an options struct). Keys
// that into does not declare are an error.
func (c Check) Decode(into any) error {
	switch {
	case c.rawJSON != nil:
		dec := json.NewDecoder(bytes.NewReader(c.rawJSON))
		dec.DisallowUnknownFields()
		return dec.Decode(into)
	case c.rawYAML != nil:
		b, err := yaml.Marshal(c.rawYAML)
		if err != nil {
			return err
		}
		return decodeYAMLStrict(b, into)
	}
	opts := c.Options
	if opts == nil {
		opts = Options{}
	}
	b, err := yaml.Marshal(map[string]any(opts))
	if err != nil {
		return err
	}
	return decodeYAMLStrict(b, into)
}

func decodeYAMLStrict(b []byte, into any) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	return dec.Decode(into)
}
