// Package json loads newline-delimited JSON objects (or, when allowed, one
// top-level array of objects) into records and datasets. Column order is the
// order in which keys are first seen.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"dataval/internal/config"
	"dataval/internal/dataset"
	"dataval/internal/parser"
	"dataval/pkg/records"
)

// Options configures the decoder.
type Options struct {
	// AllowArrays accepts a single top-level array of objects.
	AllowArrays bool
	// Categorical lists keys to load as category columns.
	Categorical []string
}

// FromConfig reads options from a suite parser block (allow_arrays,
// categorical).
func FromConfig(o config.Options) Options {
	return Options{
		AllowArrays: o.Bool("allow_arrays", false),
		Categorical: o.StringSlice("categorical"),
	}
}

// Parser implements parser.Parser for JSON input.
type Parser struct {
	opt  Options
	keys []string
}

var _ parser.Parser = (*Parser)(nil)

// NewParser returns a Parser for opt.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Keys returns the keys seen by the last Parse call, in first-seen order.
func (p *Parser) Keys() []string { return p.keys }

// Parse decodes every object in r. Non-object top-level values are skipped
// and counted; a top-level array is an error unless AllowArrays is set.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	p.keys = nil
	seen := make(map[string]bool)
	var out []records.Record
	skipped := 0

	add := func(raw json.RawMessage) (bool, error) {
		keys, err := objectKeys(raw)
		if err != nil {
			return false, err
		}
		if keys == nil {
			return false, nil
		}
		var m map[string]any
		d := json.NewDecoder(bytes.NewReader(raw))
		d.UseNumber()
		if err := d.Decode(&m); err != nil {
			return false, err
		}
		rec := make(records.Record, len(m))
		for _, k := range keys {
			rec[k] = normalize(m[k])
			if !seen[k] {
				seen[k] = true
				p.keys = append(p.keys, k)
			}
		}
		out = append(out, rec)
		return true, nil
	}

	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, skipped, fmt.Errorf("json parser: decode: %w", err)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			if !p.opt.AllowArrays {
				return nil, skipped, errors.New("json parser: top-level array encountered but allow_arrays=false")
			}
			var elems []json.RawMessage
			if err := json.Unmarshal(raw, &elems); err != nil {
				return nil, skipped, fmt.Errorf("json parser: decode array: %w", err)
			}
			for i, e := range elems {
				ok, err := add(e)
				if err != nil {
					return nil, skipped, fmt.Errorf("json parser: element %d: %w", i, err)
				}
				if !ok {
					return nil, skipped, fmt.Errorf("json parser: element %d in array is not an object", i)
				}
			}
			continue
		}
		ok, err := add(raw)
		if err != nil {
			return nil, skipped, fmt.Errorf("json parser: %w", err)
		}
		if !ok {
			skipped++
		}
	}
	return out, skipped, nil
}

// ReadDataset parses r into a dataset. Kinds follow the decoded Go values:
// integral numbers are int64, other numbers float64, then bool and string;
// nested objects and arrays make an object column. Keys absent from a record
// are missing cells.
func ReadDataset(r io.Reader, opt Options) (*dataset.Dataset, error) {
	p := NewParser(opt)
	recs, _, err := p.Parse(r)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.FromRecords(p.Keys(), recs)
	if err != nil {
		return nil, err
	}
	if len(opt.Categorical) == 0 {
		return ds, nil
	}

	cat := make(map[string]bool, len(opt.Categorical))
	for _, c := range opt.Categorical {
		cat[c] = true
	}
	cols := make([]*dataset.Column, 0, ds.Width())
	for _, c := range ds.Columns() {
		if cat[c.Name] {
			c = &dataset.Column{Name: c.Name, Kind: dataset.KindCategory, Values: c.Values}
		}
		cols = append(cols, c)
	}
	return dataset.New(cols...)
}

// objectKeys returns the top-level keys of a JSON object in document order,
// or nil if raw is not an object.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil
	}
	keys := []string{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, kt.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// normalize turns json.Number into int64 or float64.
func normalize(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
