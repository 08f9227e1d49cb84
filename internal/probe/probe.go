// Package probe samples the head of a CSV file (local or remote), infers the
// physical kind of each column and reports the logical types it satisfies.
// It can also render a starter suite file that pins what it found.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"dataval/internal/checks"
	"dataval/internal/coltypes"
	"dataval/internal/datasource/httpds"
	"dataval/internal/dataset"
	"dataval/internal/logicaltype"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultMaxBytes is the sample size when Options.MaxBytes is zero.
const DefaultMaxBytes = 64 << 10

// Options control sampling and output.
type Options struct {
	// Source is a local path or an http(s) URL.
	Source string
	// MaxBytes to sample from the start of the source.
	MaxBytes int
	// Delimiter; ',' when zero.
	Delimiter rune
	// Name of the dataset in the starter suite. Derived from Source when
	// empty.
	Name string
	// Format is text (one line per column) or json/yaml (starter suite).
	Format string
	// SampleDir, when set, receives a copy of the sampled bytes.
	SampleDir string
	// Client fetches remote sources; defaults to httpds.NewClient(Config{}).
	Client *httpds.Client
}

// Column is what the probe learned about one column.
type Column struct {
	Header string          `json:"header" yaml:"header"`
	Name   string          `json:"name" yaml:"name"`
	Kind   dataset.Kind    `json:"kind" yaml:"kind"`
	Types  logicaltype.Set `json:"-" yaml:"-"`
	Layout string          `json:"layout,omitempty" yaml:"layout,omitempty"`
	// Complete is true when no sampled cell was empty.
	Complete bool `json:"complete" yaml:"complete"`
}

// Primary returns the narrowest logical type the column satisfies.
func (c Column) Primary() logicaltype.Type {
	ts := c.Types.Types()
	return ts[len(ts)-1]
}

// Result holds the rendered output and the per-column findings.
type Result struct {
	Name    string
	Rows    int
	Columns []Column
	Body    []byte
}

// Probe samples opt.Source and renders the result in opt.Format.
func Probe(ctx context.Context, opt Options) (Result, error) {
	if opt.Source == "" {
		return Result{}, fmt.Errorf("probe: source is required")
	}
	if opt.MaxBytes <= 0 {
		opt.MaxBytes = DefaultMaxBytes
	}
	if opt.Delimiter == 0 {
		opt.Delimiter = ','
	}
	if opt.Name == "" {
		opt.Name = defaultName(opt.Source)
	}

	data, err := sample(ctx, opt)
	if err != nil {
		return Result{}, err
	}
	// Drop a trailing partial record.
	if i := bytes.LastIndexByte(data, '\n'); i > 0 && len(data) == opt.MaxBytes {
		data = data[:i+1]
	}
	if opt.SampleDir != "" {
		p := filepath.Join(opt.SampleDir, NormalizeFieldName(opt.Name)+".csv")
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return Result{}, fmt.Errorf("probe: save sample: %w", err)
		}
	}

	headers, rows, err := readCSVSample(data, opt.Delimiter)
	if err != nil {
		return Result{}, err
	}
	res := Result{Name: opt.Name, Rows: len(rows), Columns: Infer(headers, rows)}

	switch opt.Format {
	case "", FormatText:
		var buf bytes.Buffer
		for _, c := range res.Columns {
			names := make([]string, 0, 2)
			for _, t := range c.Types.Types() {
				names = append(names, t.String())
			}
			fmt.Fprintf(&buf, "%s,%s,%s,%s\n", c.Header, c.Name, c.Kind, strings.Join(names, "|"))
		}
		res.Body = buf.Bytes()
	case FormatJSON:
		b, err := json.MarshalIndent(starterSuite(opt, res), "", "  ")
		if err != nil {
			return Result{}, err
		}
		res.Body = append(b, '\n')
	case FormatYAML:
		b, err := yaml.Marshal(starterSuite(opt, res))
		if err != nil {
			return Result{}, err
		}
		res.Body = b
	default:
		return Result{}, fmt.Errorf("probe: unknown format %q", opt.Format)
	}
	return res, nil
}

// Infer derives one Column per header from sampled rows.
func Infer(headers []string, rows [][]string) []Column {
	cols := columnsOf(len(headers), rows)
	out := make([]Column, len(headers))
	for i, h := range headers {
		kind := InferKind(cols[i])
		c := Column{
			Header:   h,
			Name:     NormalizeFieldName(h),
			Kind:     kind,
			Types:    logicaltype.Classify(kind),
			Complete: len(rows) > 0 && len(nonEmptyTrimmed(cols[i])) == len(cols[i]),
		}
		if kind == dataset.KindDatetime {
			c.Layout = DetectLayout(cols[i])
		}
		out[i] = c
	}
	return out
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func sample(ctx context.Context, opt Options) ([]byte, error) {
	if isURL(opt.Source) {
		c := opt.Client
		if c == nil {
			c = httpds.NewClient(httpds.Config{})
		}
		return c.FetchFirstBytes(ctx, opt.Source, opt.MaxBytes)
	}
	f, err := os.Open(opt.Source)
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, int64(opt.MaxBytes)))
}

func defaultName(src string) string {
	if isURL(src) {
		return httpds.SafeFilenameFromURL(src)
	}
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// The starter* types mirror the suite file layout read by internal/config.
type starter struct {
	Name     string           `json:"name" yaml:"name"`
	Datasets []starterDataset `json:"datasets" yaml:"datasets"`
}

type starterDataset struct {
	Name   string         `json:"name" yaml:"name"`
	Source starterSource  `json:"source" yaml:"source"`
	Parser starterParser  `json:"parser" yaml:"parser"`
	Checks []starterCheck `json:"checks" yaml:"checks"`
}

type starterSource struct {
	Kind string `json:"kind" yaml:"kind"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

type starterParser struct {
	Kind    string         `json:"kind" yaml:"kind"`
	Options map[string]any `json:"options" yaml:"options"`
}

type starterCheck struct {
	Kind    string `json:"kind" yaml:"kind"`
	Options any    `json:"options" yaml:"options"`
}

// starterSuite pins the sampled column kinds in a col_types check (schema by
// normalized name, counts per narrowest type) and adds a zero-threshold
// missing_values check for every column that was complete in the sample.
func starterSuite(opt Options, res Result) starter {
	var (
		ct        coltypes.Options
		headerMap OrderedMap
	)
	for _, c := range res.Columns {
		p := c.Primary()
		headerMap.Pairs = append(headerMap.Pairs, KV{Key: c.Header, Value: c.Name})
		ct.Schema = append(ct.Schema, coltypes.Entry(c.Name, p.String()))
		switch p {
		case logicaltype.Integer:
			ct.Integer++
		case logicaltype.Float:
			ct.Float++
		case logicaltype.Boolean:
			ct.Boolean++
		case logicaltype.Categorical:
			ct.Categorical++
		case logicaltype.Datetime:
			ct.Datetime++
		default:
			ct.Text++
		}
	}

	ds := starterDataset{
		Name: NormalizeFieldName(res.Name),
		Parser: starterParser{Kind: "csv", Options: map[string]any{
			"has_header": true,
			"comma":      string(opt.Delimiter),
			"trim_space": true,
			"header_map": headerMap,
		}},
		Checks: []starterCheck{{Kind: "col_types", Options: ct}},
	}
	if isURL(opt.Source) {
		ds.Source = starterSource{Kind: "http", URL: opt.Source}
	} else {
		ds.Source = starterSource{Kind: "file", Path: opt.Source}
	}
	for _, c := range res.Columns {
		if c.Complete {
			ds.Checks = append(ds.Checks, starterCheck{
				Kind:    "missing_values",
				Options: checks.MissingOptions{Column: c.Name, Threshold: 0},
			})
		}
	}
	return starter{Name: ds.Name, Datasets: []starterDataset{ds}}
}

// OrderedMap is a string map that keeps insertion order when encoded as a
// JSON object or YAML mapping.
type OrderedMap struct {
	Pairs []KV
}

// KV is one OrderedMap entry.
type KV struct {
	Key   string
	Value string
}

// MarshalJSON emits the pairs in order.
func (om OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range om.Pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.Value)
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

// MarshalYAML emits the pairs as an ordered mapping node.
func (om OrderedMap) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range om.Pairs {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Value},
		)
	}
	return n, nil
}
