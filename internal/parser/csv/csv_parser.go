// Package csv parses delimited text into row records and typed datasets.
// Column kinds are inferred from the values (see probe.InferKind); columns
// named in Options.Categorical become category columns.
package csv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"dataval/internal/config"
	"dataval/internal/parser"
	"dataval/pkg/records"
)

// Options configures the parser. The zero value reads headerless,
// comma-separated input without trimming.
type Options struct {
	// HasHeader indicates whether the first row holds column names.
	HasHeader bool

	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// TrimSpace trims surrounding whitespace from every field.
	TrimSpace bool

	// ExpectedFields fixes the row width when there is no header. Rows of a
	// different width are skipped and counted.
	ExpectedFields int

	// HeaderMap renames source headers (exact match after trimming). Headers
	// without an entry are lowercased with spaces turned into underscores.
	HeaderMap map[string]string

	// Categorical lists the (mapped) column names to load as categories
	// rather than free text.
	Categorical []string

	// Scrub rewrites byte sequences before they reach the CSV reader, for
	// sources with known broken quoting. It also switches the reader to lazy
	// quotes.
	Scrub map[string]string

	Logger *zap.Logger
}

// FromConfig reads parser options from a suite's parser block. Recognised
// keys: has_header (default true), comma, trim_space (default true),
// expected_fields, header_map, categorical, scrub.
func FromConfig(o config.Options) Options {
	return Options{
		HasHeader:      o.Bool("has_header", true),
		Comma:          o.Rune("comma", ','),
		TrimSpace:      o.Bool("trim_space", true),
		ExpectedFields: o.Int("expected_fields", 0),
		HeaderMap:      o.StringMap("header_map"),
		Categorical:    o.StringSlice("categorical"),
		Scrub:          o.StringMap("scrub"),
	}
}

// Parser parses CSV input according to Options. It may be reused but is not
// safe for concurrent use.
type Parser struct {
	opt     Options
	log     *zap.Logger
	headers []string
}

var _ parser.Parser = (*Parser)(nil)

// NewParser returns a Parser for opt.
func NewParser(opt Options) *Parser {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{opt: opt, log: log}
}

// Headers returns the column keys of the last Parse call, in input order.
func (p *Parser) Headers() []string { return p.headers }

const (
	utf8BOM = "\uFEFF"
	// maxLoggedSkips bounds per-row skip logging on very dirty inputs.
	maxLoggedSkips = 100
)

// Parse reads every record from r. Malformed rows and rows of the wrong
// width are skipped (soft fail) and counted in the second return value. Empty
// fields become nil.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	for old, repl := range p.opt.Scrub {
		r = newStreamingRewriter(r, []byte(old), []byte(repl))
	}

	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	if len(p.opt.Scrub) > 0 {
		cr.LazyQuotes = true
	}

	p.headers = nil
	if p.opt.HasHeader {
		h, err := cr.Read()
		if err == io.EOF {
			return nil, 0, nil
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		p.headers = normalizeHeaders(h, p.opt.HeaderMap)
	} else if p.opt.ExpectedFields > 0 {
		p.headers = make([]string, p.opt.ExpectedFields)
		for i := range p.headers {
			p.headers[i] = fmt.Sprintf("col_%d", i)
		}
	}

	var out []records.Record
	skipped := 0
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.skip(&skipped, line, err.Error())
			continue
		}
		if p.headers == nil {
			p.headers = make([]string, len(row))
			for i := range row {
				p.headers[i] = fmt.Sprintf("col_%d", i)
			}
		}
		if len(row) != len(p.headers) {
			p.skip(&skipped, line, fmt.Sprintf("incorrect number of fields (expected %d, got %d)", len(p.headers), len(row)))
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			if val == "" {
				rec[p.headers[i]] = nil
				continue
			}
			rec[p.headers[i]] = val
		}
		out = append(out, rec)
	}
	if skipped > 0 {
		p.log.Warn("csv rows skipped", zap.Int("skipped", skipped), zap.Int("kept", len(out)))
	}
	return out, skipped, nil
}

func (p *Parser) skip(n *int, line int, reason string) {
	if *n < maxLoggedSkips {
		p.log.Debug("skipping csv row", zap.Int("line", line), zap.String("reason", reason))
	}
	*n++
}

// normalizeHeaders maps raw header cells to column keys and strips a BOM
// from the first one.
func normalizeHeaders(h []string, headerMap map[string]string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if m, ok := headerMap[c]; ok {
			res[i] = m
			continue
		}
		res[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
	}
	return res
}

// streamingRewriter replaces pat with repl on the fly. It withholds the last
// len(pat)-1 bytes of each chunk so matches spanning chunk boundaries are
// still found.
type streamingRewriter struct {
	br    *bufio.Reader
	pat   []byte
	repl  []byte
	carry []byte
	buf   bytes.Buffer
	chunk []byte
	eof   bool
}

func newStreamingRewriter(r io.Reader, pat, repl []byte) *streamingRewriter {
	return &streamingRewriter{
		br:    bufio.NewReaderSize(r, 64*1024),
		pat:   pat,
		repl:  repl,
		chunk: make([]byte, 64*1024),
	}
}

func (sr *streamingRewriter) Read(p []byte) (int, error) {
	for sr.buf.Len() == 0 {
		if sr.eof {
			return 0, io.EOF
		}
		n, err := sr.br.Read(sr.chunk)
		block := append(sr.carry, sr.chunk[:n]...)
		if len(sr.pat) > 0 {
			block = bytes.ReplaceAll(block, sr.pat, sr.repl)
		}

		switch {
		case err == io.EOF:
			sr.buf.Write(block)
			sr.carry = nil
			sr.eof = true
		case err != nil:
			return 0, err
		default:
			k := len(sr.pat) - 1
			if k < 0 {
				k = 0
			}
			if len(block) > k {
				sr.buf.Write(block[:len(block)-k])
				block = block[len(block)-k:]
			}
			sr.carry = append([]byte(nil), block...)
		}
	}
	return sr.buf.Read(p)
}
