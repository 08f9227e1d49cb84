package csv

import (
	"fmt"
	"io"

	"dataval/internal/dataset"
	"dataval/internal/probe"
)

// ReadDataset parses r and builds a typed dataset. Each column's kind is
// inferred from its non-empty values; cells are converted to int64, float64,
// bool or time.Time to match. Blank cells are missing (nil).
func ReadDataset(r io.Reader, opt Options) (*dataset.Dataset, error) {
	p := NewParser(opt)
	recs, _, err := p.Parse(r)
	if err != nil {
		return nil, err
	}
	headers := p.Headers()

	categorical := make(map[string]bool, len(opt.Categorical))
	for _, c := range opt.Categorical {
		categorical[c] = true
	}

	cols := make([]*dataset.Column, len(headers))
	for i, h := range headers {
		raw := make([]string, len(recs))
		for r, rec := range recs {
			if s, ok := rec[h].(string); ok {
				raw[r] = s
			}
		}

		kind := probe.InferKind(raw)
		if categorical[h] {
			kind = dataset.KindCategory
		}
		layout := ""
		if kind == dataset.KindDatetime {
			layout = probe.DetectLayout(raw)
		}

		vals := make([]any, len(raw))
		for r, s := range raw {
			v, err := probe.Convert(s, kind, layout)
			if err != nil && layout != "" {
				v, err = probe.Convert(s, kind, "")
			}
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", h, r+1, err)
			}
			vals[r] = v
		}
		cols[i] = &dataset.Column{Name: h, Kind: kind, Values: vals}
	}
	return dataset.New(cols...)
}
