// Package coltypes checks that a dataset has the column types its caller
// expects. Two independent modes are supported and may be combined:
//
//   - count mode: the dataset must contain exactly N columns of a logical type
//     (Options.Counts, 0 = not enforced);
//   - schema mode: named columns must exist and satisfy a logical type
//     (Options.Schema).
//
// Content problems never abort a run. Every finding becomes a Diagnostic and
// the Report lists them all: schema findings first (in schema order), then
// count findings (in logical-type table order), then at most one
// extra-columns finding. Only malformed arguments return an error.
package coltypes

import (
	"errors"
	"fmt"

	"dataval/internal/bitmap"
	"dataval/internal/dataset"
	"dataval/internal/logicaltype"
)

// ErrArgumentShape is returned for malformed call arguments: a nil dataset,
// a negative count, or a schema with empty or repeated column names.
var ErrArgumentShape = errors.New("coltypes: invalid arguments")

// Check runs the engaged checks against ds and returns the full report.
func Check(ds *dataset.Dataset, opts Options) (*Report, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: dataset is nil", ErrArgumentShape)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	rep := &Report{
		Modes: Modes{
			Schema: len(opts.Schema) > 0,
			Count:  opts.Counts.Engaged(),
		},
	}
	if ds.IsEmpty() {
		rep.Outcome = OutcomeEmpty
		return rep, nil
	}

	classes := make([]logicaltype.Set, ds.Width())
	for i, c := range ds.Columns() {
		classes[i] = logicaltype.Classify(c.Kind)
	}

	schemaClaimed := bitmap.New(ds.Width())
	countClaimed := bitmap.New(ds.Width())

	if rep.Modes.Schema {
		rep.Diagnostics = append(rep.Diagnostics, checkSchema(ds, opts.Schema, classes, schemaClaimed)...)
	}
	if rep.Modes.Count {
		rep.Diagnostics = append(rep.Diagnostics, checkCounts(opts.Counts, classes, countClaimed)...)
	}
	if d, ok := checkCoverage(ds, rep.Modes, opts.AllowExtraCols, schemaClaimed, countClaimed); ok {
		rep.Diagnostics = append(rep.Diagnostics, d)
	}

	rep.Outcome = OutcomePass
	if len(rep.Diagnostics) > 0 {
		rep.Outcome = OutcomeFail
	}
	return rep, nil
}

// Validate is Check reduced to its message: a success sentence naming the
// modes that passed, or the newline-joined diagnostics.
func Validate(ds *dataset.Dataset, opts Options) (string, error) {
	rep, err := Check(ds, opts)
	if err != nil {
		return "", err
	}
	return rep.Message(), nil
}
