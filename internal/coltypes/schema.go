package coltypes

import (
	"errors"
	"fmt"

	"dataval/internal/bitmap"
	"dataval/internal/dataset"
	"dataval/internal/logicaltype"
)

// checkSchema walks the schema in order. Every column found is claimed,
// whatever the outcome of its type check; a missing column is reported and
// the walk moves on to the next entry.
func checkSchema(ds *dataset.Dataset, schema Schema, classes []logicaltype.Set, claimed *bitmap.Bitmap) []Diagnostic {
	var diags []Diagnostic
	for _, e := range schema {
		idx := ds.Index(e.Column)
		if idx < 0 {
			diags = append(diags, Diagnostic{
				Code:    CodeMissingColumn,
				Column:  e.Column,
				Message: fmt.Sprintf("missing column '%s'", e.Column),
			})
			continue
		}
		claimed.Add(idx)

		want, err := logicaltype.Resolve(e.Type)
		if err != nil {
			code := CodeUnknownType
			if errors.Is(err, logicaltype.ErrUnsupportedType) {
				code = CodeUnsupportedType
			}
			diags = append(diags, Diagnostic{
				Code:    code,
				Column:  e.Column,
				Message: fmt.Sprintf("column '%s': %v", e.Column, err),
			})
			continue
		}

		if !classes[idx].Has(want) {
			diags = append(diags, Diagnostic{
				Code:    CodeTypeMismatch,
				Column:  e.Column,
				Message: fmt.Sprintf("column '%s' expected type '%s', found %s", e.Column, want, ds.Columns()[idx].Kind),
			})
		}
	}
	return diags
}
