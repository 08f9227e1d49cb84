package coltypes

import (
	"sort"
	"strings"

	"dataval/internal/bitmap"
	"dataval/internal/dataset"
)

// checkCoverage reports columns that no rule accounts for. It only runs
// when count mode is engaged: a schema on its own names the columns it cares
// about and says nothing about the rest. Columns claimed by the schema still
// count as covered when both modes run.
func checkCoverage(ds *dataset.Dataset, modes Modes, allowExtra bool, claimed ...*bitmap.Bitmap) (Diagnostic, bool) {
	if !modes.Count || allowExtra {
		return Diagnostic{}, false
	}
	covered := bitmap.New(ds.Width())
	for _, c := range claimed {
		covered.Or(c)
	}
	idx := covered.Missing()
	if len(idx) == 0 {
		return Diagnostic{}, false
	}

	cols := ds.Columns()
	names := make([]string, len(idx))
	for i, j := range idx {
		names[i] = cols[j].Name
	}
	sort.Strings(names)
	return Diagnostic{
		Code:    CodeExtraColumns,
		Message: "unexpected columns not covered by any rule: " + strings.Join(names, ", "),
	}, true
}
