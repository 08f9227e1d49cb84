package coltypes

import (
	"fmt"

	"dataval/internal/bitmap"
	"dataval/internal/logicaltype"
)

// checkCounts compares per-type column counts with the enforced targets.
// Each enforced type claims every column that satisfies it, whether or not
// the count matches.
func checkCounts(counts Counts, classes []logicaltype.Set, claimed *bitmap.Bitmap) []Diagnostic {
	var diags []Diagnostic
	for _, t := range logicaltype.All {
		want := counts.For(t)
		if want <= 0 {
			continue
		}
		got := 0
		for i, s := range classes {
			if s.Has(t) {
				got++
				claimed.Add(i)
			}
		}
		if got != want {
			diags = append(diags, Diagnostic{
				Code:    CodeCountMismatch,
				Message: fmt.Sprintf("expected %d %s columns, found %d", want, t, got),
			})
		}
	}
	return diags
}
