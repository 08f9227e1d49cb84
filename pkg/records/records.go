// Package records defines the row type shared by parsers and dataset builders.
package records

// Record is one parsed row keyed by column name. A nil value marks a missing
// cell; parsers never store empty strings for absent data.
type Record map[string]any
