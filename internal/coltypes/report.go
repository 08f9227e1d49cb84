package coltypes

import "strings"

// Success and short-circuit messages.
const (
	MsgSchemaOK  = "All specified columns match their expected types. Check complete!"
	MsgCountOK   = "All column categories are present in the expected numbers. Check complete!"
	MsgBothOK    = "All column categories and specified columns are valid. Check complete!"
	MsgNoRules   = "No column type constraints specified. Check complete!"
	MsgEmptyData = "Dataset is empty. Nothing to validate."
)

// Outcome is the overall result of a check.
type Outcome string

const (
	OutcomePass  Outcome = "pass"
	OutcomeFail  Outcome = "fail"
	OutcomeEmpty Outcome = "empty"
)

// Code classifies a diagnostic.
type Code string

const (
	CodeMissingColumn   Code = "missing_column"
	CodeUnknownType     Code = "unknown_type"
	CodeUnsupportedType Code = "unsupported_type"
	CodeTypeMismatch    Code = "type_mismatch"
	CodeCountMismatch   Code = "count_mismatch"
	CodeExtraColumns    Code = "extra_columns"
)

// Diagnostic is one finding. Column is empty for dataset-level findings.
type Diagnostic struct {
	Code    Code   `json:"code" yaml:"code"`
	Column  string `json:"column,omitempty" yaml:"column,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string { return d.Message }

// Modes records which checks were engaged.
type Modes struct {
	Schema bool `json:"schema" yaml:"schema"`
	Count  bool `json:"count" yaml:"count"`
}

// Any reports whether at least one mode was engaged.
func (m Modes) Any() bool { return m.Schema || m.Count }

// Report is the result of a column-type check.
type Report struct {
	Outcome     Outcome      `json:"outcome" yaml:"outcome"`
	Modes       Modes        `json:"modes" yaml:"modes"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Passed reports whether the check found nothing wrong. An empty dataset
// has not passed.
func (r *Report) Passed() bool { return r.Outcome == OutcomePass }

// Message renders the report for humans.
func (r *Report) Message() string {
	switch r.Outcome {
	case OutcomeEmpty:
		return MsgEmptyData
	case OutcomeFail:
		lines := make([]string, len(r.Diagnostics))
		for i, d := range r.Diagnostics {
			lines[i] = d.Message
		}
		return strings.Join(lines, "\n")
	}
	switch {
	case r.Modes.Schema && r.Modes.Count:
		return MsgBothOK
	case r.Modes.Schema:
		return MsgSchemaOK
	case r.Modes.Count:
		return MsgCountOK
	}
	return MsgNoRules
}
