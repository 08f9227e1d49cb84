package suite

import (
	"time"

	"dataval/internal/coltypes"
)

// Status is the outcome of one check.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusError Status = "error"
)

// CheckResult is the outcome of one check against one dataset.
type CheckResult struct {
	Check   string           `json:"check" yaml:"check"`
	Column  string           `json:"column,omitempty" yaml:"column,omitempty"`
	Status  Status           `json:"status" yaml:"status"`
	Message string           `json:"message,omitempty" yaml:"message,omitempty"`
	Notes   []string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	Report  *coltypes.Report `json:"report,omitempty" yaml:"report,omitempty"`
	Error   string           `json:"error,omitempty" yaml:"error,omitempty"`
	Elapsed time.Duration    `json:"elapsed_ns" yaml:"elapsed"`
}

// DatasetResult groups the check results of one dataset.
type DatasetResult struct {
	Name    string        `json:"name" yaml:"name"`
	Source  string        `json:"source" yaml:"source"`
	Rows    int           `json:"rows" yaml:"rows"`
	Columns int           `json:"columns" yaml:"columns"`
	Error   string        `json:"error,omitempty" yaml:"error,omitempty"`
	Checks  []CheckResult `json:"checks" yaml:"checks"`
}

// Result is the outcome of a whole suite run. Passed, Failed and Errored
// count checks, not datasets.
type Result struct {
	RunID    string          `json:"run_id" yaml:"run_id"`
	Suite    string          `json:"suite" yaml:"suite"`
	Started  time.Time       `json:"started" yaml:"started"`
	Elapsed  time.Duration   `json:"elapsed_ns" yaml:"elapsed"`
	Datasets []DatasetResult `json:"datasets" yaml:"datasets"`
	Passed   int             `json:"passed" yaml:"passed"`
	Failed   int             `json:"failed" yaml:"failed"`
	Errored  int             `json:"errored" yaml:"errored"`
}

// OK reports whether every check passed.
func (r *Result) OK() bool { return r.Failed == 0 && r.Errored == 0 }

func (r *Result) tally() {
	r.Passed, r.Failed, r.Errored = 0, 0, 0
	for _, d := range r.Datasets {
		for _, c := range d.Checks {
			switch c.Status {
			case StatusPass:
				r.Passed++
			case StatusFail:
				r.Failed++
			default:
				r.Errored++
			}
		}
	}
}
