package checks

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dataval/internal/dataset"
)

// CaseMode selects the casing rule the categories must follow.
type CaseMode string

const (
	CaseAny   CaseMode = ""
	CaseTitle CaseMode = "title"
	CaseUpper CaseMode = "upper"
	CaseLower CaseMode = "lower"
)

// MsgCategoricalDone is the fixed return value of Categorical; findings go
// to the Notifier.
const MsgCategoricalDone = "Checks completed!"

// CategoricalOptions configures Categorical.
type CategoricalOptions struct {
	Column     string   `yaml:"column" json:"column"`
	Categories int      `yaml:"num_cat" json:"num_cat"`
	Case       CaseMode `yaml:"case" json:"case"`
	Spaces     bool     `yaml:"spaces" json:"spaces"`
}

// Notifier receives categorical findings as they are produced.
type Notifier func(msg string)

// LogNotifier sends findings to log at info level, tagged with the column.
func LogNotifier(log *zap.Logger, column string) Notifier {
	return func(msg string) {
		log.Info(msg, zap.String("column", column))
	}
}

// Finding is one categorical check outcome.
type Finding struct {
	OK      bool   `json:"ok" yaml:"ok"`
	Message string `json:"message" yaml:"message"`
}

// CategoricalResult lists the distinct categories and the findings.
type CategoricalResult struct {
	Categories []string
	Findings   []Finding
}

// Passed reports whether every finding is OK.
func (r CategoricalResult) Passed() bool {
	for _, f := range r.Findings {
		if !f.OK {
			return false
		}
	}
	return true
}

// Categorical checks the distinct non-missing values of a text or category
// column: their number, their casing and, optionally, that each contains a
// space. Findings are sent to notify (which may be nil); the return value is
// always MsgCategoricalDone unless the arguments are invalid.
func Categorical(ds *dataset.Dataset, opts CategoricalOptions, notify Notifier) (string, error) {
	res, err := InspectCategorical(ds, opts)
	if err != nil {
		return "", err
	}
	if notify != nil {
		for _, f := range res.Findings {
			notify(f.Message)
		}
	}
	return MsgCategoricalDone, nil
}

// InspectCategorical runs the categorical checks and returns the findings
// instead of emitting them.
func InspectCategorical(ds *dataset.Dataset, opts CategoricalOptions) (CategoricalResult, error) {
	c, err := column(ds, opts.Column)
	if err != nil {
		return CategoricalResult{}, err
	}
	if opts.Categories <= 0 {
		return CategoricalResult{}, fmt.Errorf("%w: num_cat must be positive, got %d", ErrInvalidArgument, opts.Categories)
	}
	var caser cases.Caser
	switch opts.Case {
	case CaseAny:
	case CaseTitle:
		caser = cases.Title(language.Und)
	case CaseUpper:
		caser = cases.Upper(language.Und)
	case CaseLower:
		caser = cases.Lower(language.Und)
	default:
		return CategoricalResult{}, fmt.Errorf("%w: case must be one of title, upper, lower; got %q", ErrInvalidArgument, opts.Case)
	}
	cats, err := distinctStrings(c, xxh3.HashString)
	if err != nil {
		return CategoricalResult{}, err
	}

	res := CategoricalResult{Categories: cats}
	if len(cats) == opts.Categories {
		res.Findings = append(res.Findings, Finding{OK: true, Message: "Expected and actual number of categories are equal"})
	} else {
		res.Findings = append(res.Findings, Finding{Message: fmt.Sprintf("Expected %d categories, found %d", opts.Categories, len(cats))})
	}

	if opts.Case != CaseAny {
		label := caseLabel(opts.Case)
		bad := filter(cats, func(s string) bool {
			return !hasLetter(s) || caser.String(s) != s
		})
		if len(bad) == 0 {
			res.Findings = append(res.Findings, Finding{OK: true, Message: "All categories are " + label})
		} else {
			res.Findings = append(res.Findings, Finding{Message: "Inconsistent casing, not " + label + ": " + strings.Join(bad, ", ")})
		}
	}

	if opts.Spaces {
		bad := filter(cats, func(s string) bool { return !strings.ContainsRune(s, ' ') })
		if len(bad) == 0 {
			res.Findings = append(res.Findings, Finding{OK: true, Message: "All categories contain spaces"})
		} else {
			res.Findings = append(res.Findings, Finding{Message: "Not all categories contain spaces: " + strings.Join(bad, ", ")})
		}
	}
	return res, nil
}

// distinctStrings returns the distinct non-missing values of c in first-seen
// order.
func distinctStrings(c *dataset.Column, hash func(string) uint64) ([]string, error) {
	switch c.Kind {
	case dataset.KindText, dataset.KindCategory, dataset.KindObject:
	default:
		return nil, fmt.Errorf("%w: column '%s' is %s, want categorical or string values", ErrColumnKind, c.Name, c.Kind)
	}
	// Buckets are keyed by hash; equal hashes still compare the strings.
	seen := make(map[uint64][]string)
	var out []string
	for _, v := range c.Values {
		if dataset.IsMissing(v) {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: column '%s' holds non-string value %v", ErrColumnKind, c.Name, v)
		}
		h := hash(s)
		if slices.Contains(seen[h], s) {
			continue
		}
		seen[h] = append(seen[h], s)
		out = append(out, s)
	}
	return out, nil
}

func caseLabel(m CaseMode) string {
	switch m {
	case CaseTitle:
		return "in title case"
	case CaseUpper:
		return "uppercase"
	default:
		return "lowercase"
	}
}

func hasLetter(s string) bool { return strings.IndexFunc(s, unicode.IsLetter) >= 0 }

func filter(ss []string, keep func(string) bool) []string {
	var out []string
	for _, s := range ss {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
