package probe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"dataval/internal/dataset"
)

// InferKind guesses the physical kind of an untyped column from its string
// values. Every non-empty value must satisfy the narrower kind; candidates
// are tried in the order integer, boolean, float, datetime, then text.
// A column with no non-empty values is text.
func InferKind(values []string) dataset.Kind {
	nonEmpty := nonEmptyTrimmed(values)
	switch {
	case len(nonEmpty) == 0:
		return dataset.KindText
	case allMatch(nonEmpty, isInt):
		return dataset.KindInteger
	case allMatch(nonEmpty, isBool):
		return dataset.KindBoolean
	case allMatch(nonEmpty, isNumber):
		return dataset.KindFloat
	case allMatch(nonEmpty, isDateOrTimestamp):
		return dataset.KindDatetime
	}
	return dataset.KindText
}

// Convert turns a raw cell into the Go value for kind. Blank cells become
// nil (missing). layout is used for datetime cells; when empty every known
// layout is tried.
func Convert(s string, kind dataset.Kind, layout string) (any, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil, nil
	}
	switch kind {
	case dataset.KindInteger:
		return strconv.ParseInt(v, 10, 64)
	case dataset.KindFloat:
		return strconv.ParseFloat(v, 64)
	case dataset.KindBoolean:
		b, ok := parseBool(v)
		if !ok {
			return nil, fmt.Errorf("invalid boolean %q", s)
		}
		return b, nil
	case dataset.KindDatetime:
		return parseTime(v, layout)
	}
	return s, nil
}

func nonEmptyTrimmed(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

var (
	truthy = []string{"true", "t", "yes", "y", "1"}
	falsy  = []string{"false", "f", "no", "n", "0"}
)

func parseBool(s string) (bool, bool) {
	l := strings.ToLower(strings.TrimSpace(s))
	for _, t := range truthy {
		if l == t {
			return true, true
		}
	}
	for _, f := range falsy {
		if l == f {
			return false, true
		}
	}
	return false, false
}

func isBool(s string) bool {
	_, ok := parseBool(s)
	return ok
}

// isInt requires a base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

// isNumber accepts decimal or scientific notation, integers included, so a
// column mixing 3 and 2.5 is float.
func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func isDateOrTimestamp(s string) bool {
	_, err := parseTime(s, "")
	return err == nil
}

func parseTime(s, layout string) (time.Time, error) {
	if layout != "" {
		return time.Parse(layout, s)
	}
	for _, l := range timestampLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date or timestamp %q", s)
}

// dateLayouts are the accepted date formats (no time component).
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"01.02.2006",
	"02/01/2006",
	"01/02/2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2006/01/02",
	"20060102",
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05 -0700",
}

// DetectLayout picks the single layout that parses the most non-empty
// values. Ties go to timestamps over dates, then to the preference order
// DMY > ISO > MDY, then to declaration order. It returns "" if no layout
// parses any value.
func DetectLayout(values []string) string {
	samples := nonEmptyTrimmed(values)
	if len(samples) == 0 {
		return ""
	}
	best, bestScore, bestPref := "", 0, -1
	consider := func(layouts []string, pref func(string) int) {
		for _, l := range layouts {
			score := 0
			for _, s := range samples {
				if _, err := time.Parse(l, s); err == nil {
					score++
				}
			}
			if score == 0 {
				continue
			}
			p := pref(l)
			if score > bestScore || (score == bestScore && p > bestPref) {
				best, bestScore, bestPref = l, score, p
			}
		}
	}
	consider(timestampLayouts, timestampLayoutPreference)
	consider(dateLayouts, dateLayoutPreference)
	return best
}

// dateLayoutPreference ranks date layouts below every timestamp layout.
func dateLayoutPreference(layout string) int {
	switch layout {
	case "02.01.2006", "02/01/2006", "2 Jan 2006", "02-Jan-2006":
		return 3
	case "2006-01-02", "2006/01/02", "20060102":
		return 2
	case "01.02.2006", "01/02/2006":
		return 1
	}
	return 0
}

func timestampLayoutPreference(layout string) int {
	switch layout {
	case time.RFC3339Nano:
		return 12
	case time.RFC3339:
		return 11
	}
	return 10
}
