package config

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"dataval/internal/checks"
	"dataval/internal/coltypes"
	"dataval/internal/logging"
	"dataval/internal/logicaltype"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single lint finding for a Suite.
//
// Path is a dotted path into the config (e.g. "datasets[0].source.kind",
// "datasets[1].checks[0].options"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity `json:"severity" yaml:"severity"`
	Path     string        `json:"path" yaml:"path"`
	Message  string        `json:"message" yaml:"message"`
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

type lint []Issue

func (l *lint) errorf(path, format string, args ...any) {
	*l = append(*l, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (l *lint) warnf(path, format string, args ...any) {
	*l = append(*l, Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)})
}

// ValidateSuite performs static validation of a Suite. It does not mutate
// the suite; callers decide whether warnings are fatal.
//
//	s, err := config.Load("suite.yaml")
//	if err != nil { ... }
//	for _, iss := range config.ValidateSuite(*s) {
//	    fmt.Println(iss)
//	}
func ValidateSuite(s Suite) []Issue {
	var l lint

	if strings.TrimSpace(s.Name) == "" {
		l.errorf("name", "name must not be empty; it labels metrics and reports")
	}
	if len(s.Datasets) == 0 {
		l.errorf("datasets", "suite has no datasets")
	}
	seen := make(map[string]int, len(s.Datasets))
	for i, d := range s.Datasets {
		path := fmt.Sprintf("datasets[%d]", i)
		switch name := strings.TrimSpace(d.Name); {
		case name == "":
			l.errorf(path+".name", "dataset name must not be empty")
		default:
			if j, dup := seen[name]; dup {
				l.errorf(path+".name", "dataset name %q already used by datasets[%d]", name, j)
			} else {
				seen[name] = i
			}
		}
		l.source(path+".source", d.Source)
		l.parser(path+".parser", d.Source, d.Parser)
		l.checks(path+".checks", d.Checks)
	}
	l.runtime(s.Runtime)
	l.log(s.Log)
	l.metrics(s.Metrics)
	return l
}

func (l *lint) source(path string, s Source) {
	switch s.Kind {
	case "":
		l.errorf(path+".kind", "source kind must not be empty")
	case SourceFile:
		if strings.TrimSpace(s.Path) == "" {
			l.errorf(path+".path", "file source requires a non-empty path")
		}
	case SourceHTTP:
		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			l.errorf(path+".url", "http source requires an absolute http(s) URL, got %q", s.URL)
		}
	case SourceSQLite, SourcePostgres, SourceMSSQL, SourceMySQL:
		if strings.TrimSpace(s.DSN) == "" {
			l.errorf(path+".dsn", "%s source requires a dsn", s.Kind)
		}
		if strings.TrimSpace(s.Table) == "" {
			l.errorf(path+".table", "%s source requires a table", s.Kind)
		}
		if s.Limit < 0 {
			l.errorf(path+".limit", "limit must not be negative, got %d", s.Limit)
		}
	default:
		l.errorf(path+".kind", "unknown source kind %q", s.Kind)
	}
	if !s.IsDatabase() && s.Table != "" {
		l.warnf(path+".table", "table is ignored for %s sources", s.Kind)
	}
}

func (l *lint) parser(path string, src Source, p Parser) {
	if src.IsDatabase() {
		if p.Kind != "" {
			l.warnf(path+".kind", "parser is ignored for %s sources", src.Kind)
		}
		return
	}
	switch p.Kind {
	case "", ParserCSV:
		if c := p.Options.String("comma", ","); utf8.RuneCountInString(c) != 1 {
			l.errorf(path+".options.comma", "comma must be a single character, got %q", c)
		}
		if n := p.Options.Int("expected_fields", 0); n < 0 {
			l.errorf(path+".options.expected_fields", "expected_fields must not be negative, got %d", n)
		}
	case ParserJSON:
	case ParserParquet:
		if src.Kind == SourceHTTP {
			l.warnf(path+".kind", "parquet over http is buffered fully in memory")
		}
	default:
		l.errorf(path+".kind", "unknown parser kind %q", p.Kind)
	}
}

func (l *lint) checks(path string, cs []Check) {
	if len(cs) == 0 {
		l.warnf(path, "dataset has no checks; it will only be loaded")
		return
	}
	for i, c := range cs {
		cp := fmt.Sprintf("%s[%d]", path, i)
		switch c.Kind {
		case CheckColTypes:
			var o coltypes.Options
			if l.decode(cp, c, &o) {
				l.colTypes(cp+".options", o)
			}
		case CheckMissing:
			var o checks.MissingOptions
			if l.decode(cp, c, &o) {
				l.column(cp, o.Column)
				l.threshold(cp+".options.threshold", o.Threshold)
			}
		case CheckOutliers:
			var o checks.OutlierOptions
			if l.decode(cp, c, &o) {
				l.column(cp, o.Column)
				l.threshold(cp+".options.threshold", o.Threshold)
				if !(o.Lower < o.Upper) {
					l.errorf(cp+".options", "lower_bound (%v) must be less than upper_bound (%v)", o.Lower, o.Upper)
				}
			}
		case CheckCategorical:
			var o checks.CategoricalOptions
			if l.decode(cp, c, &o) {
				l.column(cp, o.Column)
				if o.Categories <= 0 {
					l.errorf(cp+".options.num_cat", "num_cat must be positive, got %d", o.Categories)
				}
				switch o.Case {
				case checks.CaseAny, checks.CaseTitle, checks.CaseUpper, checks.CaseLower:
				default:
					l.errorf(cp+".options.case", "case must be one of title, upper, lower; got %q", o.Case)
				}
			}
		case "":
			l.errorf(cp+".kind", "check kind must not be empty")
		default:
			l.errorf(cp+".kind", "unknown check kind %q", c.Kind)
		}
	}
}

func (l *lint) decode(path string, c Check, into any) bool {
	if err := c.Decode(into); err != nil {
		l.errorf(path+".options", "invalid %s options: %v", c.Kind, err)
		return false
	}
	return true
}

func (l *lint) colTypes(path string, o coltypes.Options) {
	for _, t := range logicaltype.All {
		if n := o.Counts.For(t); n < 0 {
			l.errorf(path+"."+t.String()+"_cols", "count must not be negative, got %d", n)
		}
	}
	seen := make(map[string]struct{}, len(o.Schema))
	for _, e := range o.Schema {
		ep := path + ".column_schema." + e.Column
		if _, err := logicaltype.Resolve(e.Type); err != nil {
			l.errorf(ep, "%v", err)
		}
		if _, dup := seen[e.Column]; dup {
			l.errorf(ep, "column listed more than once")
		}
		seen[e.Column] = struct{}{}
	}
	if !o.Counts.Engaged() && len(o.Schema) == 0 {
		l.warnf(path, "col_types check sets no counts and no column_schema; it always passes")
	}
}

func (l *lint) column(path, col string) {
	if strings.TrimSpace(col) == "" {
		l.errorf(path+".options.column", "column must not be empty")
	}
}

func (l *lint) threshold(path string, t float64) {
	if t < 0 || t > 1 {
		l.errorf(path, "threshold must be between 0 and 1, got %v", t)
	}
}

func (l *lint) runtime(r Runtime) {
	if r.Workers < 0 {
		l.errorf("runtime.workers", "workers must not be negative, got %d", r.Workers)
	}
	if r.HTTPRetries < 0 {
		l.errorf("runtime.http_retries", "http_retries must not be negative, got %d", r.HTTPRetries)
	}
}

func (l *lint) log(g Log) {
	if _, err := logging.ParseLevel(g.Level); err != nil {
		l.errorf("log.level", "%v", err)
	}
	switch strings.ToLower(g.Format) {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		l.errorf("log.format", "format must be console or json, got %q", g.Format)
	}
}

func (l *lint) metrics(m Metrics) {
	switch m.Backend {
	case "", MetricsNone:
	case MetricsPushgateway:
		if m.PushgatewayURL == "" {
			l.errorf("metrics.pushgateway_url", "pushgateway backend requires pushgateway_url")
		}
	case MetricsDatadog:
		if m.DatadogAddr == "" {
			l.errorf("metrics.datadog_addr", "datadog backend requires datadog_addr")
		}
	default:
		l.errorf("metrics.backend", "unknown metrics backend %q", m.Backend)
	}
}
