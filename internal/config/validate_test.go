package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// hasIssue reports whether issues contains a finding with the given severity
// whose path equals path and whose message contains substr.
func hasIssue(issues []Issue, sev IssueSeverity, path, substr string) bool {
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, substr) {
			return true
		}
	}
	return false
}

func validSuite() Suite {
	return Suite{
		Name: "nightly",
		Datasets: []Dataset{{
			Name:   "people",
			Source: Source{Kind: SourceFile, Path: "people.csv"},
			Parser: Parser{Kind: ParserCSV, Options: Options{"comma": ","}},
			Checks: []Check{
				{Kind: CheckColTypes, Options: Options{"integer_cols": 1}},
				{Kind: CheckMissing, Options: Options{"column": "age", "threshold": 0.1}},
			},
		}},
		Log: Log{Level: "info", Format: "console"},
	}
}

func TestValidateSuiteClean(t *testing.T) {
	t.Parallel()
	issues := ValidateSuite(validSuite())
	assert.Empty(t, issues)
	assert.False(t, HasErrors(issues))
}

func TestValidateSuite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(s *Suite)
		sev    IssueSeverity
		path   string
		substr string
	}{
		{"empty name", func(s *Suite) { s.Name = " " }, SeverityError, "name", "must not be empty"},
		{"no datasets", func(s *Suite) { s.Datasets = nil }, SeverityError, "datasets", "no datasets"},
		{"duplicate dataset", func(s *Suite) { s.Datasets = append(s.Datasets, s.Datasets[0]) },
			SeverityError, "datasets[1].name", "already used"},
		{"file without path", func(s *Suite) { s.Datasets[0].Source.Path = "" },
			SeverityError, "datasets[0].source.path", "non-empty path"},
		{"bad url", func(s *Suite) { s.Datasets[0].Source = Source{Kind: SourceHTTP, URL: "ftp://x"} },
			SeverityError, "datasets[0].source.url", "http(s) URL"},
		{"db without table", func(s *Suite) {
			s.Datasets[0].Source = Source{Kind: SourcePostgres, DSN: "postgres://x"}
			s.Datasets[0].Parser = Parser{}
		}, SeverityError, "datasets[0].source.table", "requires a table"},
		{"negative limit", func(s *Suite) {
			s.Datasets[0].Source = Source{Kind: SourceSQLite, DSN: "x.db", Table: "t", Limit: -1}
			s.Datasets[0].Parser = Parser{}
		}, SeverityError, "datasets[0].source.limit", "negative"},
		{"parser ignored for db", func(s *Suite) {
			s.Datasets[0].Source = Source{Kind: SourceMySQL, DSN: "u@/db", Table: "t"}
		}, SeverityWarning, "datasets[0].parser.kind", "ignored"},
		{"unknown source", func(s *Suite) { s.Datasets[0].Source.Kind = "s3" },
			SeverityError, "datasets[0].source.kind", "unknown source kind"},
		{"bad comma", func(s *Suite) { s.Datasets[0].Parser.Options["comma"] = ";;" },
			SeverityError, "datasets[0].parser.options.comma", "single character"},
		{"unknown parser", func(s *Suite) { s.Datasets[0].Parser.Kind = "xml" },
			SeverityError, "datasets[0].parser.kind", "unknown parser kind"},
		{"no checks", func(s *Suite) { s.Datasets[0].Checks = nil },
			SeverityWarning, "datasets[0].checks", "no checks"},
		{"unknown check", func(s *Suite) { s.Datasets[0].Checks[0].Kind = "uniqueness" },
			SeverityError, "datasets[0].checks[0].kind", "unknown check kind"},
		{"negative count", func(s *Suite) { s.Datasets[0].Checks[0].Options = Options{"float_cols": -1} },
			SeverityError, "datasets[0].checks[0].options.float_cols", "negative"},
		{"bad schema type", func(s *Suite) {
			s.Datasets[0].Checks[0].Options = Options{"column_schema": map[string]any{"age": "decimal"}}
		}, SeverityError, "datasets[0].checks[0].options.column_schema.age", "decimal"},
		{"inert col_types", func(s *Suite) { s.Datasets[0].Checks[0].Options = nil },
			SeverityWarning, "datasets[0].checks[0].options", "always passes"},
		{"unknown option key", func(s *Suite) { s.Datasets[0].Checks[1].Options["colum"] = "x" },
			SeverityError, "datasets[0].checks[1].options", "invalid missing_values options"},
		{"threshold range", func(s *Suite) { s.Datasets[0].Checks[1].Options["threshold"] = 1.5 },
			SeverityError, "datasets[0].checks[1].options.threshold", "between 0 and 1"},
		{"outlier bounds", func(s *Suite) {
			s.Datasets[0].Checks[1] = Check{Kind: CheckOutliers, Options: Options{"column": "age", "lower_bound": 9, "upper_bound": 1}}
		}, SeverityError, "datasets[0].checks[1].options", "less than upper_bound"},
		{"categorical count", func(s *Suite) {
			s.Datasets[0].Checks[1] = Check{Kind: CheckCategorical, Options: Options{"column": "city"}}
		}, SeverityError, "datasets[0].checks[1].options.num_cat", "positive"},
		{"categorical case", func(s *Suite) {
			s.Datasets[0].Checks[1] = Check{Kind: CheckCategorical, Options: Options{"column": "city", "num_cat": 2, "case": "camel"}}
		}, SeverityError, "datasets[0].checks[1].options.case", "camel"},
		{"empty column", func(s *Suite) { s.Datasets[0].Checks[1].Options["column"] = "" },
			SeverityError, "datasets[0].checks[1].options.column", "must not be empty"},
		{"negative workers", func(s *Suite) { s.Runtime.Workers = -1 },
			SeverityError, "runtime.workers", "negative"},
		{"bad log level", func(s *Suite) { s.Log.Level = "loud" }, SeverityError, "log.level", "loud"},
		{"bad log format", func(s *Suite) { s.Log.Format = "xml" }, SeverityError, "log.format", "console or json"},
		{"pushgateway without url", func(s *Suite) { s.Metrics.Backend = MetricsPushgateway },
			SeverityError, "metrics.pushgateway_url", "requires"},
		{"datadog without addr", func(s *Suite) { s.Metrics.Backend = MetricsDatadog },
			SeverityError, "metrics.datadog_addr", "requires"},
		{"unknown metrics backend", func(s *Suite) { s.Metrics.Backend = "graphite" },
			SeverityError, "metrics.backend", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSuite()
			tt.mutate(&s)
			issues := ValidateSuite(s)
			assert.True(t, hasIssue(issues, tt.sev, tt.path, tt.substr), "issues: %v", issues)
		})
	}
}

func TestIssueError(t *testing.T) {
	t.Parallel()
	iss := Issue{Severity: SeverityError, Path: "name", Message: "boom"}
	assert.Equal(t, "error at name: boom", iss.Error())
}
