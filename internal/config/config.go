// Package config defines the suite file: which datasets to load, how to parse
// them and which checks to run against each one. Suites are YAML or JSON and
// are loaded with cleanenv, so runtime, logging and metrics settings can be
// overridden from the environment.
//
// Example (trimmed):
//
//	name: nightly
//	datasets:
//	  - name: people
//	    source: { kind: file, path: data/people.csv }
//	    parser: { kind: csv, options: { has_header: true } }
//	    checks:
//	      - kind: col_types
//	        options: { integer_cols: 2, column_schema: { age: integer } }
//	      - kind: missing_values
//	        options: { column: age, threshold: 0.1 }
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"dataval/internal/parser"
)

// Suite is the top-level object decoded from a suite file.
type Suite struct {
	// Name labels metrics and report output.
	Name     string    `yaml:"name" json:"name"`
	Datasets []Dataset `yaml:"datasets" json:"datasets"`
	Runtime  Runtime   `yaml:"runtime" json:"runtime"`
	Log      Log       `yaml:"log" json:"log"`
	Metrics  Metrics   `yaml:"metrics" json:"metrics"`
}

// Dataset pairs one source with the checks run against it.
type Dataset struct {
	Name   string  `yaml:"name" json:"name"`
	Source Source  `yaml:"source" json:"source"`
	Parser Parser  `yaml:"parser" json:"parser"`
	Checks []Check `yaml:"checks" json:"checks"`
}

// Source kinds.
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceMSSQL    = "mssql"
	SourceMySQL    = "mysql"
)

// Source identifies where a dataset's rows come from. File and HTTP sources
// are parsed with Parser; database sources read Table through DSN.
type Source struct {
	Kind    string            `yaml:"kind" json:"kind"`
	Path    string            `yaml:"path" json:"path"`
	URL     string            `yaml:"url" json:"url"`
	Headers map[string]string `yaml:"headers" json:"headers"`
	DSN     string            `yaml:"dsn" json:"dsn"`
	Table   string            `yaml:"table" json:"table"`
	// Limit caps the number of rows read from a table; 0 reads all.
	Limit int `yaml:"limit" json:"limit"`
}

// IsDatabase reports whether the source reads a database table.
func (s Source) IsDatabase() bool {
	switch s.Kind {
	case SourceSQLite, SourcePostgres, SourceMSSQL, SourceMySQL:
		return true
	}
	return false
}

// Parser kinds.
const (
	ParserCSV     = parser.FormatCSV
	ParserJSON    = parser.FormatJSON
	ParserParquet = parser.FormatParquet
)

// Parser selects how raw bytes become a dataset.
type Parser struct {
	// Kind is csv (default), json (NDJSON) or parquet.
	Kind string `yaml:"kind" json:"kind"`

	// Options is interpreted by the parser. For CSV, typical keys include:
	//   has_header (bool), comma (string), trim_space (bool),
	//   expected_fields (int), header_map (object), categorical (array)
	Options Options `yaml:"options" json:"options"`
}

// Runtime controls concurrency and HTTP behaviour.
type Runtime struct {
	// Workers bounds how many datasets are validated at once.
	Workers     int `yaml:"workers" json:"workers" env:"DATAVAL_WORKERS" env-default:"4"`
	HTTPRetries int `yaml:"http_retries" json:"http_retries" env:"DATAVAL_HTTP_RETRIES" env-default:"3"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level" json:"level" env:"DATAVAL_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" json:"format" env:"DATAVAL_LOG_FORMAT" env-default:"console"`
}

// Metrics backends.
const (
	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
	MetricsDatadog     = "datadog"
)

// Metrics selects where run metrics are sent.
type Metrics struct {
	Backend        string `yaml:"backend" json:"backend" env:"DATAVAL_METRICS_BACKEND" env-default:"none"`
	PushgatewayURL string `yaml:"pushgateway_url" json:"pushgateway_url" env:"DATAVAL_PUSHGATEWAY_URL"`
	DatadogAddr    string `yaml:"datadog_addr" json:"datadog_addr" env:"DATAVAL_DATADOG_ADDR"`
}

// Load reads a YAML or JSON suite file (chosen by extension) and applies
// environment overrides and defaults.
func Load(path string) (*Suite, error) {
	var s Suite
	if err := cleanenv.ReadConfig(path, &s); err != nil {
		return nil, fmt.Errorf("read suite %s: %w", path, err)
	}
	return &s, nil
}

// Defaults fills env-default values into a suite built in code.
func Defaults(s *Suite) error {
	return cleanenv.ReadEnv(s)
}
