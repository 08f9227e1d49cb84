package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataval/internal/checks"
	"dataval/internal/coltypes"
)

const suiteYAML = `
name: nightly
datasets:
  - name: people
    source: { kind: file, path: data/people.csv }
    parser:
      kind: csv
      options:
        has_header: true
        comma: ";"
        expected_fields: 4
        header_map: { "First Name": first_name }
        categorical: [city]
    checks:
      - kind: col_types
        options:
          integer_cols: 1
          text_cols: 2
          column_schema:
            name: text
            age: integer
            city: categorical
      - kind: missing_values
        options: { column: age, threshold: 0.1 }
runtime:
  workers: 2
`

const suiteJSON = `{
  "name": "nightly",
  "datasets": [{
    "name": "orders",
    "source": {"kind": "sqlite", "dsn": "orders.db", "table": "orders", "limit": 100},
    "checks": [
      {"kind": "col_types", "options": {"column_schema": {"zeta": "float", "alpha": "integer"}}},
      {"kind": "outliers", "options": {"column": "total", "lower_bound": 0, "upper_bound": 500, "threshold": 0.05}}
    ]
  }]
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	s, err := Load(writeFile(t, "suite.yaml", suiteYAML))
	require.NoError(t, err)

	assert.Equal(t, "nightly", s.Name)
	require.Len(t, s.Datasets, 1)
	d := s.Datasets[0]
	assert.Equal(t, "data/people.csv", d.Source.Path)
	assert.Equal(t, ';', d.Parser.Options.Rune("comma", ','))
	assert.Equal(t, 4, d.Parser.Options.Int("expected_fields", 0))
	assert.Equal(t, map[string]string{"First Name": "first_name"}, d.Parser.Options.StringMap("header_map"))
	assert.Equal(t, []string{"city"}, d.Parser.Options.StringSlice("categorical"))

	var ct coltypes.Options
	require.NoError(t, d.Checks[0].Decode(&ct))
	assert.Equal(t, 1, ct.Integer)
	assert.Equal(t, 2, ct.Text)
	require.Len(t, ct.Schema, 3)
	assert.Equal(t, []string{"name", "age", "city"},
		[]string{ct.Schema[0].Column, ct.Schema[1].Column, ct.Schema[2].Column})

	var mv checks.MissingOptions
	require.NoError(t, d.Checks[1].Decode(&mv))
	assert.Equal(t, checks.MissingOptions{Column: "age", Threshold: 0.1}, mv)

	assert.Equal(t, 2, s.Runtime.Workers)
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	s, err := Load(writeFile(t, "suite.json", suiteJSON))
	require.NoError(t, err)

	d := s.Datasets[0]
	assert.True(t, d.Source.IsDatabase())
	assert.Equal(t, 100, d.Source.Limit)

	var ct coltypes.Options
	require.NoError(t, d.Checks[0].Decode(&ct))
	require.Len(t, ct.Schema, 2)
	assert.Equal(t, "zeta", ct.Schema[0].Column)
	assert.Equal(t, "alpha", ct.Schema[1].Column)

	var oo checks.OutlierOptions
	require.NoError(t, d.Checks[1].Decode(&oo))
	assert.Equal(t, 500.0, oo.Upper)
	assert.Equal(t, 0.05, oo.Threshold)
}

// Not parallel: sets environment variables.
func TestLoadAppliesEnvDefaultsAndOverrides(t *testing.T) {
	t.Setenv("DATAVAL_LOG_LEVEL", "debug")

	s, err := Load(writeFile(t, "suite.yaml", suiteYAML))
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "console", s.Log.Format)
	assert.Equal(t, MetricsNone, s.Metrics.Backend)
	assert.Equal(t, 3, s.Runtime.HTTPRetries)
	assert.Equal(t, 2, s.Runtime.Workers) // file value wins over the default
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "datasets: [\n"))
	assert.Error(t, err)
}

func TestCheckDecodeRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	s, err := Load(writeFile(t, "suite.yaml", `
name: x
datasets:
  - name: d
    source: { kind: file, path: a.csv }
    checks:
      - kind: missing_values
        options: { column: a, treshold: 0.1 }
`))
	require.NoError(t, err)
	var mv checks.MissingOptions
	assert.Error(t, s.Datasets[0].Checks[0].Decode(&mv))
}

func TestCheckDecodeFromCode(t *testing.T) {
	t.Parallel()

	c := Check{Kind: CheckCategorical, Options: Options{"column": "city", "num_cat": 3, "case": "upper"}}
	var co checks.CategoricalOptions
	require.NoError(t, c.Decode(&co))
	assert.Equal(t, checks.CategoricalOptions{Column: "city", Categories: 3, Case: checks.CaseUpper}, co)

	var empty checks.MissingOptions
	require.NoError(t, Check{Kind: CheckMissing}.Decode(&empty))
}

func TestOptionsGetters(t *testing.T) {
	t.Parallel()

	o := Options{
		"s": "x", "b": true, "i": 7, "n": 3.0,
		"m":  map[string]any{"a": "1", "b": 2},
		"sl": []any{"a", 1, "b"},
	}
	assert.Equal(t, "x", o.String("s", "d"))
	assert.Equal(t, "d", o.String("b", "d"))
	assert.True(t, o.Bool("b", false))
	assert.Equal(t, 7, o.Int("i", 0))
	assert.Equal(t, 3, o.Int("n", 0))
	assert.Equal(t, 'x', o.Rune("s", ','))
	assert.Equal(t, ',', o.Rune("missing", ','))
	assert.Equal(t, map[string]string{"a": "1"}, o.StringMap("m"))
	assert.Equal(t, []string{"a", "b"}, o.StringSlice("sl"))
	assert.Nil(t, o.StringSlice("missing"))

	var nullOpts Options
	require.NoError(t, nullOpts.UnmarshalJSON([]byte("null")))
	assert.NotNil(t, nullOpts)
}
