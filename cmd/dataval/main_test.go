package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataval/internal/coltypes"
	"dataval/internal/config"
	"dataval/internal/suite"
)

const peopleCSV = "name,age,city\nAlex,21,Vancouver\nSam,34,Toronto\n"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level=error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func suiteFile(t *testing.T, dataPath, checks string) string {
	t.Helper()
	body := fmt.Sprintf(`name: cli
datasets:
  - name: people
    source:
      kind: file
      path: %q
    parser:
      kind: csv
      options:
        categorical: [city]
    checks:
%s`, dataPath, checks)
	return writeFile(t, t.TempDir(), "suite.yaml", body)
}

const passingChecks = `      - kind: col_types
        options:
          integer_cols: 1
          text_cols: 1
          categorical_cols: 1
      - kind: missing_values
        options: { column: name, threshold: 0 }
`

func TestRunCommand(t *testing.T) {
	t.Parallel()

	data := writeFile(t, t.TempDir(), "people.csv", peopleCSV)

	out, err := execute(t, "run", "--config", suiteFile(t, data, passingChecks))
	require.NoError(t, err)
	assert.Contains(t, out, "suite cli")
	assert.Contains(t, out, "2 passed, 0 failed, 0 errored")

	out, err = execute(t, "run", "--config", suiteFile(t, data, passingChecks), "--format", "json")
	require.NoError(t, err)
	var res suite.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "cli", res.Suite)
	assert.Equal(t, 2, res.Passed)
}

func TestRunCommandFailingCheck(t *testing.T) {
	t.Parallel()

	data := writeFile(t, t.TempDir(), "people.csv", peopleCSV)
	checks := `      - kind: col_types
        options: { integer_cols: 2 }
`
	out, err := execute(t, "run", "--config", suiteFile(t, data, checks))
	assert.True(t, errors.Is(err, errChecksFailed), "err=%v", err)
	assert.Contains(t, out, "expected 2 integer columns, found 1")
}

func TestRunCommandInvalidSuite(t *testing.T) {
	t.Parallel()

	checks := `      - kind: outliers
        options: { column: age, lower_bound: 5, upper_bound: 1 }
`
	_, err := execute(t, "run", "--config", suiteFile(t, "people.csv", checks))
	require.Error(t, err)
	assert.True(t, errors.Is(err, suite.ErrInvalidSuite), "err=%v", err)

	_, err = execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	data := writeFile(t, t.TempDir(), "people.csv", peopleCSV)

	tests := []struct {
		name     string
		args     []string
		wantErr  error
		contains string
	}{
		{
			name:     "counts and schema pass",
			args:     []string{"--integer-cols", "1", "--schema", "name=text", "--allow-extra-cols"},
			contains: coltypes.MsgBothOK,
		},
		{
			name:     "categorical flag",
			args:     []string{"--categorical", "city", "--categorical-cols", "1", "--allow-extra-cols"},
			contains: coltypes.MsgCountOK,
		},
		{
			name:     "count mismatch",
			args:     []string{"--integer-cols", "2"},
			wantErr:  errChecksFailed,
			contains: "expected 2 integer columns, found 1",
		},
		{
			name:     "extra columns",
			args:     []string{"--integer-cols", "1"},
			wantErr:  errChecksFailed,
			contains: "unexpected columns not covered by any rule: city, name",
		},
		{
			name:     "no rules",
			contains: coltypes.MsgNoRules,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := execute(t, append([]string{"check", data}, tt.args...)...)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "err=%v", err)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out, "2 rows x 3 columns")
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestCheckCommandJSON(t *testing.T) {
	t.Parallel()

	data := writeFile(t, t.TempDir(), "people.json", `{"id": 1, "ok": true}`+"\n"+`{"id": 2, "ok": false}`+"\n")
	out, err := execute(t, "check", data, "--boolean-cols", "1", "--integer-cols", "1", "--format", "json")
	require.NoError(t, err)

	var rep coltypes.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, coltypes.OutcomePass, rep.Outcome)
	assert.True(t, rep.Modes.Count)
}

func TestCheckCommandErrors(t *testing.T) {
	t.Parallel()

	data := writeFile(t, t.TempDir(), "people.csv", peopleCSV)

	_, err := execute(t, "check", data, "--schema", "name")
	assert.ErrorContains(t, err, "want column=type")

	_, err = execute(t, "check", data, "--text-cols", "-1")
	assert.True(t, errors.Is(err, coltypes.ErrArgumentShape), "err=%v", err)

	_, err = execute(t, "check")
	assert.Error(t, err)

	_, err = execute(t, "check", filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestParseSchema(t *testing.T) {
	t.Parallel()

	got, err := parseSchema([]string{"zeta = float", "alpha=integer"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "zeta", got[0].Column)
	assert.Equal(t, "alpha", got[1].Column)

	for _, bad := range []string{"", "name", "=text", "name="} {
		_, err := parseSchema([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParserFor(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"a.csv":         config.ParserCSV,
		"a.tsv":         config.ParserCSV,
		"a.JSON":        config.ParserJSON,
		"a.ndjson":      config.ParserJSON,
		"dir/a.parquet": config.ParserParquet,
		"no-extension":  config.ParserCSV,
	}
	for in, want := range tests {
		assert.Equal(t, want, parserFor(in), in)
	}
}

func TestProbeCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", peopleCSV)
	b := writeFile(t, dir, "b.csv", "flag\ntrue\nfalse\n")

	out, err := execute(t, "probe", a)
	require.NoError(t, err)
	assert.Contains(t, out, "age,age,integer,")
	assert.Contains(t, out, "name,name,text,")

	list := writeFile(t, dir, "sources.txt", "# sources\n"+a+"\n\n"+b+"\n")
	out, err = execute(t, "probe", "--list", list)
	require.NoError(t, err)
	assert.Contains(t, out, "# "+a)
	assert.Contains(t, out, "# "+b)
	assert.Contains(t, out, "flag,flag,boolean,")

	_, err = execute(t, "probe")
	assert.ErrorContains(t, err, "FILE or URL")

	_, err = execute(t, "probe", filepath.Join(dir, "absent.csv"))
	assert.ErrorContains(t, err, "1 of 1 sources")
}

func TestLintCommand(t *testing.T) {
	t.Parallel()

	good := suiteFile(t, "people.csv", passingChecks)
	out, err := execute(t, "lint", "--config", good)
	require.NoError(t, err)
	assert.Contains(t, out, ": ok")

	noChecks := suiteFile(t, "people.csv", "")
	out, err = execute(t, "lint", "--config", noChecks)
	require.NoError(t, err)
	assert.Contains(t, out, "dataset has no checks")

	_, err = execute(t, "lint", "--config", noChecks, "--strict")
	assert.Error(t, err)

	bad := suiteFile(t, "people.csv", `      - kind: categorical
        options: { column: city, num_cat: 0 }
`)
	out, err = execute(t, "lint", "--config", bad, "--format", "json")
	require.Error(t, err)
	var issues []config.Issue
	require.NoError(t, json.Unmarshal([]byte(out), &issues))
	require.NotEmpty(t, issues)
	assert.Equal(t, config.SeverityError, issues[0].Severity)
	assert.Equal(t, "datasets[0].checks[0].options.num_cat", issues[0].Path)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dataval "+Version)
}
