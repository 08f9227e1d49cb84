package suite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"dataval/internal/config"
	"dataval/internal/dataset"
	"dataval/internal/storage"
	_ "dataval/internal/storage/sqlite"
)

const peopleCSV = `name,age,city,score
Alex,21,Vancouver,1.5
Sam,,Toronto,2.5
Kim,43,Toronto,99
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func newSQLite(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "people.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range []string{
		`CREATE TABLE people (id INTEGER, name TEXT)`,
		`INSERT INTO people VALUES (1, 'Alex'), (2, NULL), (3, 'Sam')`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return dsn
}

func check(kind string, opts config.Options) config.Check {
	return config.Check{Kind: kind, Options: opts}
}

func csvDataset(path string) config.Dataset {
	return config.Dataset{
		Name:   "people-csv",
		Source: config.Source{Kind: config.SourceFile, Path: path},
		Parser: config.Parser{Kind: config.ParserCSV, Options: config.Options{"categorical": []any{"city"}}},
		Checks: []config.Check{
			check(config.CheckColTypes, config.Options{
				"integer_cols": 1, "float_cols": 1, "text_cols": 1, "categorical_cols": 1,
			}),
			check(config.CheckMissing, config.Options{"column": "age", "threshold": 0.5}),
			check(config.CheckOutliers, config.Options{"column": "score", "lower_bound": 0, "upper_bound": 10, "threshold": 0.2}),
			check(config.CheckCategorical, config.Options{"column": "city", "num_cat": 2, "case": "title"}),
		},
	}
}

func statuses(d DatasetResult) []Status {
	out := make([]Status, len(d.Checks))
	for i, c := range d.Checks {
		out[i] = c.Status
	}
	return out
}

func TestRun(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	s := config.Suite{
		Name: "nightly",
		Datasets: []config.Dataset{
			csvDataset(writeFile(t, "people.csv", peopleCSV)),
			{
				Name:   "people-db",
				Source: config.Source{Kind: config.SourceSQLite, DSN: newSQLite(t), Table: "people"},
				Checks: []config.Check{
					check(config.CheckColTypes, config.Options{
						"column_schema": map[string]any{"id": "integer", "name": "text"},
					}),
					check(config.CheckMissing, config.Options{"column": "name", "threshold": 0.1}),
				},
			},
			{
				Name:   "absent",
				Source: config.Source{Kind: config.SourceFile, Path: filepath.Join(t.TempDir(), "nope.csv")},
				Checks: []config.Check{check(config.CheckMissing, config.Options{"column": "a", "threshold": 0.1})},
			},
		},
		Runtime: config.Runtime{Workers: 2},
	}

	res, err := (&Runner{Log: zap.New(core)}).Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, res.Datasets, 3)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "nightly", res.Suite)

	csvRes := res.Datasets[0]
	assert.Equal(t, "people-csv", csvRes.Name)
	assert.Equal(t, 3, csvRes.Rows)
	assert.Equal(t, 4, csvRes.Columns)
	assert.Equal(t, []Status{StatusPass, StatusPass, StatusFail, StatusPass}, statuses(csvRes))
	assert.Equal(t, "age", csvRes.Checks[1].Column)
	assert.Equal(t, []string{"1 of 3 values outside [0, 10]"}, csvRes.Checks[2].Notes)
	require.NotNil(t, csvRes.Checks[0].Report)
	assert.True(t, csvRes.Checks[0].Report.Modes.Count)

	dbRes := res.Datasets[1]
	assert.Equal(t, []Status{StatusPass, StatusFail}, statuses(dbRes))
	assert.Contains(t, dbRes.Checks[1].Message, "0.3333 of values missing")

	absent := res.Datasets[2]
	assert.Contains(t, absent.Error, "nope.csv")
	assert.Equal(t, []Status{StatusError}, statuses(absent))

	assert.Equal(t, 4, res.Passed)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 1, res.Errored)
	assert.False(t, res.OK())

	assert.NotEmpty(t, logs.FilterMessage("All categories are in title case").All())
	finished := logs.FilterMessage("suite finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, res.RunID, finished[0].ContextMap()["run_id"])
}

func TestRunCheckErrorsDoNotAbort(t *testing.T) {
	t.Parallel()

	d := csvDataset(writeFile(t, "people.csv", peopleCSV))
	d.Checks = []config.Check{
		check(config.CheckMissing, config.Options{"column": "income", "threshold": 0.1}),
		check(config.CheckOutliers, config.Options{"column": "name", "lower_bound": 0, "upper_bound": 1}),
		check(config.CheckColTypes, config.Options{"text_cols": 1, "allow_extra_cols": true}),
	}
	res, err := new(Runner).Run(context.Background(), config.Suite{Name: "s", Datasets: []config.Dataset{d}})
	require.NoError(t, err)

	got := res.Datasets[0]
	assert.Equal(t, []Status{StatusError, StatusError, StatusPass}, statuses(got))
	assert.Contains(t, got.Checks[0].Error, "column not found")
	assert.Contains(t, got.Checks[1].Error, "wrong kind")
}

func TestRunInvalidSuite(t *testing.T) {
	t.Parallel()

	_, err := new(Runner).Run(context.Background(), config.Suite{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSuite), "err=%v", err)
	assert.Contains(t, err.Error(), "suite has no datasets")
}

func TestRunHTTPSource(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t0k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("{\"id\": 1, \"name\": \"a\"}\n{\"id\": 2, \"name\": null}\n"))
	}))
	t.Cleanup(srv.Close)

	s := config.Suite{
		Name: "remote",
		Datasets: []config.Dataset{{
			Name: "api",
			Source: config.Source{
				Kind:    config.SourceHTTP,
				URL:     srv.URL + "/people.json",
				Headers: map[string]string{"Authorization": "Bearer t0k"},
			},
			Parser: config.Parser{Kind: config.ParserJSON},
			Checks: []config.Check{
				check(config.CheckMissing, config.Options{"column": "name", "threshold": 0.5}),
			},
		}},
	}
	res, err := NewRunner(zap.NewNop(), config.Runtime{Workers: 1}).Run(context.Background(), s)
	require.NoError(t, err)
	require.Empty(t, res.Datasets[0].Error)
	assert.Equal(t, 2, res.Datasets[0].Rows)
	assert.True(t, res.OK())
}

func TestRunDatabaseSourceUsesStorage(t *testing.T) {
	orig := loadTableFn
	t.Cleanup(func() { loadTableFn = orig })

	var got storage.Config
	loadTableFn = func(_ context.Context, cfg storage.Config) (*dataset.Dataset, error) {
		got = cfg
		return dataset.MustNew(dataset.NewColumn("total", []any{1.5, 2.0, nil})), nil
	}

	s := config.Suite{
		Name: "pg",
		Datasets: []config.Dataset{{
			Name:   "orders",
			Source: config.Source{Kind: config.SourcePostgres, DSN: "postgres://x", Table: "public.orders", Limit: 10},
			Checks: []config.Check{
				check(config.CheckColTypes, config.Options{"float_cols": 1}),
			},
		}},
	}
	res, err := new(Runner).Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, storage.Config{Kind: "postgres", DSN: "postgres://x", Table: "public.orders", Limit: 10}, got)
	assert.True(t, res.OK())
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := new(Runner).Run(ctx, config.Suite{
		Name:     "c",
		Datasets: []config.Dataset{csvDataset(writeFile(t, "people.csv", peopleCSV))},
	})
	assert.True(t, errors.Is(err, context.Canceled), "err=%v", err)
	require.NotNil(t, res)
	assert.Equal(t, 4, res.Errored)
}

func sampleResult() *Result {
	return &Result{
		RunID: "r1",
		Suite: "nightly",
		Datasets: []DatasetResult{{
			Name: "people", Source: "file", Rows: 3, Columns: 2,
			Checks: []CheckResult{
				{Check: "col_types", Status: StatusFail, Message: "expected 2 integer columns, found 1\nunexpected columns"},
				{Check: "categorical", Column: "city", Status: StatusPass, Message: "Checks completed!", Notes: []string{"All categories are uppercase"}},
				{Check: "missing_values", Column: "x", Status: StatusError, Error: "column not found"},
			},
		}},
		Passed: 1, Failed: 1, Errored: 1,
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	var text bytes.Buffer
	require.NoError(t, WriteReport(&text, sampleResult(), FormatText))
	for _, want := range []string{
		"suite nightly (run r1)",
		"3 rows x 2 columns",
		"FAIL",
		"categorical(city)",
		"- All categories are uppercase",
		"column not found",
		"1 passed, 1 failed, 1 errored",
	} {
		assert.Contains(t, text.String(), want)
	}

	var js bytes.Buffer
	require.NoError(t, WriteReport(&js, sampleResult(), FormatJSON))
	var back Result
	require.NoError(t, json.Unmarshal(js.Bytes(), &back))
	assert.Equal(t, "r1", back.RunID)
	assert.Equal(t, StatusFail, back.Datasets[0].Checks[0].Status)

	var ym bytes.Buffer
	require.NoError(t, WriteReport(&ym, sampleResult(), FormatYAML))
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &doc))
	assert.Equal(t, "nightly", doc["suite"])

	assert.Error(t, WriteReport(&text, sampleResult(), "xml"))
}

func TestMetricsBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.Metrics
		wantNil bool
		wantErr bool
	}{
		{"none", config.Metrics{Backend: config.MetricsNone}, true, false},
		{"empty", config.Metrics{}, true, false},
		{"pushgateway", config.Metrics{Backend: config.MetricsPushgateway, PushgatewayURL: "http://127.0.0.1:9091"}, false, false},
		{"pushgateway without url", config.Metrics{Backend: config.MetricsPushgateway}, true, true},
		{"datadog", config.Metrics{Backend: config.MetricsDatadog, DatadogAddr: "127.0.0.1:8125"}, false, false},
		{"datadog without addr", config.Metrics{Backend: config.MetricsDatadog}, true, true},
		{"unknown", config.Metrics{Backend: "graphite"}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := MetricsBackend(tt.cfg, "nightly")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, b)
				return
			}
			assert.NotNil(t, b)
		})
	}
}
