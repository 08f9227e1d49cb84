// Package suite runs the checks of a suite file: it loads every dataset from
// its source, runs the configured checks against it and collects the
// outcomes. Datasets are processed concurrently; each check call itself is
// single-threaded over an immutable dataset.
package suite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dataval/internal/config"
	"dataval/internal/datasource"
	"dataval/internal/datasource/file"
	"dataval/internal/datasource/httpds"
	"dataval/internal/dataset"
	"dataval/internal/metrics"
	csvparser "dataval/internal/parser/csv"
	jsonparser "dataval/internal/parser/json"
	parquetparser "dataval/internal/parser/parquet"
	"dataval/internal/storage"
)

// ErrInvalidSuite is returned by Run when the suite has lint errors.
var ErrInvalidSuite = errors.New("suite: invalid configuration")

// Function variables used as test seams.
var (
	loadTableFn = storage.Load
)

// Runner executes suites. The zero value is usable: it logs nowhere, takes
// its worker count from the suite and builds HTTP clients on demand.
type Runner struct {
	Log  *zap.Logger
	HTTP *httpds.Client
	// Workers overrides the suite's runtime.workers when positive.
	Workers int
	// HTTPRetries applies to clients built for sources with custom headers.
	HTTPRetries int
}

// NewRunner builds a Runner whose HTTP client follows the suite's runtime
// settings.
func NewRunner(log *zap.Logger, rt config.Runtime) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		Log:         log,
		HTTP:        httpds.NewClient(httpds.Config{MaxRetries: rt.HTTPRetries, Logger: log}),
		Workers:     rt.Workers,
		HTTPRetries: rt.HTTPRetries,
	}
}

// Run validates s, then loads and checks every dataset. A dataset that fails
// to load marks its checks as errored without stopping the others. The
// returned error is non-nil only for an invalid suite or a canceled context.
func (r *Runner) Run(ctx context.Context, s config.Suite) (*Result, error) {
	if issues := config.ValidateSuite(s); config.HasErrors(issues) {
		var errs []error
		for _, iss := range issues {
			if iss.Severity == config.SeverityError {
				errs = append(errs, iss)
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSuite, errors.Join(errs...))
	}

	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	res := &Result{
		RunID:    uuid.NewString(),
		Suite:    s.Name,
		Started:  time.Now().UTC(),
		Datasets: make([]DatasetResult, len(s.Datasets)),
	}
	log = log.With(zap.String("run_id", res.RunID), zap.String("suite", s.Name))
	log.Info("suite started", zap.Int("datasets", len(s.Datasets)))

	workers := r.Workers
	if workers <= 0 {
		workers = s.Runtime.Workers
	}
	if workers <= 0 {
		workers = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, d := range s.Datasets {
		g.Go(func() error {
			res.Datasets[i] = r.runDataset(gctx, s.Name, d, log.With(zap.String("dataset", d.Name)))
			return nil
		})
	}
	_ = g.Wait()

	res.Elapsed = time.Since(res.Started)
	res.tally()
	log.Info("suite finished",
		zap.Int("passed", res.Passed),
		zap.Int("failed", res.Failed),
		zap.Int("errored", res.Errored),
		zap.Duration("elapsed", res.Elapsed),
	)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) runDataset(ctx context.Context, suiteName string, d config.Dataset, log *zap.Logger) DatasetResult {
	out := DatasetResult{Name: d.Name, Source: d.Source.Kind}

	start := time.Now()
	ds, err := r.Load(ctx, d)
	metrics.RecordLoad(suiteName, d.Source.Kind, err, time.Since(start))
	if err != nil {
		log.Error("load failed", zap.Error(err))
		out.Error = err.Error()
		for _, c := range d.Checks {
			out.Checks = append(out.Checks, CheckResult{
				Check:  c.Kind,
				Status: StatusError,
				Error:  "dataset not loaded: " + err.Error(),
			})
			metrics.RecordCheck(suiteName, d.Name, c.Kind, metrics.StatusError, 0)
		}
		return out
	}
	out.Rows, out.Columns = ds.Rows(), ds.Width()
	log.Debug("dataset loaded", zap.Int("rows", out.Rows), zap.Int("columns", out.Columns),
		zap.Duration("elapsed", time.Since(start)))

	for _, c := range d.Checks {
		if ctx.Err() != nil {
			out.Checks = append(out.Checks, CheckResult{Check: c.Kind, Status: StatusError, Error: ctx.Err().Error()})
			continue
		}
		cs := time.Now()
		cr := runCheck(ds, c, log)
		cr.Elapsed = time.Since(cs)
		metrics.RecordCheck(suiteName, d.Name, c.Kind, string(cr.Status), cr.Elapsed)
		if cr.Report != nil {
			metrics.RecordDiagnostics(suiteName, d.Name, len(cr.Report.Diagnostics))
		}
		logCheck(log, cr)
		out.Checks = append(out.Checks, cr)
	}
	return out
}

// Load reads d from its source. Database sources go through the storage
// registry; file and HTTP sources are parsed with the configured parser.
func (r *Runner) Load(ctx context.Context, d config.Dataset) (*dataset.Dataset, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("dataset", d.Name))
	if d.Source.IsDatabase() {
		return loadTableFn(ctx, storage.Config{
			Kind:  d.Source.Kind,
			DSN:   d.Source.DSN,
			Table: d.Source.Table,
			Limit: d.Source.Limit,
		})
	}

	var src datasource.Source
	switch d.Source.Kind {
	case config.SourceFile:
		src = file.NewLocal(d.Source.Path)
	case config.SourceHTTP:
		client := r.HTTP
		if len(d.Source.Headers) > 0 || client == nil {
			h := make(http.Header, len(d.Source.Headers))
			for k, v := range d.Source.Headers {
				h.Set(k, v)
			}
			client = httpds.NewClient(httpds.Config{BaseHeaders: h, MaxRetries: r.HTTPRetries, Logger: log})
		}
		src = httpds.NewSource(client, d.Source.URL)
	default:
		return nil, fmt.Errorf("unknown source kind %q", d.Source.Kind)
	}

	switch d.Parser.Kind {
	case "", config.ParserCSV:
		opts := csvparser.FromConfig(d.Parser.Options)
		opts.Logger = log
		return parseStream(ctx, src, func(rc *bytes.Reader) (*dataset.Dataset, error) {
			return csvparser.ReadDataset(rc, opts)
		})
	case config.ParserJSON:
		opts := jsonparser.FromConfig(d.Parser.Options)
		return parseStream(ctx, src, func(rc *bytes.Reader) (*dataset.Dataset, error) {
			return jsonparser.ReadDataset(rc, opts)
		})
	case config.ParserParquet:
		return parseStream(ctx, src, func(rc *bytes.Reader) (*dataset.Dataset, error) {
			return parquetparser.ReadDataset(rc, rc.Size())
		})
	}
	return nil, fmt.Errorf("unknown parser kind %q", d.Parser.Kind)
}

// parseStream buffers the source so the parser sees a complete, seekable
// input and transport errors surface before parsing starts.
func parseStream(ctx context.Context, src datasource.Source, parse func(*bytes.Reader) (*dataset.Dataset, error)) (*dataset.Dataset, error) {
	b, err := datasource.ReadAll(ctx, src)
	if err != nil {
		return nil, err
	}
	ds, err := parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return ds, nil
}

func logCheck(log *zap.Logger, cr CheckResult) {
	fields := []zap.Field{
		zap.String("check", cr.Check),
		zap.String("status", string(cr.Status)),
		zap.Duration("elapsed", cr.Elapsed),
	}
	if cr.Column != "" {
		fields = append(fields, zap.String("column", cr.Column))
	}
	switch cr.Status {
	case StatusPass:
		log.Info("check passed", fields...)
	case StatusFail:
		log.Warn("check failed", append(fields, zap.String("message", cr.Message))...)
	default:
		log.Error("check errored", append(fields, zap.String("error", cr.Error))...)
	}
}
