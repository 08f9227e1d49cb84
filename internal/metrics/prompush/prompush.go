// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Suite runs are short-lived batch jobs, so instead of exposing a scrape
// endpoint the collected metrics are pushed to a Pushgateway on Flush. The
// suite name becomes the Pushgateway job; the remaining labels map onto
// Prometheus label values.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"dataval/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	checkCounter  *prometheus.CounterVec   // dataval_check_total
	checkDuration *prometheus.HistogramVec // dataval_check_duration_seconds
	diagCounter   *prometheus.CounterVec   // dataval_diagnostics_total
	loadCounter   *prometheus.CounterVec   // dataval_load_total
	loadDuration  *prometheus.SummaryVec   // dataval_load_duration_seconds
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (usually the suite name).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "dataval"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		checkCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.CheckTotal,
				Help: "Check executions, partitioned by dataset, check and status.",
			},
			[]string{"dataset", "check", "status"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metrics.CheckDurationSeconds,
				Help:    "Check duration in seconds, partitioned by check and status.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"check", "status"},
		),
		diagCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.DiagnosticsTotal,
				Help: "Column-type diagnostics reported, per dataset.",
			},
			[]string{"dataset"},
		),
		loadCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.LoadTotal,
				Help: "Dataset loads, partitioned by source kind and status.",
			},
			[]string{"source", "status"},
		),
		loadDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       metrics.LoadDurationSeconds,
				Help:       "Dataset load duration in seconds, partitioned by source kind.",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"source"},
		),
	}

	for name, c := range map[string]prometheus.Collector{
		"check counter":      b.checkCounter,
		"check histogram":    b.checkDuration,
		"diagnostic counter": b.diagCounter,
		"load counter":       b.loadCounter,
		"load summary":       b.loadDuration,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

// IncCounter implements metrics.Backend. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.CheckTotal:
		if b.checkCounter == nil {
			return
		}
		b.checkCounter.WithLabelValues(labels["dataset"], labels["check"], labels["status"]).Add(delta)
	case metrics.DiagnosticsTotal:
		if b.diagCounter == nil {
			return
		}
		b.diagCounter.WithLabelValues(labels["dataset"]).Add(delta)
	case metrics.LoadTotal:
		if b.loadCounter == nil {
			return
		}
		b.loadCounter.WithLabelValues(labels["source"], labels["status"]).Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend. Unknown names are ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	switch name {
	case metrics.CheckDurationSeconds:
		if b.checkDuration == nil {
			return
		}
		b.checkDuration.WithLabelValues(labels["check"], labels["status"]).Observe(value)
	case metrics.LoadDurationSeconds:
		if b.loadDuration == nil {
			return
		}
		b.loadDuration.WithLabelValues(labels["source"]).Observe(value)
	}
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
