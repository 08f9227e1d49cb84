package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []call
	histograms []call
	flushCount int
}

type call struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, call{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, call{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

// install swaps the global backend for the duration of the test.
func install(t *testing.T) *fakeBackend {
	t.Helper()
	orig := backend
	t.Cleanup(func() { backend = orig })
	fb := &fakeBackend{}
	backend = fb
	return fb
}

func TestRecordCheck(t *testing.T) {
	fb := install(t)

	RecordCheck("nightly", "people", "col_types", StatusPass, 2*time.Second)
	RecordCheck("nightly", "people", "outliers", StatusFail, 1500*time.Millisecond)

	require.Len(t, fb.counters, 2)
	require.Len(t, fb.histograms, 2)

	c0 := fb.counters[0]
	assert.Equal(t, CheckTotal, c0.name)
	assert.Equal(t, 1.0, c0.value)
	assert.Equal(t, Labels{"suite": "nightly", "dataset": "people", "check": "col_types", "status": "pass"}, c0.labels)

	assert.Equal(t, CheckDurationSeconds, fb.histograms[0].name)
	assert.InDelta(t, 2.0, fb.histograms[0].value, 0.001)
	assert.Equal(t, "fail", fb.counters[1].labels["status"])
	assert.InDelta(t, 1.5, fb.histograms[1].value, 0.001)
}

func TestRecordDiagnostics(t *testing.T) {
	fb := install(t)

	RecordDiagnostics("s", "d", 3)
	RecordDiagnostics("s", "d", 0) // ignored

	require.Len(t, fb.counters, 1)
	assert.Equal(t, DiagnosticsTotal, fb.counters[0].name)
	assert.Equal(t, 3.0, fb.counters[0].value)
}

func TestRecordLoad(t *testing.T) {
	fb := install(t)

	RecordLoad("s", "sqlite", nil, time.Second)
	RecordLoad("s", "http", errors.New("boom"), time.Second)

	require.Len(t, fb.counters, 2)
	assert.Equal(t, "success", fb.counters[0].labels["status"])
	assert.Equal(t, "failure", fb.counters[1].labels["status"])
	assert.Equal(t, LoadDurationSeconds, fb.histograms[1].name)
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	SetBackend(nil) // keeps fb
	require.NoError(t, Flush())
	assert.Equal(t, 1, fb.flushCount)
}

func TestNopBackendIsSafe(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	backend = nopBackend{}
	RecordCheck("s", "d", "c", StatusError, time.Millisecond)
	RecordDiagnostics("s", "d", 1)
	assert.NoError(t, Flush())
}
