package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewWriterJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := NewWriter(&buf, "warn", "json")
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", zap.String("dataset", "people"))
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "people", entry["dataset"])
}

func TestNewWriterConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := NewWriter(&buf, "debug", "")
	require.NoError(t, err)
	log.Debug("hello")
	assert.Contains(t, buf.String(), " | DEBUG | hello")
}

func TestNewWriterRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	_, err := NewWriter(&bytes.Buffer{}, "info", "xml")
	assert.ErrorContains(t, err, "unknown format")
}
