package sinks_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arnavsurve/dropreport/pkg/log"
	"github.com/arnavsurve/dropreport/pkg/log/sinks"
	"github.com/arnavsurve/dropreport/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatText(t *testing.T) {
	ts := time.Date(2026, 1, 2, 7, 0, 1, 120_000_000, time.UTC)
	evt := &log.LogEvent{
		Level:     types.WarnLevel,
		Message:   "Token not found in response",
		Timestamp: ts,
		Fields: map[string]any{
			"step_name":   "login",
			"status_code": 200,
			"attempt":     1,
		},
	}

	assert.Equal(t,
		"2026-01-02 07:00:01,120 [WARNING] [login] Token not found in response attempt=1 status_code=200",
		sinks.FormatText(evt))
}

func TestTextSink_Write(t *testing.T) {
	out := &bytes.Buffer{}
	sink := sinks.NewTextSink(out)

	require.NoError(t, sink.Write(&log.LogEvent{Level: types.ErrorLevel, Message: "boom", Timestamp: time.Unix(0, 0).UTC()}))
	assert.Equal(t, "1970-01-01 00:00:00,000 [ERROR] boom\n", out.String())
	require.NoError(t, sink.Close())
}

func TestTextFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	sink, err := sinks.NewTextFileSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Write(&log.LogEvent{Level: types.InfoLevel, Message: "Run started", Timestamp: time.Now()}))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] Run started")
}

func TestBufferSink_CapturesRoutedEvents(t *testing.T) {
	buf := sinks.NewBufferSink()
	logger := log.NewLogger(log.NewRouter(buf), zerolog.InfoLevel)

	logger.Warn().Str("step_name", "fetch").Msg("Token not found in response")
	logger.Error().Err(assert.AnError).Msg("Step failed")

	text := buf.String()
	assert.Contains(t, text, "[WARNING] [fetch] Token not found in response")
	assert.Contains(t, text, "[ERROR] Step failed error="+assert.AnError.Error())
	// No timestamp prefix, so millisecond digits never reach the classifier.
	assert.True(t, strings.HasPrefix(text, "[WARNING]"), text)
}

func TestBufferSink_DropsNumericFields(t *testing.T) {
	buf := sinks.NewBufferSink()
	logger := log.NewLogger(log.NewRouter(buf), zerolog.InfoLevel)

	logger.Warn().
		Int("attempt", 1).
		Dur("elapsed", 1401*time.Millisecond).
		Str("url", "https://api.example.com/v1/users").
		Msg("retrying")

	text := buf.String()
	assert.NotContains(t, text, "1401")
	assert.NotContains(t, text, "attempt=")
	assert.Contains(t, text, "url=https://api.example.com/v1/users")
}

func TestFileSink_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.json")
	sink, err := sinks.NewFileSink(path, "run-42")
	require.NoError(t, err)

	ts := time.Date(2026, 1, 2, 7, 0, 1, 120_000_000, time.FixedZone("CET", 3600))
	require.NoError(t, sink.Write(&log.LogEvent{
		Level:     types.WarnLevel,
		Message:   "hello",
		Timestamp: ts,
		Fields:    map[string]any{"url": "https://x/v1?a=1&b=2", "run_id": "ignored"},
	}))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"level": "warn",
		"time": "2026-01-02T06:00:01.12Z",
		"message": "hello",
		"url": "https://x/v1?a=1&b=2",
		"run_id": "run-42"
	}`, string(data))
	assert.Contains(t, string(data), "a=1&b=2")
}
