package sinks

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/arnavsurve/dropreport/pkg/log"
	"github.com/arnavsurve/dropreport/pkg/types"
)

const textTimeFormat = "2006-01-02 15:04:05,000"

// FormatText renders an event as a run.log line:
//
//	2026-01-02 07:00:01,120 [WARNING] [login] Token not found in response status_code=200
func FormatText(event *log.LogEvent) string {
	return event.Timestamp.Format(textTimeFormat) + " " + formatBody(event, true)
}

// formatBody is FormatText without the timestamp. Numeric fields are left
// out unless withNumbers is set.
func formatBody(event *log.LogEvent, withNumbers bool) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(textLevel(event.Level))
	b.WriteString("] ")
	if step := getStringField(event.Fields, "step_name"); step != "" {
		b.WriteString("[" + step + "] ")
	}
	b.WriteString(event.Message)

	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		if k == "step_name" {
			continue
		}
		if _, isNumber := event.Fields[k].(float64); isNumber && !withNumbers {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, event.Fields[k])
	}
	return b.String()
}

func textLevel(l types.Level) string {
	switch l {
	case types.DebugLevel:
		return "DEBUG"
	case types.WarnLevel:
		return "WARNING"
	case types.ErrorLevel:
		return "ERROR"
	case types.FatalLevel:
		return "CRITICAL"
	default:
		return "INFO"
	}
}

// TextSink writes FormatText lines to a writer, usually run.log.
type TextSink struct {
	w      io.Writer
	closer io.Closer
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// NewTextFileSink truncates path and writes run.log style lines to it.
func NewTextFileSink(path string) (*TextSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening text log %q: %w", path, err)
	}
	return &TextSink{w: f, closer: f}, nil
}

func (s *TextSink) Write(event *log.LogEvent) error {
	_, err := io.WriteString(s.w, FormatText(event)+"\n")
	return err
}

func (s *TextSink) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// BufferSink keeps the text of every event in memory so a failed run can be
// diagnosed without rereading run.log. Timestamps and numeric fields such as
// durations are left out so their digits cannot be mistaken for status codes.
type BufferSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func NewBufferSink() *BufferSink {
	return &BufferSink{}
}

func (s *BufferSink) Write(event *log.LogEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.WriteString(formatBody(event, false))
	s.buf.WriteByte('\n')
	return nil
}

// String returns everything captured so far.
func (s *BufferSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func (s *BufferSink) Close() error {
	return nil
}
