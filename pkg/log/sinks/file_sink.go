package sinks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arnavsurve/dropreport/pkg/log"
)

// FileSink appends one JSON object per event to the per-run log file. Every
// record carries the run ID so logs from several runs can be merged.
type FileSink struct {
	file  *os.File
	enc   *json.Encoder
	runID string
}

func NewFileSink(path, runID string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory for %q: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening JSON log %q: %w", path, err)
	}
	enc := json.NewEncoder(f)
	// URLs with query strings stay readable.
	enc.SetEscapeHTML(false)
	return &FileSink{file: f, enc: enc, runID: runID}, nil
}

func (s *FileSink) Write(event *log.LogEvent) error {
	record := make(map[string]any, len(event.Fields)+4)
	for k, v := range event.Fields {
		record[k] = v
	}
	record["level"] = levelToString(event.Level)
	record["time"] = event.Timestamp.UTC().Format(time.RFC3339Nano)
	record["message"] = event.Message
	if s.runID != "" {
		record["run_id"] = s.runID
	}

	if err := s.enc.Encode(record); err != nil {
		return fmt.Errorf("writing JSON log record: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	if s.file == nil {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("flushing JSON log: %w", err)
	}
	return s.file.Close()
}
