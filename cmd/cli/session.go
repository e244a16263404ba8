package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arnavsurve/dropreport/pkg/log"
	"github.com/arnavsurve/dropreport/pkg/log/sinks"
	"github.com/arnavsurve/dropreport/pkg/security"
	"github.com/arnavsurve/dropreport/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const logsDir = ".dropreport/logs"

// session is the logging setup of one run: console output, a JSON log per run
// ID, the human readable run.log and an in-memory copy for diagnosis.
type session struct {
	ID         string
	Logger     types.Logger
	Router     *log.Router
	Redactor   *security.Redactor
	Buffer     *sinks.BufferSink
	JSONLog    string
	RunLogPath string
}

func newSession(runLogPath string, verbose bool, secrets ...string) (*session, error) {
	s := &session{
		ID:         uuid.New().String(),
		Redactor:   security.NewRedactor(secrets...),
		Buffer:     sinks.NewBufferSink(),
		RunLogPath: runLogPath,
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating logs directory %q: %w", logsDir, err)
	}
	s.JSONLog = filepath.Join(logsDir, fmt.Sprintf("%s.json", s.ID))
	fileSink, err := sinks.NewFileSink(s.JSONLog, s.ID)
	if err != nil {
		return nil, fmt.Errorf("creating file log sink: %w", err)
	}
	textSink, err := sinks.NewTextFileSink(runLogPath)
	if err != nil {
		_ = fileSink.Close()
		return nil, fmt.Errorf("creating run log sink: %w", err)
	}

	s.Router = log.NewRouter(sinks.NewConsoleSink(), fileSink, textSink, s.Buffer)
	s.Router.Redactor = s.Redactor

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	s.Logger = log.NewLogger(s.Router, level)

	s.Logger.Info().Msgf("Starting run with ID: %s", s.ID)
	s.Logger.Info().Msgf("Logs will be saved to %q and %q", s.JSONLog, runLogPath)
	return s, nil
}

func (s *session) Close() {
	s.Logger.Info().Msg("Shutting down logger...")
	if err := s.Router.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error during log shutdown: %v\n", err)
	}
}
