package cli

import (
	"fmt"

	"github.com/arnavsurve/dropreport/pkg/core"
	"github.com/arnavsurve/dropreport/pkg/log"
	"github.com/arnavsurve/dropreport/pkg/log/sinks"
	"github.com/rs/zerolog"
)

type LintCmd struct {
	FlowOptions `embed:""`
}

func (l *LintCmd) Run() error {
	logRouter := log.NewRouter(sinks.NewConsoleSink())
	defer logRouter.Close()
	cmdLogger := log.NewLogger(logRouter, zerolog.InfoLevel)

	cmdLogger.Info().Msgf("Validating %s", l.Flow)

	flow, err := core.LoadFlowFromFile(l.Flow)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Failed to load flow file %s", l.Flow)
		return fmt.Errorf("loading flow file %q: %w", l.Flow, err)
	}
	cmdLogger.Info().Msgf("Successfully loaded flow: %s", flow.Name)

	if l.BaseURL == "" {
		cmdLogger.Warn().Msg("BASE_URL is not set, skipping URL resolution")
		cmdLogger.Info().Msg("Successfully validated flow configuration ✅")
		return nil
	}

	steps, err := core.ResolveFlow(flow.Steps, l.BaseURL)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Could not resolve step URLs")
		return err
	}
	for _, step := range steps {
		cmdLogger.Step(step.Name).Info().Msgf("%s %s", step.Method, step.URL)
	}

	cmdLogger.Info().Msg("Successfully validated flow configuration ✅")
	return nil
}
