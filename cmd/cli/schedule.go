package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnavsurve/dropreport/pkg/log"
	"github.com/arnavsurve/dropreport/pkg/log/sinks"
	"github.com/arnavsurve/dropreport/pkg/types"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ScheduleCmd repeats the run command on a cron schedule until interrupted.
// A tick that fires while the previous run is still going is skipped.
type ScheduleCmd struct {
	RunCmd `embed:""`

	Cron string `help:"Cron expression (minute hour day-of-month month day-of-week)." default:"0 7 * * *" env:"SCHEDULE"`
}

func (s *ScheduleCmd) Run(ctx context.Context) error {
	schedule, err := cronParser.Parse(s.Cron)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.Cron, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logRouter := log.NewRouter(sinks.NewConsoleSink())
	defer logRouter.Close()
	logger := log.NewLogger(logRouter, zerolog.InfoLevel)

	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
		cron.WithLogger(cronLogger{logger}),
	)
	if _, err := c.AddFunc(s.Cron, func() {
		if err := s.RunCmd.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("Scheduled run failed")
		}
	}); err != nil {
		return fmt.Errorf("scheduling %q: %w", s.Cron, err)
	}

	c.Start()
	logger.Info().Msgf("Scheduled %q, next run at %s", s.Cron, schedule.Next(time.Now()).Format(time.RFC3339))

	<-ctx.Done()
	logger.Info().Msg("Stopping scheduler, waiting for a running report to finish...")
	<-c.Stop().Done()
	return nil
}

// cronLogger routes cron's own messages through the run logger.
type cronLogger struct {
	logger types.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Interface("details", keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Interface("details", keysAndValues).Msg(msg)
}
