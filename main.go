package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/arnavsurve/dropreport/cmd/cli"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var CLI struct {
	Run      cli.RunCmd      `cmd:"" help:"Run the report flow once."`
	Lint     cli.LintCmd     `cmd:"" help:"Validate a flow file."`
	Schedule cli.ScheduleCmd `cmd:"" help:"Run the report flow on a cron schedule."`
}

func main() {
	// Flags read their defaults from the environment, so .env must be loaded
	// before parsing.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	// run.log carries milliseconds.
	zerolog.TimeFieldFormat = time.RFC3339Nano

	ctx := kong.Parse(&CLI,
		kong.Name("dropreport"),
		kong.Description("Run API report flows and mail the results."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
