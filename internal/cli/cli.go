package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/moveplan/moveplan/internal/app"
	"github.com/moveplan/moveplan/internal/config"
)

// Register adds every moveplan command to commander. configPath is read when a
// command runs, after the top-level flags are parsed.
func Register(commander *subcommands.Commander, configPath *string) {
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&serveCmd{configPath: configPath}, "")
	commander.Register(&exportCmd{configPath: configPath}, "data")
	commander.Register(&importCmd{configPath: configPath}, "data")
	commander.Register(&cleanupCmd{configPath: configPath}, "data")
	commander.Register(&keysCmd{configPath: configPath}, "data")
	commander.Register(&calcCmd{}, "tools")
}

// withApplication loads the configuration, opens the storage backend and
// hands the wired dependencies to fn.
func withApplication(configPath string, fn func(deps *app.Dependencies) error) subcommands.ExitStatus {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	application, err := app.NewApplication(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer application.Close()

	if err := fn(application.Dependencies()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type serveCmd struct {
	configPath *string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API (default command)" }
func (*serveCmd) Usage() string {
	return `moveplan serve

  Starts the HTTP API on the configured port and runs until interrupted.
`
}
func (*serveCmd) SetFlags(*flag.FlagSet) {}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*c.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	application, err := app.NewApplication(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := application.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
