// Package cli provides the command-line interface for journey-runner.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "db",
		Usage:   "Path to the journey database (SQLite)",
		EnvVars: []string{"JOURNEY_DB"},
	},
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to workspace config.yaml",
	},
	&cli.BoolFlag{
		Name:    "headless",
		Usage:   "Run the browser in headless mode",
		Value:   true,
		EnvVars: []string{"JOURNEY_HEADLESS"},
	},
	&cli.BoolFlag{
		Name:    "mock",
		Usage:   "Use the in-memory mock page instead of a browser",
		Hidden:  true,
		EnvVars: []string{"JOURNEY_MOCK"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"JOURNEY_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write logs to this file",
		EnvVars: []string{"JOURNEY_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "journey-runner",
		Usage:   "Capture-and-replay engine for recorded browser journeys",
		Version: Version,
		Description: `Journey Runner replays recorded user journeys against live pages,
with starting-context validation, retries, and selector self-healing.

Examples:
  journey-runner replay checkout.yaml
  journey-runner replay checkout-flow --speed 2
  journey-runner validate checkout.yaml --url https://shop.example.com/cart
  journey-runner recommend --url https://shop.example.com/cart
  journey-runner serve --listen :8080`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			if c.Bool("no-ansi") {
				colorsEnabled = false
			}
			return nil
		},
		Commands: []*cli.Command{
			replayCommand,
			validateCommand,
			listCommand,
			importCommand,
			scoreCommand,
			similarCommand,
			recommendCommand,
			serveCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
