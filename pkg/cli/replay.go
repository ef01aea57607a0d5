package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/replaykit/journey-runner/pkg/config"
	"github.com/replaykit/journey-runner/pkg/core"
	"github.com/replaykit/journey-runner/pkg/events"
	"github.com/replaykit/journey-runner/pkg/playback"
)

var replayCommand = &cli.Command{
	Name:      "replay",
	Usage:     "Replay a recorded journey against a live page",
	ArgsUsage: "<journey-file-or-id>",
	Description: `Replay a journey from a YAML file or from the journey database.

The starting context is validated before any step runs; a URL mismatch
with a known exact URL triggers one corrective navigation.

Examples:
  journey-runner replay checkout.yaml
  journey-runner replay checkout-flow --speed 2
  journey-runner replay login.yaml --var USER=test --var PASS=secret
  journey-runner replay flaky.yaml --continue-on-error --retries 3`,
	Flags: []cli.Flag{
		&cli.Float64Flag{
			Name:  "speed",
			Usage: "Playback speed multiplier",
			Value: 1.0,
		},
		&cli.IntFlag{
			Name:  "retries",
			Usage: "Retries per step",
			Value: 2,
		},
		&cli.BoolFlag{
			Name:  "continue-on-error",
			Usage: "Record step failures as warnings and keep going",
		},
		&cli.BoolFlag{
			Name:  "no-validate",
			Usage: "Skip starting-context validation",
		},
		&cli.BoolFlag{
			Name:  "no-screenshot",
			Usage: "Disable screenshot capture on failure",
		},
		&cli.StringSliceFlag{
			Name:    "var",
			Aliases: []string{"e"},
			Usage:   "Playback variables (KEY=VALUE)",
		},
		&cli.StringFlag{
			Name:  "artifacts",
			Usage: "Directory for failure screenshots",
		},
	},
	Action: runReplay,
}

func runReplay(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one journey file or ID")
	}
	if err := setupLogging(c); err != nil {
		return err
	}

	wsCfg, err := loadWorkspaceConfig(c)
	if err != nil {
		return err
	}
	store, err := openStore(c, wsCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	j, err := resolveJourney(c.Args().First(), store)
	if err != nil {
		return err
	}

	page, cleanup, err := newPage(c)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := replayConfig(c, wsCfg)
	sink := events.NewBroadcaster(progressSink(), eventLogSink())
	engine := playback.New(store, sink, cfg)

	// SIGINT stops the playback at the next step boundary; a second one
	// kills the process.
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Printf("\n  %s⏹ stopping...%s\n", color(colorYellow), color(colorReset))
			if err := engine.Stop(); err != nil {
				cancel()
			}
			<-sigCh
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Printf("\n  %s▸%s %s%s%s (%d steps)\n",
		color(colorCyan), color(colorReset),
		color(colorBold), j.Name, color(colorReset), len(j.Steps))

	result, err := engine.Play(ctx, j, page, nil)
	if err != nil {
		return err
	}

	printResult(result)
	if !result.Success {
		return cli.Exit("", 1)
	}
	return nil
}

// replayConfig merges workspace defaults with command-line flags.
func replayConfig(c *cli.Context, wsCfg *config.Config) playback.Config {
	cfg := playback.DefaultConfig()
	if wsCfg != nil {
		cfg = wsCfg.Playback
	}
	if c.IsSet("speed") {
		cfg.Speed = c.Float64("speed")
	}
	if c.IsSet("retries") {
		cfg.MaxRetries = c.Int("retries")
	}
	if c.Bool("continue-on-error") {
		cfg.ContinueOnNonCriticalErrors = true
	}
	if c.Bool("no-validate") {
		cfg.ValidateContext = false
	}
	if c.Bool("no-screenshot") {
		cfg.ScreenshotOnFailure = false
	}
	if dir := c.String("artifacts"); dir != "" {
		cfg.ArtifactDir = dir
	} else if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = config.GetArtifactsDir()
	}
	if cfg.Vars == nil {
		cfg.Vars = map[string]string{}
	}
	for k, v := range parseVars(c.StringSlice("var")) {
		cfg.Vars[k] = v
	}
	return cfg
}

// progressSink prints live step progress to stdout.
func progressSink() events.Sink {
	return events.SinkFunc(func(e events.Event) {
		switch e.Kind {
		case events.StepCompleted:
			if healed, ok := e.Data["healedSelector"]; ok {
				fmt.Printf("    %s⚠%s %s %s(healed: %v)%s\n",
					color(colorYellow), color(colorReset), e.StepID,
					color(colorGray), healed, color(colorReset))
				return
			}
			fmt.Printf("    %s✓%s %s\n", color(colorGreen), color(colorReset), e.StepID)
		case events.StepFailed:
			fmt.Printf("    %s✗%s %s\n", color(colorRed), color(colorReset), e.StepID)
			if msg, ok := e.Data["error"]; ok {
				fmt.Printf("      %s╰─%s %v\n", color(colorGray), color(colorReset), msg)
			}
		case events.PlaybackPaused:
			fmt.Printf("    %s⏸ paused%s\n", color(colorYellow), color(colorReset))
		case events.PlaybackResumed:
			fmt.Printf("    %s▶ resumed%s\n", color(colorCyan), color(colorReset))
		}
	})
}

func printResult(result *core.ExecutionResult) {
	fmt.Println()
	if result.Success {
		fmt.Printf("  %s✓ completed%s %d/%d steps in %s\n",
			color(colorGreen), color(colorReset),
			result.CompletedSteps, result.TotalSteps, formatDuration(result.DurationMs))
	} else {
		fmt.Printf("  %s✗ failed%s %d/%d steps in %s\n",
			color(colorRed), color(colorReset),
			result.CompletedSteps, result.TotalSteps, formatDuration(result.DurationMs))
		for _, stepErr := range result.Errors {
			if stepErr.StepID != "" {
				fmt.Printf("    %s%s:%s %s\n", color(colorDim), stepErr.StepID, color(colorReset), stepErr.Error)
			} else {
				fmt.Printf("    %s\n", stepErr.Error)
			}
		}
	}
	for _, w := range result.Warnings {
		fmt.Printf("  %s⚠ %s%s\n", color(colorYellow), w, color(colorReset))
	}
	for _, shot := range result.Screenshots {
		fmt.Printf("  %s📷 %s%s\n", color(colorGray), shot, color(colorReset))
	}
}

func parseVars(pairs []string) map[string]string {
	result := make(map[string]string)
	for _, p := range pairs {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}
	return result
}
