package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/replaykit/journey-runner/pkg/config"
	"github.com/replaykit/journey-runner/pkg/core"
	"github.com/replaykit/journey-runner/pkg/driver/mock"
	pwdriver "github.com/replaykit/journey-runner/pkg/driver/playwright"
	"github.com/replaykit/journey-runner/pkg/events"
	"github.com/replaykit/journey-runner/pkg/journey"
	"github.com/replaykit/journey-runner/pkg/logger"
	"github.com/replaykit/journey-runner/pkg/storage"
)

// setupLogging initializes the file logger when --log-file is set.
func setupLogging(c *cli.Context) error {
	logger.SetVerbose(c.Bool("verbose"))
	path := c.String("log-file")
	if path == "" {
		return nil
	}
	return logger.Init(path)
}

// eventLogSink mirrors playback events into the file logger so commands can
// fan events out to the console or history and the log at the same time.
func eventLogSink() events.Sink {
	return events.SinkFunc(func(e events.Event) {
		logger.Debug("event %s journey=%s step=%s", e.Kind, e.JourneyID, e.StepID)
	})
}

// loadWorkspaceConfig reads the workspace config, preferring --config, then
// the current directory.
func loadWorkspaceConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.LoadFromDir(cwd)
}

// openStore opens the journey database. Flag wins over workspace config,
// which wins over the home default.
func openStore(c *cli.Context, cfg *config.Config) (storage.Store, error) {
	path := c.String("db")
	if path == "" && cfg != nil {
		path = cfg.Database
	}
	if path == "" {
		path = config.GetDefaultDatabasePath()
	}
	return storage.NewSQLiteStore(path)
}

// resolveJourney loads a journey from a YAML file path or, failing that, by
// ID from the store.
func resolveJourney(arg string, store storage.Store) (*journey.Journey, error) {
	if strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml") {
		return journey.ParseFile(arg)
	}
	if _, err := os.Stat(arg); err == nil {
		return journey.ParseFile(arg)
	}

	j, err := store.LoadJourney(arg)
	if err != nil {
		return nil, fmt.Errorf("journey %q: not a readable file and not in the store: %w", arg, err)
	}
	return j, nil
}

// newPage opens a page against a real browser, or the mock page when --mock
// is set. The returned func releases the page and its driver.
func newPage(c *cli.Context) (core.Page, func(), error) {
	if c.Bool("mock") {
		return mock.New(), func() {}, nil
	}

	driver, err := pwdriver.Launch(pwdriver.Options{
		Headless: c.Bool("headless"),
	})
	if err != nil {
		return nil, nil, err
	}
	page, err := driver.NewPage()
	if err != nil {
		driver.Close()
		return nil, nil, err
	}
	cleanup := func() {
		page.Close()
		driver.Close()
	}
	return page, cleanup, nil
}
