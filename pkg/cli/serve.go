package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/replaykit/journey-runner/pkg/events"
	"github.com/replaykit/journey-runner/pkg/logger"
	"github.com/replaykit/journey-runner/pkg/monitor"
	"github.com/replaykit/journey-runner/pkg/playback"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Serve the monitoring API over the journey database",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Usage:   "Listen address",
			Value:   ":8080",
			EnvVars: []string{"JOURNEY_LISTEN"},
		},
	},
	Action: runServe,
}

func runServe(c *cli.Context) error {
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

	addr := c.String("listen")
	if !c.IsSet("listen") && wsCfg.ListenAddr != "" {
		addr = wsCfg.ListenAddr
	}

	// Events from an embedded engine land in the queryable history and the
	// log file.
	history := events.NewHistory(512)
	sink := events.NewBroadcaster(history, eventLogSink())
	engine := playback.New(store, sink, wsCfg.Playback)
	handler := monitor.NewHandler(store, history, engine)

	server := &http.Server{
		Addr:         addr,
		Handler:      monitor.NewRouter(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	fmt.Printf("  %s▸%s monitoring API on %s\n", color(colorCyan), color(colorReset), addr)
	logger.Info("monitoring API listening on %s", addr)
	return server.ListenAndServe()
}
