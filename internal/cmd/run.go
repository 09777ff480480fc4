package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/adamancini/tether/internal/app"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Launch the sidecar and keep the host running",
		Long: `Launch the bundled sidecar, then check for an update in the background.

The command blocks until interrupted. A failed update is logged and the host
keeps running; a successful update relaunches tether in place.

Examples:
  tether run                          # Use the discovered config file
  tether run --config ./tether.yaml   # Use an explicit config
  tether run -v --log-file tether.log # Debug logging to a rotated file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(cmd.Context())
		},
	}
}

func runHost(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	logger := log.WithField("version", buildInfo.Version)
	if path != "" {
		logger = logger.WithField("config", path)
	}
	logger.Info("starting tether")

	session := app.NewSession(buildInfo.Version, cfg)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Close()

	if err := session.Wait(ctx); err != nil {
		return err
	}

	logger.Info("shutting down")
	return nil
}
