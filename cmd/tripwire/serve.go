package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/tripwire"
	"github.com/jpalmerr/tripwire/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the monitor and its dashboard.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the rig and serve the dashboard",
	Long: `Start polling the rig's status endpoint and serve the live dashboard.

The server will:
  - Load configuration from the YAML file, if one is given
  - Poll the status endpoint on the configured interval
  - Serve the dashboard UI on the configured port

Without a config file the defaults apply: http://localhost:8000/status
polled every 500ms, dashboard on port 8080.

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  tripwire serve
  tripwire serve -c tripwire.yaml
  tripwire serve --endpoint http://rig.local:8000/status`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file")
	serveCmd.Flags().String("endpoint", "", "status endpoint URL (overrides config)")
	serveCmd.Flags().BoolP("verbose", "v", false, "log every poll")
}

func runServe(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger.Info("starting monitor",
		"endpoint", cfg.EndpointURL,
		"poll_interval", cfg.PollInterval.Duration().String(),
		"port", cfg.Port,
		"dashboard", cfg.DashboardEnabled(),
	)

	opts, err := config.BuildOptions(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}

	m, err := tripwire.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- m.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
