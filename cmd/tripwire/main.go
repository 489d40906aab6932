// Package main is the entry point for the tripwire CLI.
//
// Tripwire can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	tripwire serve -c tripwire.yaml     # Poll the rig and serve the dashboard
//	tripwire once --endpoint URL        # Poll once and print the result
//	tripwire bridge --serial /dev/ttyACM0 # Serve the rig's serial output over HTTP
//	tripwire validate -c tripwire.yaml  # Validate configuration
//	tripwire version                    # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/tripwire/config"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "tripwire",
	Short: "Live status monitor for a laser tripwire alarm rig",
	Long: `Tripwire polls the rig controller's status endpoint and shows the
alarm state, the beam state and the recent keypad entries on a live
dashboard.

Quick start:
  1. Connect the rig and run: tripwire bridge --serial /dev/ttyACM0
  2. In another shell run:    tripwire serve
  3. Open http://localhost:8080 in your browser

Example config:
  endpoint_url: http://localhost:8000/status
  poll_interval: 500ms
  port: 8080`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already prints the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this tripwire binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tripwire %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// newLogger creates a JSON logger for CLI use.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// loadConfig loads the file named by the --config flag, or the defaults when
// the flag is empty, then applies the --endpoint override if set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if configFile == "" {
		cfg, err = config.Parse(nil)
	} else {
		cfg, err = config.Load(configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Lookup("endpoint") != nil {
		if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
			cfg.EndpointURL = endpoint
		}
	}
	return cfg, nil
}
