package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/tripwire/config"
)

// validateCmd validates a config file without starting anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a tripwire configuration file without starting the monitor.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  tripwire validate -c tripwire.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	dashboard := "disabled"
	if cfg.DashboardEnabled() {
		dashboard = fmt.Sprintf("port %d", cfg.Port)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Endpoint:        %s\n", cfg.EndpointURL)
	fmt.Fprintf(out, "  Poll interval:   %s\n", cfg.PollInterval.Duration())
	fmt.Fprintf(out, "  Request timeout: %s\n", cfg.RequestTimeout.Duration())
	fmt.Fprintf(out, "  Shape:           %s\n", cfg.Shape)
	fmt.Fprintf(out, "  Dashboard:       %s\n", dashboard)
	if cfg.Bridge.SerialPort != "" {
		fmt.Fprintf(out, "  Bridge:          %s @ %d baud, serving %s on %s\n",
			cfg.Bridge.SerialPort, cfg.Bridge.Baud, cfg.Bridge.Shape, cfg.Bridge.Listen)
	}

	return nil
}
