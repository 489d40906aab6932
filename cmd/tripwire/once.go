package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/tripwire"
	"github.com/jpalmerr/tripwire/config"
)

// onceCmd polls the endpoint a single time and prints the result.
var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Poll the rig once and print its state",
	Long: `Perform a single request against the status endpoint and print the
decoded state with the same labels the dashboard uses.

Exit codes:
  0 - The endpoint returned a valid status document
  1 - The request failed or the document was malformed

Example:
  tripwire once
  tripwire once --endpoint http://rig.local:8000/status --json`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(onceCmd)

	onceCmd.Flags().StringP("config", "c", "", "path to config file")
	onceCmd.Flags().String("endpoint", "", "status endpoint URL (overrides config)")
	onceCmd.Flags().Bool("json", false, "print the dashboard view as JSON")
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	return pollOnce(cmd.Context(), cfg, asJSON, cmd.OutOrStdout())
}

// pollOnce performs one request using cfg and writes the result to out.
func pollOnce(ctx context.Context, cfg *config.Config, asJSON bool, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// polling logs stay quiet; failures are reported through the error
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	opts, err := config.BuildOptions(cfg, quiet)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}
	m, err := tripwire.New(append(opts, tripwire.WithoutDashboard())...)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout.Duration()+time.Second)
	defer cancel()

	snap, err := m.PollOnce(ctx)
	if err != nil {
		return fmt.Errorf("poll %s: %w", cfg.EndpointURL, err)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap.View())
	}
	_, err = io.WriteString(out, snap.Text())
	return err
}
