package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/tripwire"
)

func main() {
	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start a simulated rig (see mock_server.go)
	go StartMockRig(ctx, ":9999", tripwire.ShapeKeys)
	time.Sleep(100 * time.Millisecond)

	m, err := tripwire.New(
		tripwire.WithEndpointURL("http://localhost:9999/status"),
		tripwire.WithPollingInterval(500*time.Millisecond),
		tripwire.WithPort(8080),
		tripwire.WithTitle("Tripwire Demo"),
		tripwire.WithSnapshotCallback(func(s tripwire.Snapshot) {
			if s.BeamBroken && s.MachineEnabled {
				slog.Warn("ALARM: beam broken while armed", "seq", s.Seq, "last_key", s.LastKey)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create monitor", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Tripwire Demo                                       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Simulated rig: http://localhost:9999/status         ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	if err := m.Start(ctx); err != nil {
		slog.Error("tripwire error", "error", err)
		os.Exit(1)
	}
}
