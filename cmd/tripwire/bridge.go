package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/jpalmerr/tripwire"
	"github.com/jpalmerr/tripwire/internal/bridge"
)

// serialReadTimeout bounds each serial read so cancellation is noticed
// without closing the port first.
const serialReadTimeout = 500 * time.Millisecond

// bridgeCmd serves the rig's serial output as a status endpoint.
var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Serve the rig's serial output as a status endpoint",
	Long: `Read the rig controller's line output from a serial port and serve the
reconstructed state at GET /status, in a layout "tripwire serve" can poll.

Recognized controller lines:
  MACHINE ENABLED!   MACHINE DISABLED!
  Beam Broken!       Beam Restored!
  Key Pressed: <key>

Example:
  tripwire bridge --serial /dev/ttyACM0
  tripwire bridge -c tripwire.yaml --listen :8000 --shape last-key
  tripwire bridge --list`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().StringP("config", "c", "", "path to config file")
	bridgeCmd.Flags().String("serial", "", "serial device (overrides bridge.serial_port)")
	bridgeCmd.Flags().Int("baud", 0, "baud rate (overrides bridge.baud)")
	bridgeCmd.Flags().String("listen", "", "listen address (overrides bridge.listen)")
	bridgeCmd.Flags().String("shape", "", "served layout: keys or last-key (overrides bridge.shape)")
	bridgeCmd.Flags().Bool("list", false, "list available serial ports and exit")
	bridgeCmd.Flags().BoolP("verbose", "v", false, "log ignored controller lines")
}

func runBridge(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		return listSerialPorts(cmd.OutOrStdout())
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	bc := cfg.Bridge
	if v, _ := cmd.Flags().GetString("serial"); v != "" {
		bc.SerialPort = v
	}
	if v, _ := cmd.Flags().GetInt("baud"); v > 0 {
		bc.Baud = v
	}
	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		bc.Listen = v
	}
	if v, _ := cmd.Flags().GetString("shape"); v != "" {
		bc.Shape = v
	}

	if bc.SerialPort == "" {
		return errors.New("no serial port: set bridge.serial_port or pass --serial (see --list)")
	}
	shape, err := tripwire.ParseShape(bc.Shape)
	if err != nil {
		return err
	}

	port, err := serial.Open(bc.SerialPort, &serial.Mode{
		BaudRate: bc.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("opening serial port %s: %w", bc.SerialPort, err)
	}
	defer func() { _ = port.Close() }()

	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		return fmt.Errorf("configuring serial port %s: %w", bc.SerialPort, err)
	}

	ln, err := net.Listen("tcp", bc.Listen)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", bc.Listen, err)
	}

	logger.Info("bridge started",
		"serial_port", bc.SerialPort,
		"baud", bc.Baud,
		"listen", ln.Addr().String(),
		"shape", shape.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serveBridge(ctx, port, ln, shape, logger)
}

// serveBridge consumes controller lines from r and serves the resulting state
// on ln until ctx is cancelled or r fails.
func serveBridge(ctx context.Context, r io.Reader, ln net.Listener, shape tripwire.Shape, logger *slog.Logger) error {
	state := bridge.NewState()

	handler, err := bridge.Handler(state, shape, logger)
	if err != nil {
		_ = ln.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- bridge.Consume(ctx, r, state, logger)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-consumeErr:
		if err != nil {
			runErr = err
		} else {
			logger.Info("controller stream ended")
		}
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server error: %w", err)
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("bridge shutdown error", "error", err)
	}

	logger.Info("bridge stopped")
	return runErr
}

func listSerialPorts(out io.Writer) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		return fmt.Errorf("listing serial ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Fprintln(out, "No serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Fprintln(out, p)
	}
	return nil
}
