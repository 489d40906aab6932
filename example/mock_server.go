package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/jpalmerr/tripwire"
	"github.com/jpalmerr/tripwire/internal/bridge"
)

// keypad holds the keys the simulated rig can report.
const keypad = "0123456789*#"

// nextLine picks the controller line a rig in state st would plausibly print next.
func nextLine(st bridge.Status) string {
	switch {
	case !st.MachineEnabled:
		if rand.Intn(3) == 0 {
			return "MACHINE ENABLED!"
		}
	case st.BeamBroken:
		if rand.Intn(2) == 0 {
			return "Beam Restored!"
		}
	default:
		switch rand.Intn(8) {
		case 0:
			return "Beam Broken!"
		case 1:
			return "MACHINE DISABLED!"
		}
	}
	return fmt.Sprintf("Key Pressed: %c", keypad[rand.Intn(len(keypad))])
}

// simulateRig writes controller lines to w every 1-3 seconds until ctx is
// cancelled, mirroring state so the lines stay coherent.
func simulateRig(ctx context.Context, w io.WriteCloser, mirror *bridge.State) {
	defer func() { _ = w.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(1000+rand.Intn(2000)) * time.Millisecond):
		}

		line := nextLine(mirror.Status())
		mirror.Apply(line)
		slog.Info("rig event", "line", line)

		if _, err := io.WriteString(w, line+"\r\n"); err != nil {
			return
		}
	}
}

// StartMockRig serves a simulated rig's status at http://addr/status.
// The simulated controller output goes through the same line decoder the
// bridge command uses for a real serial port.
func StartMockRig(ctx context.Context, addr string, shape tripwire.Shape) {
	state := bridge.NewState()
	handler, err := bridge.Handler(state, shape, slog.Default())
	if err != nil {
		slog.Error("mock rig error", "error", err)
		return
	}

	pr, pw := io.Pipe()
	go simulateRig(ctx, pw, bridge.NewState())
	go func() {
		if err := bridge.Consume(ctx, pr, state, slog.Default()); err != nil {
			slog.Error("mock rig stream error", "error", err)
		}
	}()

	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("mock rig server error", "error", err)
	}
}
