// Standalone rig status server for testing the CLI without hardware.
//
// Usage:
//
//	go run ./example/cmd/mockserver [-addr :8000] [-shape keys|last-key]
//
// Then in another terminal:
//
//	go run ./cmd/tripwire serve -c example/config.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/tripwire"
	"github.com/jpalmerr/tripwire/internal/bridge"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	shapeFlag := flag.String("shape", "keys", "served layout: keys or last-key")
	flag.Parse()

	shape, err := tripwire.ParseShape(*shapeFlag)
	if err != nil {
		slog.Error("invalid shape", "error", err)
		os.Exit(1)
	}

	state := bridge.NewState()
	handler, err := bridge.Handler(state, shape, slog.Default())
	if err != nil {
		slog.Error("invalid shape", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Mock rig starting on %s (shape %s)\n", *addr, shape)
	fmt.Println("The machine arms, keys are pressed and the beam breaks at random")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	go func() {
		script := []string{"MACHINE ENABLED!", "Beam Broken!", "Beam Restored!", "MACHINE DISABLED!"}
		for {
			time.Sleep(time.Duration(1000+rand.Intn(2000)) * time.Millisecond)

			line := fmt.Sprintf("Key Pressed: %d", rand.Intn(10))
			if rand.Intn(4) == 0 {
				line = script[rand.Intn(len(script))]
			}
			if ev := state.Apply(line); ev != bridge.EventNone {
				slog.Info("rig event", "event", ev.String(), "line", line)
			}
		}
	}()

	if err := http.ListenAndServe(*addr, handler); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
