// Package tripwire provides a live status monitor for a laser tripwire
// alarm rig.
//
// The rig's controller exposes a small JSON status document over HTTP. A
// [Monitor] polls that document on a fixed interval, keeps the most recent
// valid snapshot, and serves it on an embedded real-time dashboard.
//
// # Quick Start
//
//	m, _ := tripwire.New(tripwire.WithEndpointURL("http://rig.local:8000/status"))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	m.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// Monitor uses the functional options pattern for configuration:
//
//	m, err := tripwire.New(
//	    tripwire.WithEndpointURL("http://rig.local:8000/status"),
//	    tripwire.WithPollingInterval(250 * time.Millisecond),
//	    tripwire.WithShape(tripwire.ShapeKeys),
//	    tripwire.WithPort(9090),
//	)
//
// # Status Documents
//
// Two document layouts are understood:
//
//	{"machineEnabled": true, "beamBroken": false, "lastKeys": ["1", "2", "", ""]}
//	{"machineEnabled": true, "beamBroken": false, "lastKeyPressed": "7"}
//
// [ShapeAuto] accepts both. A response that fails to decode is discarded as
// a whole; the dashboard keeps showing the previous snapshot.
//
// # Architecture
//
// Monitor consists of several internal packages (under internal/):
//
//   - internal/poller: fixed-cadence HTTP polling with stale-result rejection
//   - internal/snapshot: the snapshot model and status document decoding
//   - internal/store: single-slot snapshot cell with pub/sub
//   - internal/render: labels and placeholders shown to the user
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - internal/bridge: serial-to-HTTP bridge for rigs without a network stack
//   - dashboard: embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package tripwire
