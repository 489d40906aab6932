package tripwire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/tripwire/dashboard"
	"github.com/jpalmerr/tripwire/internal/poller"
	"github.com/jpalmerr/tripwire/internal/server"
	"github.com/jpalmerr/tripwire/internal/snapshot"
	"github.com/jpalmerr/tripwire/internal/store"
)

const (
	defaultEndpointURL     = "http://localhost:8000/status"
	defaultPollingInterval = 500 * time.Millisecond
	defaultRequestTimeout  = 2 * time.Second
	defaultPort            = 8080
)

// ErrAlreadyRunning is returned by [Monitor.Start] while another Start call
// on the same Monitor has not returned.
var ErrAlreadyRunning = errors.New("monitor already running")

// Monitor polls a tripwire status endpoint, keeps the latest snapshot and
// serves it on a live dashboard.
//
// Monitor is created using [New] with functional options and run with
// [Monitor.Start]. The typical lifecycle is:
//
//	m, err := tripwire.New(tripwire.WithEndpointURL("http://rig.local:8000/status"))
//	if err != nil {
//	    slog.Error("failed to create monitor", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	m.Start(ctx) // blocks until context cancelled
type Monitor struct {
	title             string
	endpointURL       string
	pollingInterval   time.Duration
	requestTimeout    time.Duration
	shape             Shape
	port              int
	dashboard         bool
	h2c               bool
	logger            *slog.Logger
	snapshotCallbacks []func(Snapshot)

	cell *store.Cell

	mu      sync.Mutex
	running bool
}

// New creates a new [Monitor] with the given options.
//
// Defaults:
//   - Endpoint: http://localhost:8000/status
//   - Polling interval: 500ms
//   - Request timeout: 2s
//   - Shape: auto
//   - Port: 8080, dashboard enabled
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*Monitor, error) {
	cfg := &monitorConfig{
		endpointURL:     defaultEndpointURL,
		pollingInterval: defaultPollingInterval,
		requestTimeout:  defaultRequestTimeout,
		shape:           ShapeAuto,
		port:            defaultPort,
		dashboard:       true,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.h2c && strings.HasPrefix(cfg.endpointURL, "https://") {
		return nil, fmt.Errorf("h2c requires an http:// endpoint, got %q", cfg.endpointURL)
	}

	if cfg.dashboard && (cfg.port < 1 || cfg.port > 65535) {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		title:             cfg.title,
		endpointURL:       cfg.endpointURL,
		pollingInterval:   cfg.pollingInterval,
		requestTimeout:    cfg.requestTimeout,
		shape:             cfg.shape,
		port:              cfg.port,
		dashboard:         cfg.dashboard,
		h2c:               cfg.h2c,
		logger:            logger,
		snapshotCallbacks: cfg.snapshotCallbacks,
		cell:              store.NewCell(),
	}, nil
}

// Start begins polling the endpoint and serving the dashboard.
//
// Start is a blocking call that runs until ctx is cancelled. The first
// request fires one polling interval after Start. Failed polls are logged
// and leave the current snapshot untouched.
//
// The poller is owned by this call: it is stopped, and its in-flight requests
// abandoned, before Start returns, on every path. No snapshot is published
// and no callback runs after Start has returned. The dashboard's port is
// released by then too, so Start can be called again on the same port.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails
// to start or if the Monitor is already running.
func (m *Monitor) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	m.logger.Info("tripwire starting",
		"endpoint", m.endpointURL,
		"interval", m.pollingInterval.String(),
		"shape", m.shape.String(),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if m.dashboard {
		httpServer := server.NewServer(m.cell, m.port, dashboard.Assets, m.title, m.logger)
		if err := httpServer.Start(runCtx); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		// release the port before returning so a restart can bind it
		defer func() {
			cancel()
			<-httpServer.Done()
		}()
		m.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", m.port))
	}

	p := m.newPoller()
	defer p.Stop()

	if err := p.Start(runCtx, m.pollingInterval, m.publish); err != nil {
		return fmt.Errorf("failed to start poller: %w", err)
	}

	<-ctx.Done()
	p.Stop()
	m.logger.Info("tripwire stopped", "last_seq", p.LastPublished())
	return nil
}

// PollOnce performs a single request against the endpoint and returns the
// decoded snapshot without publishing it.
//
// Errors wrap [ErrTransport], [ErrStatus] or [ErrMalformed].
func (m *Monitor) PollOnce(ctx context.Context) (Snapshot, error) {
	p := m.newPoller()
	defer p.Stop()

	snap, err := p.PollOnce(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return fromInternal(snap), nil
}

// Current returns the most recently published snapshot, or
// [DefaultSnapshot] before the first successful poll.
func (m *Monitor) Current() Snapshot {
	return fromInternal(m.cell.Current())
}

// View returns the rendered form of [Monitor.Current].
func (m *Monitor) View() View {
	return m.Current().View()
}

// EndpointURL returns the polled status endpoint.
func (m *Monitor) EndpointURL() string {
	return m.endpointURL
}

// PollingInterval returns the configured interval between requests.
func (m *Monitor) PollingInterval() time.Duration {
	return m.pollingInterval
}

// RequestTimeout returns the per-request timeout.
func (m *Monitor) RequestTimeout() time.Duration {
	return m.requestTimeout
}

// Shape returns the accepted document layout.
func (m *Monitor) Shape() Shape {
	return m.shape
}

// Port returns the configured HTTP port for the dashboard server.
func (m *Monitor) Port() int {
	return m.port
}

// Title returns the configured dashboard title, or "" for the default.
func (m *Monitor) Title() string {
	return m.title
}

// H2C reports whether requests use cleartext HTTP/2.
func (m *Monitor) H2C() bool {
	return m.h2c
}

// DashboardEnabled reports whether Start serves the HTTP dashboard.
func (m *Monitor) DashboardEnabled() bool {
	return m.dashboard
}

func (m *Monitor) newPoller() *poller.Poller {
	return poller.New(poller.Config{
		URL:     m.endpointURL,
		Timeout: m.requestTimeout,
		Shape:   m.shape,
		H2C:     m.h2c,
	}, m.logger)
}

// publish makes s current, then hands it to the snapshot callbacks.
// The poller serializes calls.
func (m *Monitor) publish(s snapshot.Snapshot) {
	m.cell.Publish(s)

	if len(m.snapshotCallbacks) == 0 {
		return
	}
	public := fromInternal(s)
	for _, cb := range m.snapshotCallbacks {
		invokeCallbackSafe(cb, public, m.logger)
	}
}

// invokeCallbackSafe calls a snapshot callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Snapshot), s Snapshot, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("snapshot callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"seq", s.Seq,
				"stack", string(debug.Stack()),
			)
		}
	}()
	cb(s)
}
