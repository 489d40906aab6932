package tripwire

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
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
}

// Option is a function that configures a [Monitor] during construction.
//
// Options return an error if validation fails, which [New] passes through.
//
// Built-in options: [WithEndpointURL], [WithPollingInterval],
// [WithRequestTimeout], [WithShape], [WithPort], [WithTitle], [WithLogger],
// [WithSnapshotCallback], [WithoutDashboard], [WithH2C].
type Option func(*monitorConfig) error

// WithEndpointURL sets the status endpoint to poll.
//
// Defaults to http://localhost:8000/status.
//
// Returns an error unless the URL is absolute with an http or https scheme.
func WithEndpointURL(rawURL string) Option {
	return func(cfg *monitorConfig) error {
		if err := validateEndpointURL(rawURL); err != nil {
			return err
		}
		cfg.endpointURL = rawURL
		return nil
	}
}

// WithPollingInterval sets the time between consecutive requests.
//
// Requests are issued on a fixed cadence: a slow response does not delay the
// next request. Defaults to 500ms.
//
// Returns an error if the duration is zero or negative.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("polling interval must be positive")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithRequestTimeout bounds each individual request. Defaults to 2s.
//
// Returns an error if the duration is zero or negative.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithShape restricts the status document layout the monitor accepts.
//
// Defaults to [ShapeAuto]. With [ShapeKeys] or [ShapeLastKey], documents in
// the other layout are rejected as malformed.
func WithShape(shape Shape) Option {
	return func(cfg *monitorConfig) error {
		parsed, err := ParseShape(string(shape))
		if err != nil {
			return err
		}
		cfg.shape = parsed
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// The dashboard UI and API will be available at http://localhost:<port>.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *monitorConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Monitor.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithSnapshotCallback registers a function to be called with every
// published snapshot.
//
// Callbacks run after the snapshot becomes current, in registration order,
// one snapshot at a time. Failed polls do not invoke callbacks. A callback
// that blocks delays later publications, so hand long work to a goroutine.
// Panics are recovered and logged.
//
// Example:
//
//	m, err := tripwire.New(
//	    tripwire.WithSnapshotCallback(func(s tripwire.Snapshot) {
//	        if s.MachineEnabled && s.BeamBroken {
//	            log.Printf("ALARM: beam broken while armed")
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithSnapshotCallback(cb func(Snapshot)) Option {
	return func(cfg *monitorConfig) error {
		if cb == nil {
			return nil
		}
		cfg.snapshotCallbacks = append(cfg.snapshotCallbacks, cb)
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "Tripwire".
func WithTitle(title string) Option {
	return func(cfg *monitorConfig) error {
		cfg.title = title
		return nil
	}
}

// WithoutDashboard disables the HTTP dashboard. The monitor then only polls,
// keeps [Monitor.Current] up to date and invokes snapshot callbacks.
func WithoutDashboard() Option {
	return func(cfg *monitorConfig) error {
		cfg.dashboard = false
		return nil
	}
}

func validateEndpointURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("endpoint URL cannot be empty")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("endpoint URL must use http:// or https://, got %q", rawURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("endpoint URL must include a host, got %q", rawURL)
	}
	return nil
}

// WithH2C polls the endpoint over cleartext HTTP/2 with prior knowledge.
//
// Use it for rig controllers that only speak h2c. The endpoint URL must use
// http://; [New] rejects the combination with https.
func WithH2C() Option {
	return func(cfg *monitorConfig) error {
		cfg.h2c = true
		return nil
	}
}
