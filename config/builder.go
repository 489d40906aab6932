package config

import (
	"errors"
	"log/slog"

	"github.com/jpalmerr/tripwire"
)

// BuildOptions converts parsed configuration into SDK options for
// [tripwire.New].
//
// logger may be nil, in which case the SDK default is used.
func BuildOptions(cfg *Config, logger *slog.Logger) ([]tripwire.Option, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	shape, err := tripwire.ParseShape(cfg.Shape)
	if err != nil {
		return nil, err
	}

	opts := []tripwire.Option{
		tripwire.WithEndpointURL(cfg.EndpointURL),
		tripwire.WithPollingInterval(cfg.PollInterval.Duration()),
		tripwire.WithRequestTimeout(cfg.RequestTimeout.Duration()),
		tripwire.WithShape(shape),
		tripwire.WithPort(cfg.Port),
	}

	if cfg.Title != "" {
		opts = append(opts, tripwire.WithTitle(cfg.Title))
	}
	if cfg.H2C {
		opts = append(opts, tripwire.WithH2C())
	}
	if !cfg.DashboardEnabled() {
		opts = append(opts, tripwire.WithoutDashboard())
	}
	if logger != nil {
		opts = append(opts, tripwire.WithLogger(logger))
	}

	return opts, nil
}
