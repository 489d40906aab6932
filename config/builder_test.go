package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jpalmerr/tripwire"
)

func TestBuildOptions_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	opts, err := BuildOptions(cfg, nil)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}

	m, err := tripwire.New(opts...)
	if err != nil {
		t.Fatalf("tripwire.New() error = %v", err)
	}

	if m.EndpointURL() != "http://localhost:8000/status" {
		t.Errorf("EndpointURL() = %q", m.EndpointURL())
	}
	if m.PollingInterval() != 500*time.Millisecond {
		t.Errorf("PollingInterval() = %v, want 500ms", m.PollingInterval())
	}
	if m.Shape() != tripwire.ShapeAuto {
		t.Errorf("Shape() = %q, want auto", m.Shape())
	}
	if !m.DashboardEnabled() {
		t.Error("DashboardEnabled() = false, want true")
	}
}

func TestBuildOptions_AllFields(t *testing.T) {
	yaml := `
title: Bench Rig
port: 9090
dashboard: false
endpoint_url: http://rig.local:8000/status
poll_interval: 1s
request_timeout: 300ms
shape: keys
h2c: true
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts, err := BuildOptions(cfg, logger)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}

	m, err := tripwire.New(opts...)
	if err != nil {
		t.Fatalf("tripwire.New() error = %v", err)
	}

	if m.Title() != "Bench Rig" {
		t.Errorf("Title() = %q", m.Title())
	}
	if m.Port() != 9090 {
		t.Errorf("Port() = %d, want 9090", m.Port())
	}
	if m.DashboardEnabled() {
		t.Error("DashboardEnabled() = true, want false")
	}
	if m.EndpointURL() != "http://rig.local:8000/status" {
		t.Errorf("EndpointURL() = %q", m.EndpointURL())
	}
	if m.PollingInterval() != time.Second {
		t.Errorf("PollingInterval() = %v, want 1s", m.PollingInterval())
	}
	if m.RequestTimeout() != 300*time.Millisecond {
		t.Errorf("RequestTimeout() = %v, want 300ms", m.RequestTimeout())
	}
	if m.Shape() != tripwire.ShapeKeys {
		t.Errorf("Shape() = %q, want keys", m.Shape())
	}
	if !m.H2C() {
		t.Error("H2C() = false, want true")
	}
}

func TestBuildOptions_NilConfig(t *testing.T) {
	if _, err := BuildOptions(nil, nil); err == nil {
		t.Error("BuildOptions(nil) expected error, got nil")
	}
}

func TestBuildOptions_UnvalidatedShape(t *testing.T) {
	// a Config built by hand skips Parse validation
	cfg := &Config{
		EndpointURL:    "http://rig.local/status",
		Port:           8080,
		PollInterval:   Duration(time.Second),
		RequestTimeout: Duration(time.Second),
		Shape:          "csv",
	}
	if _, err := BuildOptions(cfg, nil); err == nil {
		t.Error("BuildOptions() expected error for unknown shape, got nil")
	}
}
