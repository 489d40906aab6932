// Package config provides YAML configuration parsing for tripwire.
//
// This package enables running tripwire as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Workshop Tripwire
//	port: 8080
//	endpoint_url: http://${RIG_HOST:-localhost}:8000/status
//	poll_interval: 500ms
//	request_timeout: 2s
//	shape: auto
//	h2c: false
//
//	bridge:
//	  serial_port: /dev/ttyACM0
//	  baud: 9600
//	  listen: ":8000"
//	  shape: keys
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/tripwire"
)

const (
	// minPollInterval keeps a typo like "5ms" from hammering the rig's
	// microcontroller.
	minPollInterval = 100 * time.Millisecond

	defaultPort            = 8080
	defaultEndpointURL     = "http://localhost:8000/status"
	defaultPollInterval    = 500 * time.Millisecond
	defaultRequestTimeout  = 2 * time.Second
	defaultBaud            = 9600
	defaultBridgeListen    = ":8000"
	defaultBridgeShapeName = "keys"
)

// Config is the root configuration structure for tripwire.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "Tripwire" if not set.
	Title string `yaml:"title"`

	// Port is the dashboard HTTP port. Defaults to 8080.
	Port int `yaml:"port"`

	// Dashboard enables the HTTP dashboard. Defaults to true.
	Dashboard *bool `yaml:"dashboard"`

	// EndpointURL is the rig's status endpoint.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	// Defaults to http://localhost:8000/status.
	EndpointURL string `yaml:"endpoint_url"`

	// PollInterval is the time between requests.
	// Accepts duration strings like "500ms" or "1s". Defaults to 500ms.
	PollInterval Duration `yaml:"poll_interval"`

	// RequestTimeout bounds each request. Defaults to 2s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// Shape selects the accepted document layout: "auto", "keys" or
	// "last-key". Defaults to "auto".
	Shape string `yaml:"shape"`

	// H2C polls over cleartext HTTP/2 with prior knowledge. Requires an
	// http:// endpoint_url.
	H2C bool `yaml:"h2c"`

	// Bridge configures the serial-to-HTTP bridge command.
	Bridge BridgeConfig `yaml:"bridge"`
}

// BridgeConfig configures the serial bridge that turns the rig's line
// output into a status endpoint.
type BridgeConfig struct {
	// SerialPort is the device path, e.g. /dev/ttyACM0 or COM3.
	// Supports environment variable substitution.
	SerialPort string `yaml:"serial_port"`

	// Baud is the serial line speed. Defaults to 9600.
	Baud int `yaml:"baud"`

	// Listen is the address the bridge serves /status on. Defaults to ":8000".
	Listen string `yaml:"listen"`

	// Shape is the document layout the bridge serves: "keys" or "last-key".
	// Defaults to "keys".
	Shape string `yaml:"shape"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DashboardEnabled reports whether the dashboard should be served.
func (c *Config) DashboardEnabled() bool {
	return c.Dashboard == nil || *c.Dashboard
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in endpoint_url, title and
// bridge.serial_port. An empty document is valid and yields the defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.EndpointURL == "" {
		c.EndpointURL = defaultEndpointURL
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(defaultPollInterval)
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = Duration(defaultRequestTimeout)
	}
	if c.Shape == "" {
		c.Shape = string(tripwire.ShapeAuto)
	}
	if c.Bridge.Baud == 0 {
		c.Bridge.Baud = defaultBaud
	}
	if c.Bridge.Listen == "" {
		c.Bridge.Listen = defaultBridgeListen
	}
	if c.Bridge.Shape == "" {
		c.Bridge.Shape = defaultBridgeShapeName
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	title, err := expandEnvVars(c.Title)
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	c.Title = title

	expanded, err := expandEnvVars(c.EndpointURL)
	if err != nil {
		return fmt.Errorf("endpoint_url: %w", err)
	}
	c.EndpointURL = expanded

	parsedURL, err := url.Parse(c.EndpointURL)
	if err != nil {
		return fmt.Errorf("endpoint_url: invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("endpoint_url: scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("endpoint_url: host is required, got %q", c.EndpointURL)
	}
	if c.H2C && parsedURL.Scheme != "http" {
		return fmt.Errorf("h2c: endpoint_url must use http, got %q", parsedURL.Scheme)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}

	if c.RequestTimeout.Duration() <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout.Duration())
	}

	if _, err := tripwire.ParseShape(c.Shape); err != nil {
		return fmt.Errorf("shape: %w", err)
	}

	return c.Bridge.expandAndValidate()
}

func (b *BridgeConfig) expandAndValidate() error {
	port, err := expandEnvVars(b.SerialPort)
	if err != nil {
		return fmt.Errorf("bridge.serial_port: %w", err)
	}
	b.SerialPort = port

	if b.Baud <= 0 {
		return fmt.Errorf("bridge.baud must be positive, got %d", b.Baud)
	}

	switch tripwire.Shape(b.Shape) {
	case tripwire.ShapeKeys, tripwire.ShapeLastKey:
	default:
		return fmt.Errorf("bridge.shape must be 'keys' or 'last-key', got %q", b.Shape)
	}

	return nil
}
