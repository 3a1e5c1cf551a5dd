// Package config loads the web server configuration from YAML or JSON files
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the configuration file layout
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Pool    PoolConfig    `yaml:"pool" json:"pool"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ServerConfig configures the TCP listener and connection handling
type ServerConfig struct {
	Addr            string `yaml:"addr" json:"addr"`
	WebRoot         string `yaml:"web_root" json:"web_root"`
	ResponseDelay   string `yaml:"response_delay" json:"response_delay"`
	ReadBufferSize  int    `yaml:"read_buffer_size" json:"read_buffer_size"`
	ReadTimeout     string `yaml:"read_timeout" json:"read_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
	Path    string `yaml:"path" json:"path"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:7878",
			WebRoot:         "webapp",
			ResponseDelay:   "0s",
			ReadBufferSize:  512,
			ReadTimeout:     "30s",
			ShutdownTimeout: "10s",
		},
		Pool: PoolConfig{
			Workers: 3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9090",
			Path:    "/metrics",
		},
	}
}

// LoadFile reads a configuration file on top of the defaults.
// The format is chosen by file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.ReadBufferSize <= 0 {
		return fmt.Errorf("server.read_buffer_size must be positive")
	}
	if _, err := c.ResponseDelay(); err != nil {
		return err
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return err
	}
	if _, err := c.ReadTimeout(); err != nil {
		return err
	}
	if c.Pool.Workers < 1 {
		return fmt.Errorf("pool.workers must be at least 1")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log.format: %s", c.Log.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must not be empty when metrics are enabled")
	}
	return nil
}

// ResponseDelay returns the simulated per-connection processing delay
func (c *Config) ResponseDelay() (time.Duration, error) {
	return parseDuration("server.response_delay", c.Server.ResponseDelay)
}

// ReadTimeout returns how long a connection may take to send its request
func (c *Config) ReadTimeout() (time.Duration, error) {
	return parseDuration("server.read_timeout", c.Server.ReadTimeout)
}

// ShutdownTimeout returns how long to wait for queued connections on stop
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return parseDuration("server.shutdown_timeout", c.Server.ShutdownTimeout)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must be non-negative", field)
	}
	return d, nil
}
