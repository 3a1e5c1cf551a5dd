package worker

import (
	"github.com/rs/zerolog"

	"github.com/jzx17/threadpool/pkg/metrics"
	"github.com/jzx17/threadpool/pkg/types"
)

// Config defines configuration shared by a pool and its workers
type Config struct {
	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// Logger receives worker lifecycle and panic events (defaults to a no-op logger)
	Logger zerolog.Logger

	// Metrics is updated on every submission and execution (optional)
	Metrics *metrics.Collector

	// PanicHandler is called with every panic recovered from a job (optional)
	PanicHandler types.PanicHandler
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Clock:  types.NewRealClock(),
		Logger: zerolog.Nop(),
	}
}

// Option configures a pool
type Option func(*Config)

// WithClock sets the clock used for execution timing
func WithClock(clock types.Clock) Option {
	return func(c *Config) {
		if clock != nil {
			c.Clock = clock
		}
	}
}

// WithLogger sets the pool logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the Prometheus collector updated by the pool
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Config) {
		c.Metrics = collector
	}
}

// WithPanicHandler sets a callback for panics recovered from jobs
func WithPanicHandler(handler types.PanicHandler) Option {
	return func(c *Config) {
		c.PanicHandler = handler
	}
}
