// Package logger builds zerolog loggers from configuration
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Format selects the log output encoding
type Format string

const (
	// FormatConsole writes human-readable colored lines
	FormatConsole Format = "console"
	// FormatJSON writes one JSON object per line
	FormatJSON Format = "json"
)

// Config configures a logger
type Config struct {
	Level  string
	Format Format
	Output io.Writer
}

// New creates a logger. Unknown levels fall back to info.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if Format(strings.ToLower(string(cfg.Format))) != FormatJSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel converts a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
