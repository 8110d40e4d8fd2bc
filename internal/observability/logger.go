// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability builds the zerolog logger and the Prometheus metrics
// shared by the cache, the HTTP transport and the Scopus client.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggingConfig contains logger configuration options.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format is json or console.
	Format string

	// Output is stdout or stderr. Any other value selects stderr so that
	// tables written to stdout stay machine readable.
	Output string
}

// DefaultLoggingConfig logs info and above to stderr in console format.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}

// NewLogger creates a zerolog logger from cfg.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	var out io.Writer = os.Stderr
	if strings.ToLower(cfg.Output) == "stdout" {
		out = os.Stdout
	}
	return newLogger(cfg, out)
}

func newLogger(cfg LoggingConfig, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if f := strings.ToLower(cfg.Format); f == "console" || f == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Logger().
		Level(ParseLevel(cfg.Level))
}

// ParseLevel converts a level name to a zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
