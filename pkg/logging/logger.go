// Package logging configures zerolog for burst-fetch.
//
// Report lines own stdout, so every logger built here writes to stderr unless
// the caller overrides Config.Output.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs per-task events and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs run start/completion and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs failed tasks and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs fatal run errors only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	level, err := ParseLevel(string(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a textual level into a zerolog.Level.
// An empty string selects info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: per-task detail
//   - task start/finish, status code, bytes, duration
//   - history keys written
//
// Info: run lifecycle
//   - dispatch start/complete with success counts
//   - history saved, metrics pushed
//
// Warn: a task failed, or an optional backend (history, pushgateway) errored
//
// Error: the run cannot produce a report
//
// Context Fields:
//   - url: target URL
//   - task: zero-based task index
//   - requests: number of submitted tasks
//   - status: HTTP status code
//   - error_class: network, client, server, status
//   - run_id: history record id
