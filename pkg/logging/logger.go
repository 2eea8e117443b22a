// Package logging configures zerolog for the listings service. All
// components log structured JSON through the shared global logger; Setup is
// called once at process start, and packages obtain tagged loggers via
// NewLogger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is the minimum severity emitted by the logger.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config controls the global logger set up by Setup.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON to human-readable console output.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return log.Logger
}

func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger returns a logger tagged with a component name. Components follow
// package names: crossref, cache, ratelimit, events, enrich, sheetimage,
// refresh, server.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Level usage across the service:
//
// Debug: cache hit/miss detail, provider batch sizes, rate-limit state
// updates, refresh task completions.
//
// Info: served listing pages, requests succeeding after retry, server
// startup and shutdown.
//
// Warn: retry attempts, cache errors degrading to direct lookups,
// per-item provider misses.
//
// Error: provider requests failed after retries, refresh task failures,
// configuration errors.
//
// Common context fields: list_id, page, items_per_page, status, duration,
// error_class, doi_count, task.
