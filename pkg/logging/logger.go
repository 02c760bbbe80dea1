// Package logging configures structured zerolog logging for the client and its tools.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is the minimum level written.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel `validate:"oneof=debug info warn error"`

	// Pretty switches from JSON lines to human-readable console output.
	Pretty bool

	// Output receives log lines. Nil means os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

var validate = validator.New()

// Setup validates cfg, installs the resulting logger as the global zerolog logger and
// returns it.
func Setup(cfg Config) (zerolog.Logger, error) {
	if cfg.Level == "" {
		cfg.Level = LevelInfo
	}
	if err := validate.Struct(cfg); err != nil {
		return zerolog.Nop(), fmt.Errorf("logger config validation: %w", err)
	}

	level, err := zerolog.ParseLevel(string(cfg.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger

	return logger, nil
}

// NewLogger derives a logger tagged with component from the global logger.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Level guidelines:
//
// Debug: each HTTP request (path, request_id), each page fetched during aggregation.
// Info: aggregation complete (pages_fetched, items, duration), CLI start.
// Warn: failed requests, non-2xx responses, aborted aggregations, token store errors.
// Error: configuration failures in cmd/.
//
// Context fields:
//   - component: client, pagination, auth, apipager
//   - endpoint: request path without query
//   - request_id: X-Request-ID sent with the request
//   - status: HTTP status code
//   - error_class: client, server, rate_limit, network, decode
//   - direction: forward or backward
//   - pages_fetched, items, duration
