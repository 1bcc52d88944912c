// Package logging builds the structured logger shared by the CLI, the MCP
// server and the pipeline.
//
// Logs always go to a writer the caller chooses, normally stderr: when the
// MCP server runs, stdout carries the protocol stream.
//
// # Usage
//
//	logger, err := logging.New(os.Stderr, "debug", logging.FormatText)
//	if err != nil {
//	    return err
//	}
//	logger.Info("server started", "tools", 6)
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// EnvLevel is the environment variable consulted for the log level when no
// flag or configuration value is given.
const EnvLevel = "DOC_SCANNER_LOG_LEVEL"

var (
	// ErrInvalidLevel is returned for a level name slog does not know.
	ErrInvalidLevel = errors.New("invalid log level: must be debug, info, warn or error")

	// ErrInvalidFormat is returned for a format other than text or json.
	ErrInvalidFormat = errors.New("invalid log format: must be text or json")
)

// ParseLevel converts a level name to a slog.Level. An empty name means
// info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
}

// New creates a logger writing to w at the given level and format.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
