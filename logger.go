package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger returns a logger writing to path. The terminal belongs to the
// TUI, so without a path nothing is logged.
func NewLogger(path, level string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	logger := newLoggerTo(f, lvl)
	return logger, f, nil
}

func newLoggerTo(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("app", "bucketview").
		Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
