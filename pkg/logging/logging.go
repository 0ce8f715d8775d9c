// Package logging builds the zerolog loggers used across notes.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

// Config selects the log level and destination.
type Config struct {
	Level string
	// File receives logs when set. The terminal UI owns stdout, so it never
	// logs to the console.
	File string
	// Console writes human-readable logs to stderr when no File is set.
	Console bool
}

// New returns a logger and a close function for its destination.
func New(cfg Config) (zerolog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), noop, err
	}

	var (
		out     io.Writer = io.Discard
		closeFn           = noop
	)
	switch {
	case cfg.File != "":
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("logging: ensure log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("logging: open %s: %w", cfg.File, err)
		}
		out, closeFn = f, f.Close
	case cfg.Console:
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    termenv.EnvColorProfile() == termenv.Ascii,
		}
	}

	log := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return log, closeFn, nil
}

func parseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("logging: %w", err)
	}
	return level, nil
}

func noop() error { return nil }
