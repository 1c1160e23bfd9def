// Package logging builds the slog logger used by the scg-mediator command.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/next-trace/scg-mediator/internal/config"
)

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}

	return l, nil
}

// New returns a logger writing to w in the configured format.
func New(w io.Writer, cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log format %q: want text or json", cfg.Format)
	}
}
