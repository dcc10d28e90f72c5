package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// ParseLevel maps a level name onto slog. Unknown names are an error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewLogger builds a text or JSON logger writing to w.
func NewLogger(w io.Writer, cfg LogConfig) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", cfg.Format)
}

// BadgerLogger routes Badger's internal logging through l.
func BadgerLogger(l *slog.Logger) badger.Logger {
	return badgerLogger{l: l.With("component", "badger")}
}

type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) log(level slog.Level, format string, args ...interface{}) {
	if !b.l.Enabled(context.Background(), level) {
		return
	}
	b.l.Log(context.Background(), level, strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.log(slog.LevelError, format, args...)
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.log(slog.LevelWarn, format, args...)
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.log(slog.LevelInfo, format, args...)
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.log(slog.LevelDebug, format, args...)
}
