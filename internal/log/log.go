// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package log wraps a process-wide log/slog logger. Diagnostics go to
// stderr so that command output on stdout stays machine-readable.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	levelVar = new(slog.LevelVar)
	loggerMu sync.RWMutex
	logger   = slog.New(newHandler(os.Stderr))
)

func newHandler(w io.Writer) slog.Handler {
	opts := slog.HandlerOptions{
		Level: levelVar,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			}
			return attr
		},
	}
	return slog.NewTextHandler(w, &opts)
}

// SetLevel sets the minimum level: debug, info, warn or error
// (case-insensitive, empty means info).
func SetLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		levelVar.Set(slog.LevelInfo)
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn", "warning":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}

// SetOutput redirects log output to w, keeping the current level.
func SetOutput(w io.Writer) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = slog.New(newHandler(w))
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Debug logs msg at debug level with the given key-value pairs.
// A nil ctx is treated as context.Background().
func Debug(ctx context.Context, msg string, args ...any) {
	Logger().DebugContext(orBackground(ctx), msg, args...)
}

// Info logs msg at info level. See Debug.
func Info(ctx context.Context, msg string, args ...any) {
	Logger().InfoContext(orBackground(ctx), msg, args...)
}

// Warn logs msg at warn level. See Debug.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger().WarnContext(orBackground(ctx), msg, args...)
}

// Error logs msg at error level. See Debug.
func Error(ctx context.Context, msg string, args ...any) {
	Logger().ErrorContext(orBackground(ctx), msg, args...)
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
