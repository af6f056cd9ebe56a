// Package logger provides structured logging on top of log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level aliases slog levels so callers don't import slog directly.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// LoggerInterface is the logging surface used across the application.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) LoggerInterface
}

// Logger implements LoggerInterface over a slog.Logger.
type Logger struct {
	sl *slog.Logger
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// New creates a Logger writing to w at the given level. The service name is
// attached to every record. replaceAttr may be nil.
func New(w io.Writer, level Level, service string, replaceAttr func(groups []string, a slog.Attr) slog.Attr) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	})
	sl := slog.New(h)
	if service != "" {
		sl = sl.With("service", service)
	}
	return &Logger{sl: sl}
}

// NewFromSlog wraps an existing slog.Logger.
func NewFromSlog(sl *slog.Logger) *Logger {
	return &Logger{sl: sl}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.sl.DebugContext(ctx, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.sl.InfoContext(ctx, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.sl.WarnContext(ctx, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.sl.ErrorContext(ctx, msg, args...)
}

// With returns a logger with extra key-value pairs attached to every record.
func (l *Logger) With(args ...any) LoggerInterface {
	return &Logger{sl: l.sl.With(args...)}
}
