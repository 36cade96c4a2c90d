// Package logger provides structured logging for all subsystems.
// It wraps log/slog behind a small interface so packages depend on the
// Logger contract rather than a concrete handler.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// LogLevel controls the minimum severity emitted by a logger.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// slogLevel maps LogLevel to the slog equivalent.
func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a config string ("debug", "info", "warn", "error")
// to a LogLevel. Unknown values default to info.
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Field is a typed key/value pair attached to a log record.
type Field struct {
	attr slog.Attr
}

// String creates a string field.
func String(key, value string) Field { return Field{slog.String(key, value)} }

// Int creates an int field.
func Int(key string, value int) Field { return Field{slog.Int(key, value)} }

// Int64 creates an int64 field.
func Int64(key string, value int64) Field { return Field{slog.Int64(key, value)} }

// Uint64 creates a uint64 field.
func Uint64(key string, value uint64) Field { return Field{slog.Uint64(key, value)} }

// Float64 creates a float64 field.
func Float64(key string, value float64) Field { return Field{slog.Float64(key, value)} }

// Bool creates a bool field.
func Bool(key string, value bool) Field { return Field{slog.Bool(key, value)} }

// Duration creates a duration field rendered as a string like "30s".
func Duration(key string, value interface{ String() string }) Field {
	return Field{slog.String(key, value.String())}
}

// Any creates a field with an arbitrary value.
func Any(key string, value any) Field { return Field{slog.Any(key, value)} }

// Error creates an "error" field. A nil error renders as "<nil>".
func Error(err error) Field {
	if err == nil {
		return Field{slog.String("error", "<nil>")}
	}
	return Field{slog.String("error", err.Error())}
}

// Logger is the logging contract used throughout the codebase.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child logger with the given fields attached to
	// every record.
	With(fields ...Field) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger creates a Logger writing JSON records to w at the given
// level. Extra attrs, if any, are attached to every record.
func NewSlogLogger(w io.Writer, level LogLevel, attrs []slog.Attr) Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level.slogLevel()})
	l := slog.New(handler)
	if len(attrs) > 0 {
		args := make([]any, 0, len(attrs))
		for _, a := range attrs {
			args = append(args, a)
		}
		l = l.With(args...)
	}
	return &slogLogger{l: l}
}

func (s *slogLogger) log(level slog.Level, msg string, fields []Field) {
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, f.attr)
	}
	s.l.LogAttrs(context.Background(), level, msg, attrs...)
}

func (s *slogLogger) Debug(msg string, fields ...Field) { s.log(slog.LevelDebug, msg, fields) }
func (s *slogLogger) Info(msg string, fields ...Field)  { s.log(slog.LevelInfo, msg, fields) }
func (s *slogLogger) Warn(msg string, fields ...Field)  { s.log(slog.LevelWarn, msg, fields) }
func (s *slogLogger) Error(msg string, fields ...Field) { s.log(slog.LevelError, msg, fields) }

func (s *slogLogger) With(fields ...Field) Logger {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f.attr)
	}
	return &slogLogger{l: s.l.With(args...)}
}
