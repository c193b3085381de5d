// Package logging provides logging utilities for the ideaunpack pipeline.
package logging

import (
	"fmt"
	"log/slog"
	"os"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelOff
)

// UnmarshalText parses a textual level (e.g. "WARN") so the level can be
// supplied through environment configuration.
func (l *LogLevel) UnmarshalText(text []byte) error {
	switch string(text) {
	case "DEBUG", "debug":
		*l = LogLevelDebug
	case "INFO", "info":
		*l = LogLevelInfo
	case "WARN", "warn":
		*l = LogLevelWarn
	case "ERROR", "error":
		*l = LogLevelError
	case "OFF", "off":
		*l = LogLevelOff
	default:
		return fmt.Errorf("unknown log level: %q", text)
	}
	return nil
}

// Logger is the interface used by every pipeline component.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	SetLevel(level LogLevel)
}

// DefaultLogger is the default logger implementation, backed by log/slog.
type DefaultLogger struct {
	logger *slog.Logger
	level  LogLevel
}

// NewLogger creates a new logger with the specified level
func NewLogger(level LogLevel) *DefaultLogger {
	opts := &slog.HandlerOptions{
		Level: toSlogLevel(level),
	}
	handler := slog.NewTextHandler(os.Stderr, opts)
	return &DefaultLogger{
		logger: slog.New(handler),
		level:  level,
	}
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

// Debug logs a debug message
func (l *DefaultLogger) Debug(msg string, args ...any) {
	if l.level <= LogLevelDebug {
		l.logger.Debug(msg, args...)
	}
}

// Info logs an info message
func (l *DefaultLogger) Info(msg string, args ...any) {
	if l.level <= LogLevelInfo {
		l.logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func (l *DefaultLogger) Warn(msg string, args ...any) {
	if l.level <= LogLevelWarn {
		l.logger.Warn(msg, args...)
	}
}

// Error logs an error message
func (l *DefaultLogger) Error(msg string, args ...any) {
	if l.level <= LogLevelError {
		l.logger.Error(msg, args...)
	}
}

// SetLevel sets the logging level
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.level = level
	opts := &slog.HandlerOptions{
		Level: toSlogLevel(level),
	}
	l.logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
}
