// Package logging provides logging utilities for the ideaunpack pipeline.
package logging

import (
	"sync"
)

// MockLogger is a logger implementation for testing
type MockLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
	level    LogLevel
}

// LogMessage represents a logged message
type LogMessage struct {
	Level   string
	Message string
	Args    []any
}

// NewMockLogger creates a new mock logger
func NewMockLogger() *MockLogger {
	return &MockLogger{
		Messages: []LogMessage{},
		level:    LogLevelDebug,
	}
}

func (m *MockLogger) record(level, msg string, args []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, LogMessage{
		Level:   level,
		Message: msg,
		Args:    args,
	})
}

// Debug logs a debug message
func (m *MockLogger) Debug(msg string, args ...any) {
	if m.level <= LogLevelDebug {
		m.record("DEBUG", msg, args)
	}
}

// Info logs an info message
func (m *MockLogger) Info(msg string, args ...any) {
	if m.level <= LogLevelInfo {
		m.record("INFO", msg, args)
	}
}

// Warn logs a warning message
func (m *MockLogger) Warn(msg string, args ...any) {
	if m.level <= LogLevelWarn {
		m.record("WARN", msg, args)
	}
}

// Error logs an error message
func (m *MockLogger) Error(msg string, args ...any) {
	if m.level <= LogLevelError {
		m.record("ERROR", msg, args)
	}
}

// SetLevel sets the logging level
func (m *MockLogger) SetLevel(level LogLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

// Contains reports whether any recorded message equals msg.
func (m *MockLogger) Contains(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lm := range m.Messages {
		if lm.Message == msg {
			return true
		}
	}
	return false
}
