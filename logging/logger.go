// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. StructuredLogger adds session/component scoping and
// helpers for the recurring records of the agent loop (model calls, tool
// dispatches, finished sessions).
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger defines the minimal logging interface used across reactloop.
// Arguments after msg are slog style key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// LoggerConfig configures construction of a StructuredLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
	SessionID string
}

// DefaultLoggerConfig returns a baseline JSON info level configuration writing to stderr.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stderr}
}

// StructuredLogger wraps slog.Logger with component and session scoping.
// With* methods return copies, so a base logger can be shared between
// concurrent sessions.
type StructuredLogger struct {
	logger    *slog.Logger
	component string
	sessionID string
}

// NewLogger builds a StructuredLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *StructuredLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return &StructuredLogger{logger: slog.New(handler), component: cfg.Component, sessionID: cfg.SessionID}
}

// NewSlogLogger creates a StructuredLogger writing to stderr.
func NewSlogLogger(level LogLevel, format string, addSource bool) *StructuredLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

func slogLevel(l LogLevel) slog.Level {
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

// WithComponent returns a copy tagged with the logical component (agent, tool, cli...).
func (l *StructuredLogger) WithComponent(c string) *StructuredLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithSession returns a copy tagged with a session identifier.
func (l *StructuredLogger) WithSession(id string) *StructuredLogger {
	nl := *l
	nl.sessionID = id
	return &nl
}

func (l *StructuredLogger) scope(attrs []any) []any {
	scoped := make([]any, 0, len(attrs)+4)
	if l.component != "" {
		scoped = append(scoped, "component", l.component)
	}
	if l.sessionID != "" {
		scoped = append(scoped, "session_id", l.sessionID)
	}
	return append(scoped, attrs...)
}

func (l *StructuredLogger) log(level slog.Level, msg string, args ...any) {
	l.logger.Log(context.Background(), level, msg, l.scope(args)...)
}

// Debug logs at debug level.
func (l *StructuredLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs at info level.
func (l *StructuredLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs at warn level.
func (l *StructuredLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs at error level.
func (l *StructuredLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// LogToolCall records the outcome of one tool dispatch.
func (l *StructuredLogger) LogToolCall(tool string, dur time.Duration, err error) {
	args := []any{"tool", tool, "duration_ms", dur.Milliseconds(), "success", err == nil}
	if err != nil {
		l.log(slog.LevelWarn, "tool.call.failed", append(args, "error", err.Error())...)
		return
	}
	l.log(slog.LevelInfo, "tool.call.completed", args...)
}

// LogModelCall records model call latency and success.
func (l *StructuredLogger) LogModelCall(model string, turn int, dur time.Duration, err error) {
	args := []any{"model", model, "turn", turn, "duration_ms", dur.Milliseconds(), "success", err == nil}
	if err != nil {
		l.log(slog.LevelError, "model.call.failed", append(args, "error", err.Error())...)
		return
	}
	l.log(slog.LevelInfo, "model.call.completed", args...)
}

// LogSession records the terminal state of a query session.
func (l *StructuredLogger) LogSession(status string, turns int, dur time.Duration, err error) {
	args := []any{"status", status, "turns", turns, "duration_ms", dur.Milliseconds()}
	if err != nil {
		l.log(slog.LevelWarn, "session.failed", append(args, "error", err.Error())...)
		return
	}
	l.log(slog.LevelInfo, "session.done", args...)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
