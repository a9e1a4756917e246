// Package logging provides a minimal logging interface and adapters for reactloop.
//
// The Logger interface defines the standard leveled methods (Debug, Info,
// Warn, Error) that agents, tools and the CLI use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping an existing *slog.Logger
//   - StructuredLogger with component/session scoping and loop helpers
//   - NoOpLogger for silent operation (testing, library defaults)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "text", false)
//	a := agent.NewReactAgent(m, registry, func(o *agent.Options) { o.Logger = logger })
package logging
