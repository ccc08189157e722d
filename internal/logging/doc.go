// Package logging assembles structured slog loggers and formatting helpers used
// across sirikali.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so orchestrator code can tag log
// lines with the request correlation ID, engine and mount point. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Never pass passwords or key material to a logger; command lines are logged
// from their argv, and secrets travel on stdin.
package logging
