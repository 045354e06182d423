// Package logging assembles the structured slog loggers shared by every
// earmark command.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so collaborators tag log lines
// with consistent field names. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
