// Package logger provides structured logging for SnapBrowse.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: handler construction, dynamic level, package-level default
//   - context.go: context propagation of the logger and request IDs
//   - sanitize.go: scrubbing of client-controlled values before they are written
//
// Request paths come straight from clients, so string attributes are
// stripped of control characters to keep one request on one log line.
package logger
