// Package logging defines the structured-logging interface used across
// ChronoChat services and its log/slog backed implementation.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Warn(ctx, "image read failed, keeping original uri", "uri", uri, "err", err)
type Logger interface {
	// Debug logs diagnostic details (classification reasons, migration counts).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions: best-effort fallbacks,
	// device drift that is tolerated.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures that abort the requested operation.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
