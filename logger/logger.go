// Package logger defines the structured logging interface used across the
// lock, adapter, and locker packages, plus two implementations: a
// zero-dependency no-op logger and a logrus-backed structured logger.
package logger

// Logger defines an interface for structured, context-aware logging.
//
// All logging methods support structured output by accepting a message and
// a variadic list of key-value pairs. Keys must be strings and must
// alternate with values in the form: key1, val1, key2, val2, ...
type Logger interface {
	// Debugw logs a debug-level message with optional structured context.
	Debugw(msg string, keysAndValues ...any)

	// Infow logs an info-level message with optional structured context.
	Infow(msg string, keysAndValues ...any)

	// Warnw logs a warning-level message with optional structured context.
	Warnw(msg string, keysAndValues ...any)

	// Errorw logs an error-level message with optional structured context.
	Errorw(msg string, keysAndValues ...any)

	// Context enrichment methods return a new logger with additional
	// persistent context; the receiver is left unmodified.

	// With adds arbitrary key-value pairs to the logger's context.
	With(keysAndValues ...any) Logger

	// WithComponent adds a component label (e.g. "locker", "adapter") to
	// categorize log output.
	WithComponent(name string) Logger
}
