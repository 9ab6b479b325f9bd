package logging

import "log/slog"

// EnableTrace turns on per-tick trace logs. Off by default: at 60 Hz the
// tick path would flood the debug level.
var EnableTrace = false

// Trace logs at DEBUG level when EnableTrace is set. The guard keeps the
// call near-free on the hot path while tracing is off.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}

// TraceDefault is Trace against the default logger.
func TraceDefault(msg string, args ...any) {
	if EnableTrace {
		slog.Debug(msg, args...)
	}
}
