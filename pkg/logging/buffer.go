package logging

import (
	"sync"
)

// LogCaptureWriter keeps the most recent line written through it. The
// dashboard status bar polls it instead of tailing the log file.
type LogCaptureWriter struct {
	mu       sync.RWMutex
	lastLine string
}

// GlobalLogCapture receives every server log line at INFO and above.
var GlobalLogCapture = &LogCaptureWriter{}

// GlobalEventCapture receives flight events as they are recorded.
var GlobalEventCapture = &LogCaptureWriter{}

// Write implements io.Writer.
func (w *LogCaptureWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastLine = string(p)
	return len(p), nil
}

// GetLastLine returns the most recent captured line.
func (w *LogCaptureWriter) GetLastLine() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastLine
}
