package wellspring

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DebugLogger writes timestamped diagnostics for store and engine operations.
// A nil or disabled logger is a no-op.
type DebugLogger struct {
	mu      sync.Mutex
	enabled bool
	writer  io.Writer
}

// NewDebugLogger creates a debug logger. If logPath is empty, logs go to stderr.
func NewDebugLogger(enabled bool, logPath string) (*DebugLogger, error) {
	var w io.Writer = os.Stderr

	if enabled && logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open debug log: %w", err)
		}
		w = f
	}

	return &DebugLogger{enabled: enabled, writer: w}, nil
}

// NewWriterLogger returns an enabled logger writing to w.
func NewWriterLogger(w io.Writer) *DebugLogger {
	return &DebugLogger{enabled: true, writer: w}
}

// Close closes the log file, if any.
func (l *DebugLogger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if closer, ok := l.writer.(io.Closer); ok && l.writer != os.Stderr {
		return closer.Close()
	}
	return nil
}

// Log writes a debug message if logging is enabled.
func (l *DebugLogger) Log(format string, args ...any) {
	if l == nil || !l.enabled {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	_, _ = fmt.Fprintf(l.writer, "[%s] [WELLSPRING DEBUG] %s\n", ts, fmt.Sprintf(format, args...))
}

// LogOp logs a completed operation with its duration.
func (l *DebugLogger) LogOp(op string, start time.Time, details string) {
	if l == nil || !l.enabled {
		return
	}
	l.Log("OP [%s] %s (%s)", op, details, time.Since(start).Round(time.Microsecond))
}

// LogError logs an error with full details.
func (l *DebugLogger) LogError(op string, err error) {
	if l == nil || !l.enabled {
		return
	}
	l.Log("ERROR [%s]: %v", op, err)
}

// LogScore logs why a composite was not valid.
func (l *DebugLogger) LogScore(s *CompositeScore) {
	if l == nil || !l.enabled || s == nil {
		return
	}
	if !s.Mood.Valid {
		l.Log("SCORE [%s] mood: %s", s.EntryID, s.Mood.Reason)
	}
	if !s.Success.Valid {
		l.Log("SCORE [%s] success: %s", s.EntryID, s.Success.Reason)
	}
}

// truncateForLog shortens s to maxLen bytes for logging.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}
