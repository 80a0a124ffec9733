// Package logger provides the logging interface used across vibewindow,
// including the top-level error sink that callback invocation failures are
// reported to. Schedulers never abort a drain because a handler failed;
// they hand the error here and move on.
package logger

import (
	stdlog "log"
)

// Logger is the process-wide sink for diagnostics and uncaught handler
// errors. Implementations may log to console, files, or nothing at all.
type Logger interface {
	// Info logs an informational message (e.g. "pump started").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g. "message dropped: origin mismatch").
	Warning(format string, args ...interface{})

	// Error logs an error message. Uncaught errors from idle,
	// animation-frame, timer, and message handlers land here.
	Error(format string, args ...interface{})
}

// Standard wraps a stdlib *log.Logger for console or file output.
type Standard struct {
	logger *stdlog.Logger
}

// NewStandard creates a logger that wraps the given *log.Logger.
// Passing nil wraps log.Default().
func NewStandard(l *stdlog.Logger) *Standard {
	if l == nil {
		l = stdlog.Default()
	}
	return &Standard{logger: l}
}

// Info logs an informational message with [INFO] prefix.
func (s *Standard) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

// Warning logs a warning message with [WARNING] prefix.
func (s *Standard) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

// Error logs an error message with [ERROR] prefix.
func (s *Standard) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// Nop discards all messages. Useful in tests.
type Nop struct{}

func (Nop) Info(format string, args ...interface{})    {}
func (Nop) Warning(format string, args ...interface{}) {}
func (Nop) Error(format string, args ...interface{})   {}
