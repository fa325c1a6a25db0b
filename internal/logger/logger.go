// Package logger provides verbose logging and ingestion status reporting for folio.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow the ingestion pipeline.
//
// Components receive a *Logger explicitly. The package-level functions
// operate on Default() and exist for the CLI layer.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Logger implements the status reporter port.
var _ driven.StatusReporter = (*Logger)(nil)

// sink is the state shared by a logger and every logger derived from it.
type sink struct {
	mu      sync.RWMutex
	verbose bool
	output  io.Writer
}

// Logger writes levelled lines to a shared sink.
// Debug, Info and Warn are only written in verbose mode; Error always is.
type Logger struct {
	sink      *sink
	component string
}

// New creates a logger writing to w.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{sink: &sink{verbose: verbose, output: w}}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, false)
}

var defaultLogger = New(os.Stderr, false)

// Default returns the process-wide logger configured by the CLI flags.
func Default() *Logger {
	return defaultLogger
}

// With returns a logger that tags lines with the component name.
// The derived logger shares verbosity and output with its parent.
func (l *Logger) With(component string) *Logger {
	return &Logger{sink: l.sink, component: component}
}

// SetVerbose enables or disables verbose logging.
func (l *Logger) SetVerbose(v bool) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func (l *Logger) IsVerbose() bool {
	l.sink.mu.RLock()
	defer l.sink.mu.RUnlock()
	return l.sink.verbose
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output = w
}

func (l *Logger) write(always bool, level, format string, args ...any) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if !always && !l.sink.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		msg = l.component + ": " + msg
	}
	fmt.Fprintf(l.sink.output, "[%s] %s\n", level, msg)
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.write(false, "DEBUG", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	l.write(false, "INFO", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func (l *Logger) Warn(format string, args ...any) {
	l.write(false, "WARN", format, args...)
}

// Error prints an error message regardless of verbosity.
func (l *Logger) Error(format string, args ...any) {
	l.write(true, "ERROR", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func (l *Logger) Section(name string) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.verbose {
		fmt.Fprintf(l.sink.output, "\n=== %s ===\n", name)
	}
}

// Report implements driven.StatusReporter.
// Failures are written as warnings, everything else at info level.
func (l *Logger) Report(event domain.IngestionEvent) {
	if event.Err != nil {
		l.Warn("%s [%s] %s: %v", event.Path, event.State, event.Message, event.Err)
		return
	}
	l.Info("%s [%s] %s", event.Path, event.State, event.Message)
}

// SetVerbose enables or disables verbose logging on the default logger.
func SetVerbose(v bool) { defaultLogger.SetVerbose(v) }

// IsVerbose returns true if verbose mode is enabled on the default logger.
func IsVerbose() bool { return defaultLogger.IsVerbose() }

// SetOutput sets the output writer for the default logger.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) { defaultLogger.SetOutput(w) }

// Debug prints a message on the default logger if verbose mode is enabled.
func Debug(format string, args ...any) { defaultLogger.Debug(format, args...) }

// Info prints an informational message on the default logger.
func Info(format string, args ...any) { defaultLogger.Info(format, args...) }

// Warn prints a warning on the default logger.
func Warn(format string, args ...any) { defaultLogger.Warn(format, args...) }

// Error prints an error on the default logger.
func Error(format string, args ...any) { defaultLogger.Error(format, args...) }

// Section prints a section header on the default logger.
func Section(name string) { defaultLogger.Section(name) }
