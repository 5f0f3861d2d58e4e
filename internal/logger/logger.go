package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/term"
)

// Logger defines the common logging interface used throughout the application.
// It separates internal (debug) logs from user-facing messages so that
// components can report status without knowing where either stream goes.
//
// Because dotlock wraps another program, every user-facing method writes to
// standard error by default: standard output belongs to the wrapped command.
type Logger interface {
	// Info logs an informational message for debugging purposes.
	// Written only to the log file, and only when debug logging is enabled.
	Info(format string, args ...interface{})

	// Warning logs a warning for debugging purposes. Shown to the user
	// only in verbose mode.
	Warning(format string, args ...interface{})

	// Error logs an error. Always shown to the user.
	Error(format string, args ...interface{})

	// InfoToUser logs an informational message intended for users,
	// regardless of verbosity settings.
	InfoToUser(format string, args ...interface{})

	// WarningToUser logs a warning intended for users, regardless of
	// verbosity settings.
	WarningToUser(format string, args ...interface{})

	// Success logs a success message to the user.
	Success(format string, args ...interface{})

	// StatusMessage logs an undecorated status line to the user.
	StatusMessage(format string, args ...interface{})

	// Close flushes and closes any open log file handles.
	Close() error
}

// DefaultLogger provides structured logging capability and implements the Logger interface
type DefaultLogger struct {
	mu       sync.Mutex
	logger   *slog.Logger
	enabled  bool
	logFile  string
	verbose  bool
	userOut  io.Writer
	errOut   io.Writer
	file     *os.File // Store file handle for closing
	decorate bool
}

// New creates a new Logger instance. User-facing output goes to stderr so
// that the wrapped command's stdout stays clean.
func New(enabled bool, logFile string, verbose bool) Logger {
	return NewWithOutput(enabled, logFile, verbose, os.Stderr, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers
func NewWithOutput(enabled bool, logFile string, verbose bool, userOut, errOut io.Writer) *DefaultLogger {
	var logger *slog.Logger

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var file *os.File

	if enabled {
		logDir := filepath.Dir(logFile)
		if logDir != "." {
			err := os.MkdirAll(logDir, 0755)
			if err != nil {
				_, _ = fmt.Fprintf(errOut, "Failed to create log directory: %v\n", err)
			}
		}

		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			file = f
			fileHandler := slog.NewTextHandler(f, opts)
			logger = slog.New(fileHandler)

			logger.Info("dotlock debug logging started")
		} else {
			// Fallback to standard logger
			logger = slog.New(slog.NewTextHandler(errOut, opts))
			_, _ = fmt.Fprintf(errOut, "Failed to open log file: %v, using stderr instead\n", err)
		}
	} else {
		// Setup non-file logger
		logger = slog.New(slog.NewTextHandler(io.Discard, opts))
	}

	return &DefaultLogger{
		logger:   logger,
		enabled:  enabled,
		logFile:  logFile,
		verbose:  verbose,
		userOut:  userOut,
		errOut:   errOut,
		file:     file,
		decorate: isTerminal(userOut),
	}
}

// isTerminal reports whether w is an interactive terminal. Decorated output
// (emoji prefixes) is reserved for terminals so that captured or piped
// stderr stays plain.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// emit writes a user-facing line, decorated only on terminals
func (l *DefaultLogger) emit(w io.Writer, emoji, msg string) {
	if l.decorate && emoji != "" {
		_, _ = fmt.Fprintf(w, "%s %s\n", emoji, msg)
		return
	}
	_, _ = fmt.Fprintf(w, "%s\n", msg)
}

// Info logs an informational message (file only)
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}

	msg := fmt.Sprintf(format, args...)
	l.logger.Info(msg)
}

// InfoToUser logs an informational message to both file and the user stream
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)

	if l.enabled {
		l.logger.Info(msg)
	}

	l.emit(l.userOut, "ℹ️ ", msg)
}

// Success logs a success message to both file and the user stream
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)

	if l.enabled {
		l.logger.Info(msg)
	}

	l.emit(l.userOut, "✅", msg)
}

// Warning logs a warning message
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)

	if l.enabled {
		l.logger.Warn(msg)
	}

	// Shown to the user only in verbose mode, whether or not file
	// logging is enabled
	if l.verbose {
		l.emit(l.userOut, "⚠️ ", msg)
	}
}

// WarningToUser logs a warning message to both file and the user stream
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)

	if l.enabled {
		l.logger.Warn(msg)
	}

	l.emit(l.userOut, "⚠️ ", msg)
}

// Error logs an error message
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)

	if l.enabled {
		l.logger.Error(msg)
	}

	// Always show errors to the user regardless of debug status
	l.emit(l.errOut, "❌", msg)
}

// StatusMessage prints a status message to the user stream only (no logging)
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(l.userOut, msg)
}

// Close ensures any buffered data is written and closes open log file
// handles. Closing an already-closed logger is a no-op.
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	// Sync ensures any buffered data is flushed to disk before closing
	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		l.file = nil
		return err
	}

	err := l.file.Close()
	l.file = nil
	return err
}

// SetUserOutput sets a custom writer for user-facing messages only.
// NOTE: This does not affect where structured log messages from slog are directed.
// This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetUserOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.userOut = w
	l.decorate = isTerminal(w)
}

// SetErrorOutput sets a custom writer for error messages only.
// NOTE: This does not affect where structured log messages from slog are directed.
// This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetErrorOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errOut = w
}
