// Package logger provides logging facilities for the dotlock application.
//
// The package separates two audiences: internal debug logging, written to an
// optional log file through log/slog, and user-facing status messages. Since
// dotlock exists to run another program, its stdout is not its own: all
// user-facing output is written to standard error by default so the wrapped
// command's output stream is never polluted.
//
// # Core Components
//
// - Logger: Interface defining the standardized logging methods
// - DefaultLogger: slog-backed implementation
//
// # Decoration
//
// Messages are prefixed with a small set of emoji markers when, and only
// when, the destination is an interactive terminal (detected with
// golang.org/x/term). Piped or captured output stays plain for easy
// matching in scripts and tests.
//
// # Usage
//
// The Logger interface is typically injected into components that need
// logging capabilities:
//
//	log := logger.New(cfg.Debug, cfg.LogFile, cfg.Verbose)
//	defer log.Close()
//
//	log.Info("derived lock identity %q", identity)
//	log.InfoToUser("another instance of %s is already running", identity)
package logger
