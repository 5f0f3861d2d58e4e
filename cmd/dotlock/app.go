package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/jaysoffian/dotlock/internal/config"
	"github.com/jaysoffian/dotlock/internal/constants"
	internalErrors "github.com/jaysoffian/dotlock/internal/errors"
	"github.com/jaysoffian/dotlock/internal/lock"
	"github.com/jaysoffian/dotlock/internal/logger"
	"github.com/jaysoffian/dotlock/internal/proc"
	"github.com/jaysoffian/dotlock/internal/runner"
)

// Locker manages the mutual-exclusion claim
type Locker interface {
	Acquire() error
	Release() error
	Identity() string
	LockFile() string
}

// CommandRunner executes the wrapped command
type CommandRunner interface {
	Run(ctx context.Context, argv []string) (int, error)
}

// Logger alias to logger.Logger
type Logger = logger.Logger

// AppOptions contains app configuration and dependencies
type AppOptions struct {
	// Required
	Config *config.Config

	// Optional components
	Logger Logger
	Locker Locker
	Runner CommandRunner

	// I/O dependencies
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	Exit func(code int)
}

// App is the main dotlock application
type App struct {
	Config *config.Config
	Logger Logger
	Locker Locker
	Runner CommandRunner

	// Signals is the hold opened by main before any locking step. It may
	// be nil in tests that do not exercise signal behavior.
	Signals *proc.SignalHold

	// I/O streams
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	exit func(code int)
}

// NewDefaultApp creates an App with standard dependencies
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	cfg := config.New()
	cfg.VersionInfo = versionInfo
	cfg.LoadFromEnvironment()

	opts := AppOptions{
		Config: cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Exit:   os.Exit,
	}

	return NewApp(opts)
}

// NewApp creates an App with custom dependencies
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config: opts.Config,
		Logger: opts.Logger,
		Locker: opts.Locker,
		Runner: opts.Runner,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
		exit:   opts.Exit,
	}

	// Set defaults for nil dependencies
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}

	return app
}

// Initialize sets up components not provided during construction
func (a *App) Initialize() error {
	if err := a.Config.Finalize(); err != nil {
		// Config.Finalize() already returns a properly wrapped error, so
		// don't wrap it again if it's already our error type
		if internalErrors.Is(err, internalErrors.ErrInvalidConfiguration) {
			return err
		}
		return internalErrors.Wrap(internalErrors.ErrInvalidConfiguration, err.Error())
	}

	if a.Logger == nil {
		a.Logger = logger.New(a.Config.Debug, a.Config.LogFile, a.Config.Verbose)
	}

	if a.Locker == nil {
		mgr, err := lock.New(a.newStore(), proc.KillProber{}, a.Config.Identity())
		if err != nil {
			return internalErrors.Wrap(err, "failed to initialize lock")
		}
		a.Locker = mgr
	}

	if a.Runner == nil {
		r := runner.New()
		r.Stdout = a.Stdout
		r.Stderr = a.Stderr
		r.SavedPath = a.Config.SavedPath
		if a.Signals != nil {
			r.Signals = a.Signals.Signals()
		}
		a.Runner = r
	}

	return nil
}

// newStore picks the claim backend the configuration asks for
func (a *App) newStore() lock.Store {
	if a.Config.Backend == config.BackendFlock {
		return lock.NewFlockStore(a.Config.Dir)
	}
	return lock.NewLinkStore(a.Config.Dir)
}

// Run executes the application with the given context and returns the
// process exit code. Busy and stale lock outcomes are successes: the
// command does not run, a message says why, and the code is 0.
func (a *App) Run(ctx context.Context) (int, error) {
	if err := a.Initialize(); err != nil {
		return constants.ExitFailure, err
	}

	if a.Config.Version {
		a.ShowVersion()
		return constants.ExitOK, nil
	}

	// Release the lock and flush logs on every path out of here
	defer func() {
		if err := a.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "Error during cleanup: %v\n", err)
		}
	}()

	a.Logger.Info("claiming lock %q in %s", a.Locker.Identity(), a.Config.Dir)

	if err := a.Locker.Acquire(); err != nil {
		return a.reportAcquireOutcome(err)
	}

	a.Logger.Info("lock acquired: %s", a.Locker.LockFile())

	// A termination request queued during the acquisition window is
	// honored here, once releasing cleanly is possible again
	if a.Signals != nil {
		if sig := a.Signals.Pending(); sig != nil {
			a.Logger.InfoToUser("%s: exiting on %v received while locking", constants.Program, sig)
			return signalExitCode(sig), nil
		}
	}

	a.Logger.Info("running %v", a.Config.Command)

	code, err := a.Runner.Run(ctx, a.Config.Command)
	if err != nil {
		return code, err
	}

	a.Logger.Info("command exited with status %d", code)
	return code, nil
}

// reportAcquireOutcome translates a failed acquisition into the exit
// contract: busy and stale are ordinary outcomes reported at exit 0,
// everything else is a failure for the caller to surface.
func (a *App) reportAcquireOutcome(err error) (int, error) {
	var lockErr *internalErrors.LockError
	holderPid := 0
	if internalErrors.As(err, &lockErr) {
		holderPid = lockErr.PID
	}

	switch {
	case internalErrors.Is(err, internalErrors.ErrAlreadyRunning):
		if holderPid > 0 {
			a.Logger.InfoToUser("another instance of %s is already running (pid %d)", a.Locker.Identity(), holderPid)
		} else {
			a.Logger.InfoToUser("another instance of %s is already running", a.Locker.Identity())
		}
		return constants.ExitOK, nil

	case internalErrors.Is(err, internalErrors.ErrStaleLock):
		if holderPid > 0 {
			a.Logger.WarningToUser("removing stale lock %s (pid %d is dead); re-run to proceed", a.Locker.LockFile(), holderPid)
		} else {
			a.Logger.WarningToUser("stale lock %s was already gone; re-run to proceed", a.Locker.LockFile())
		}
		return constants.ExitOK, nil

	default:
		return constants.ExitFailure, err
	}
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "%s %s (%s) built on %s\n",
		constants.Program,
		a.Config.VersionInfo.Version,
		a.Config.VersionInfo.Commit,
		a.Config.VersionInfo.Date)
}

// Close releases resources held by the App
func (a *App) Close() error {
	var errs []error

	// Release the lock if this invocation holds it
	if a.Locker != nil {
		if err := a.Locker.Release(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("Failed to release lock during cleanup: %v", err)
			} else {
				_, _ = fmt.Fprintf(a.Stderr, "Failed to release lock during cleanup: %v\n", err)
			}
			errs = append(errs, err)
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "Failed to close logger: %v\n", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// signalExitCode reports a death-by-signal the way the shell would
func signalExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return constants.ExitSignalBase + int(s)
	}
	return constants.ExitFailure
}
