package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jaysoffian/dotlock/internal/config"
	"github.com/jaysoffian/dotlock/internal/constants"
	dotlockErrors "github.com/jaysoffian/dotlock/internal/errors"
	"github.com/jaysoffian/dotlock/internal/proc"
)

// newRunConfig returns a finalizable config pointing at a per-test
// lock directory
func newRunConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.New()
	cfg.Dir = t.TempDir()
	cfg.Command = []string{"true"}

	return cfg
}

// TestAppCoreScenarios tests construction and initialization behavior
func TestAppCoreScenarios(t *testing.T) {
	tests := map[string]struct {
		setupFunc    func(t *testing.T) *App
		validateFunc func(t *testing.T, app *App)
	}{
		"NewDefaultApp": {
			setupFunc: func(t *testing.T) *App {
				versionInfo := config.VersionInfo{
					Version: "test",
					Commit:  "test-commit",
					Date:    "test-date",
				}

				app := NewDefaultApp(versionInfo)
				app.exit = func(int) {}

				return app
			},
			validateFunc: func(t *testing.T, app *App) {
				if app.Config.VersionInfo.Version != "test" {
					t.Errorf("Expected Version=test, got %s", app.Config.VersionInfo.Version)
				}
				if app.Config.VersionInfo.Commit != "test-commit" {
					t.Errorf("Expected Commit=test-commit, got %s", app.Config.VersionInfo.Commit)
				}
				if app.Config.VersionInfo.Date != "test-date" {
					t.Errorf("Expected Date=test-date, got %s", app.Config.VersionInfo.Date)
				}

				if app.Stdout == nil {
					t.Error("Expected Stdout to be set, got nil")
				}
				if app.Stderr == nil {
					t.Error("Expected Stderr to be set, got nil")
				}
				if app.exit == nil {
					t.Error("Expected exit to be set, got nil")
				}
			},
		},
		"NewAppWithMinimalOptions": {
			setupFunc: func(t *testing.T) *App {
				// Only provide the required Config parameter
				return NewApp(AppOptions{
					Config: newRunConfig(t),
				})
			},
			validateFunc: func(t *testing.T, app *App) {
				if app.Stdout == nil {
					t.Error("Expected Stdout to have default value (os.Stdout)")
				}
				if app.Stderr == nil {
					t.Error("Expected Stderr to have default value (os.Stderr)")
				}
				if app.exit == nil {
					t.Error("Expected exit to have default value (os.Exit)")
				}
			},
		},
		"AppShowVersion": {
			setupFunc: func(t *testing.T) *App {
				cfg := newRunConfig(t)
				cfg.VersionInfo = config.VersionInfo{
					Version: "test",
					Commit:  "abc123",
					Date:    "2023-01-01",
				}

				return NewApp(AppOptions{
					Config: cfg,
					Exit:   func(int) {},
				})
			},
			validateFunc: func(t *testing.T, app *App) {
				var stdout bytes.Buffer
				app.Stdout = &stdout

				app.ShowVersion()

				expected := "dotlock test (abc123) built on 2023-01-01\n"
				if stdout.String() != expected {
					t.Errorf("Expected output %q, got %q", expected, stdout.String())
				}
			},
		},
		"InitializeFillsDefaults": {
			setupFunc: func(t *testing.T) *App {
				return NewApp(AppOptions{
					Config: newRunConfig(t),
					Exit:   func(int) {},
				})
			},
			validateFunc: func(t *testing.T, app *App) {
				if err := app.Initialize(); err != nil {
					t.Fatalf("Initialize failed: %v", err)
				}

				if app.Logger == nil {
					t.Error("Expected Logger to be initialized")
				}
				if app.Locker == nil {
					t.Fatal("Expected Locker to be initialized")
				}
				if app.Runner == nil {
					t.Error("Expected Runner to be initialized")
				}

				// The lock name defaults to the command basename
				if got := app.Locker.Identity(); got != "true" {
					t.Errorf("Expected lock identity %q, got %q", "true", got)
				}
			},
		},
		"InitializeKeepsProvidedComponents": {
			setupFunc: func(t *testing.T) *App {
				return NewApp(AppOptions{
					Config: newRunConfig(t),
					Logger: &MockLogger{},
					Locker: &MockLocker{},
					Runner: &MockRunner{},
					Exit:   func(int) {},
				})
			},
			validateFunc: func(t *testing.T, app *App) {
				if err := app.Initialize(); err != nil {
					t.Fatalf("Initialize failed: %v", err)
				}

				if _, ok := app.Logger.(*MockLogger); !ok {
					t.Errorf("Expected provided Logger to survive Initialize, got %T", app.Logger)
				}
				if _, ok := app.Locker.(*MockLocker); !ok {
					t.Errorf("Expected provided Locker to survive Initialize, got %T", app.Locker)
				}
				if _, ok := app.Runner.(*MockRunner); !ok {
					t.Errorf("Expected provided Runner to survive Initialize, got %T", app.Runner)
				}
			},
		},
		"InitializeRejectsMissingCommand": {
			setupFunc: func(t *testing.T) *App {
				cfg := config.New()
				cfg.Dir = t.TempDir()

				return NewApp(AppOptions{
					Config: cfg,
					Exit:   func(int) {},
				})
			},
			validateFunc: func(t *testing.T, app *App) {
				err := app.Initialize()
				if err == nil {
					t.Fatal("Expected Initialize to fail without a command")
				}
				if !dotlockErrors.Is(err, dotlockErrors.ErrInvalidConfiguration) {
					t.Errorf("Expected ErrInvalidConfiguration, got: %v", err)
				}
			},
		},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			app := test.setupFunc(t)
			test.validateFunc(t, app)
		})
	}
}

// TestNewAppRequiresConfig verifies that construction without a config
// is a programming error, not a recoverable one
func TestNewAppRequiresConfig(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected NewApp to panic without a Config")
		}
	}()

	NewApp(AppOptions{})
}

// TestNewStoreBackendSelection tests that the configured backend picks
// the matching claim store
func TestNewStoreBackendSelection(t *testing.T) {
	tests := map[string]struct {
		backend string
		want    string
	}{
		"LinkBackend":  {backend: config.BackendLink, want: "*lock.LinkStore"},
		"FlockBackend": {backend: config.BackendFlock, want: "*lock.FlockStore"},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			cfg := newRunConfig(t)
			cfg.Backend = test.backend

			app := NewApp(AppOptions{
				Config: cfg,
				Exit:   func(int) {},
			})

			if got := fmt.Sprintf("%T", app.newStore()); got != test.want {
				t.Errorf("Expected store type %s, got %s", test.want, got)
			}
		})
	}
}

// TestRunExecutesCommandUnderLock tests the ordinary path: acquire,
// run, release
func TestRunExecutesCommandUnderLock(t *testing.T) {
	mockLocker := &MockLocker{Name: "myjob"}
	mockRunner := &MockRunner{Code: 0}
	mockLogger := &MockLogger{}

	app := NewApp(AppOptions{
		Config: newRunConfig(t),
		Logger: mockLogger,
		Locker: mockLocker,
		Runner: mockRunner,
		Exit:   func(int) {},
	})

	code, err := app.Run(context.Background())

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if code != constants.ExitOK {
		t.Errorf("Expected exit code %d, got %d", constants.ExitOK, code)
	}

	if !mockLocker.AcquireCalled {
		t.Error("Expected Acquire to be called")
	}
	if !mockRunner.RunCalled {
		t.Error("Expected the command to run")
	}
	if len(mockRunner.Argv) != 1 || mockRunner.Argv[0] != "true" {
		t.Errorf("Expected command argv [true], got %v", mockRunner.Argv)
	}
	if !mockLocker.Released {
		t.Error("Expected the lock to be released after the command")
	}
	if !mockLogger.CloseCalled {
		t.Error("Expected the logger to be closed")
	}
	if !strings.Contains(mockLogger.LastMessage, "command exited") {
		t.Errorf("Expected final log message about command exit, got: %s", mockLogger.LastMessage)
	}
}

// TestRunPropagatesCommandStatus tests that the wrapped command's exit
// status passes through untouched
func TestRunPropagatesCommandStatus(t *testing.T) {
	tests := map[string]struct {
		runnerCode int
		runnerErr  error
		wantCode   int
		wantErr    bool
	}{
		"CleanExit":     {runnerCode: 0, wantCode: 0},
		"FailureStatus": {runnerCode: 7, wantCode: 7},
		"SignalDeath":   {runnerCode: 143, wantCode: 143},
		"StartFailure": {
			runnerCode: constants.ExitNotFound,
			runnerErr:  dotlockErrors.NewCommandError("no-such-cmd", nil, fmt.Errorf("not found")),
			wantCode:   constants.ExitNotFound,
			wantErr:    true,
		},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			mockLocker := &MockLocker{}
			mockRunner := &MockRunner{Code: test.runnerCode, RunErr: test.runnerErr}

			app := NewApp(AppOptions{
				Config: newRunConfig(t),
				Logger: &MockLogger{},
				Locker: mockLocker,
				Runner: mockRunner,
				Exit:   func(int) {},
			})

			code, err := app.Run(context.Background())

			if code != test.wantCode {
				t.Errorf("Expected exit code %d, got %d", test.wantCode, code)
			}
			if test.wantErr && err == nil {
				t.Error("Expected an error, got nil")
			}
			if !test.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}

			// The lock is released whether the command succeeded or not
			if !mockLocker.Released {
				t.Error("Expected the lock to be released")
			}
		})
	}
}

// TestRunLockOutcomes tests the exit contract for each way an
// acquisition can end without the lock being won
func TestRunLockOutcomes(t *testing.T) {
	tests := map[string]struct {
		acquireErr     error
		wantCode       int
		wantErr        bool
		wantInfoToUser bool
		wantWarnToUser bool
		wantMessage    string
	}{
		"BusyWithHolderPid": {
			acquireErr:     dotlockErrors.NewLockError("/tmp/lock.pid.myjob", 4242, dotlockErrors.ErrAlreadyRunning),
			wantCode:       constants.ExitOK,
			wantInfoToUser: true,
			wantMessage:    "another instance of myjob is already running (pid 4242)",
		},
		"BusyWithoutHolderPid": {
			acquireErr:     dotlockErrors.Wrap(dotlockErrors.ErrAlreadyRunning, "held by unidentified process"),
			wantCode:       constants.ExitOK,
			wantInfoToUser: true,
			wantMessage:    "another instance of myjob is already running",
		},
		"StaleLockCleared": {
			acquireErr:     dotlockErrors.NewLockError("/tmp/lock.pid.myjob", 4242, dotlockErrors.ErrStaleLock),
			wantCode:       constants.ExitOK,
			wantWarnToUser: true,
			wantMessage:    "removing stale lock /tmp/lock.pid.myjob (pid 4242 is dead); re-run to proceed",
		},
		"StaleLockAlreadyGone": {
			acquireErr:     dotlockErrors.Wrap(dotlockErrors.ErrStaleLock, "lock was released while being inspected"),
			wantCode:       constants.ExitOK,
			wantWarnToUser: true,
			wantMessage:    "stale lock /tmp/lock.pid.myjob was already gone; re-run to proceed",
		},
		"UnrecoverableFailure": {
			acquireErr: dotlockErrors.Wrap(dotlockErrors.ErrLockAcquisitionFailure, "creating marker"),
			wantCode:   constants.ExitFailure,
			wantErr:    true,
		},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			mockLocker := &MockLocker{
				AcquireErr: test.acquireErr,
				Name:       "myjob",
				File:       "/tmp/lock.pid.myjob",
			}
			mockRunner := &MockRunner{}
			mockLogger := &MockLogger{}

			app := NewApp(AppOptions{
				Config: newRunConfig(t),
				Logger: mockLogger,
				Locker: mockLocker,
				Runner: mockRunner,
				Exit:   func(int) {},
			})

			code, err := app.Run(context.Background())

			if code != test.wantCode {
				t.Errorf("Expected exit code %d, got %d", test.wantCode, code)
			}
			if test.wantErr && err == nil {
				t.Error("Expected an error, got nil")
			}
			if !test.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}

			if mockRunner.RunCalled {
				t.Error("Expected the command not to run without the lock")
			}

			if mockLogger.InfoToUserCalled != test.wantInfoToUser {
				t.Errorf("Expected InfoToUserCalled=%v, got %v", test.wantInfoToUser, mockLogger.InfoToUserCalled)
			}
			if mockLogger.WarningToUserCalled != test.wantWarnToUser {
				t.Errorf("Expected WarningToUserCalled=%v, got %v", test.wantWarnToUser, mockLogger.WarningToUserCalled)
			}
			if test.wantMessage != "" && mockLogger.LastMessage != test.wantMessage {
				t.Errorf("Expected message %q, got %q", test.wantMessage, mockLogger.LastMessage)
			}
		})
	}
}

// TestRunVersionFlag tests that -version prints and exits without
// touching the lock
func TestRunVersionFlag(t *testing.T) {
	var stdout bytes.Buffer
	mockLocker := &MockLocker{}

	cfg := config.New()
	cfg.Version = true
	cfg.VersionInfo = config.VersionInfo{
		Version: "1.2.3",
		Commit:  "abc123",
		Date:    "2023-01-01",
	}

	app := NewApp(AppOptions{
		Config: cfg,
		Logger: &MockLogger{},
		Locker: mockLocker,
		Runner: &MockRunner{},
		Stdout: &stdout,
		Exit:   func(int) {},
	})

	code, err := app.Run(context.Background())

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if code != constants.ExitOK {
		t.Errorf("Expected exit code %d, got %d", constants.ExitOK, code)
	}

	expected := "dotlock 1.2.3 (abc123) built on 2023-01-01\n"
	if stdout.String() != expected {
		t.Errorf("Expected output %q, got %q", expected, stdout.String())
	}

	if mockLocker.AcquireCalled {
		t.Error("Expected the lock to be left alone for -version")
	}
}

// TestRunConfigurationError tests that an unusable configuration is a
// plain failure
func TestRunConfigurationError(t *testing.T) {
	cfg := config.New()
	cfg.Dir = t.TempDir()
	// No command to run

	app := NewApp(AppOptions{
		Config: cfg,
		Exit:   func(int) {},
	})

	code, err := app.Run(context.Background())

	if err == nil {
		t.Fatal("Expected Run to fail without a command")
	}
	if !dotlockErrors.Is(err, dotlockErrors.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got: %v", err)
	}
	if code != constants.ExitFailure {
		t.Errorf("Expected exit code %d, got %d", constants.ExitFailure, code)
	}
}

// TestRunHonorsDeferredSignal tests that a termination signal caught
// during the acquisition window ends the run before the command starts
func TestRunHonorsDeferredSignal(t *testing.T) {
	// Both holds hear the same delivery, so the probe shows when the
	// signal has reached the app's channel too
	hold := proc.Hold()
	defer hold.Cancel()
	probe := proc.Hold()
	defer probe.Cancel()

	mockLocker := &MockLocker{}
	mockRunner := &MockRunner{}
	mockLogger := &MockLogger{}

	app := NewApp(AppOptions{
		Config: newRunConfig(t),
		Logger: mockLogger,
		Locker: mockLocker,
		Runner: mockRunner,
		Exit:   func(int) {},
	})
	app.Signals = hold

	if err := unix.Kill(os.Getpid(), unix.SIGTERM); err != nil {
		t.Fatalf("Failed to signal self: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for probe.Pending() == nil {
		if time.Now().After(deadline) {
			t.Fatal("Signal was not delivered in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	code, err := app.Run(context.Background())

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if want := constants.ExitSignalBase + int(unix.SIGTERM); code != want {
		t.Errorf("Expected exit code %d, got %d", want, code)
	}

	if mockRunner.RunCalled {
		t.Error("Expected the command not to run after a termination signal")
	}
	if !mockLocker.Released {
		t.Error("Expected the lock to be released on the signal path")
	}
	if !mockLogger.InfoToUserCalled || !strings.Contains(mockLogger.LastMessage, "exiting on") {
		t.Errorf("Expected a user-visible signal message, got: %s", mockLogger.LastMessage)
	}
}

// TestRunReportsCleanupFailure tests that a failed release after a
// successful run is surfaced without changing the command's status
func TestRunReportsCleanupFailure(t *testing.T) {
	mockLocker := &MockLocker{ReleaseErr: fmt.Errorf("unlink failed")}
	mockLogger := &MockLogger{}

	app := NewTestApp()
	app = WithMockLocker(app, mockLocker)
	app = WithMockRunner(app, &MockRunner{})
	app = WithMockLogger(app, mockLogger)

	var stderr bytes.Buffer
	app.Stderr = &stderr
	app.Config.Dir = t.TempDir()
	app.Config.Command = []string{"true"}

	code, err := app.Run(context.Background())

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if code != constants.ExitOK {
		t.Errorf("Expected exit code %d, got %d", constants.ExitOK, code)
	}

	if !mockLogger.ErrorCalled {
		t.Error("Expected the release failure to be logged")
	}
	if !strings.Contains(stderr.String(), "Error during cleanup") {
		t.Errorf("Expected cleanup failure on stderr, got: %s", stderr.String())
	}
}

// TestCloseOutcomes provides coverage for the Close method
func TestCloseOutcomes(t *testing.T) {
	t.Run("All components nil", func(t *testing.T) {
		app := NewApp(AppOptions{
			Config: newRunConfig(t),
			Exit:   func(int) {},
		})

		if err := app.Close(); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
	})

	t.Run("Clean close", func(t *testing.T) {
		mockLocker := &MockLocker{}
		mockLogger := &MockLogger{}

		app := NewApp(AppOptions{
			Config: newRunConfig(t),
			Locker: mockLocker,
			Logger: mockLogger,
			Exit:   func(int) {},
		})

		if err := app.Close(); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if !mockLocker.Released {
			t.Error("Expected Release to be called")
		}
		if !mockLogger.CloseCalled {
			t.Error("Expected the logger to be closed")
		}
	})

	t.Run("Release error with logger", func(t *testing.T) {
		mockLocker := &MockLocker{ReleaseErr: fmt.Errorf("test error")}
		mockLogger := &MockLogger{}

		app := NewApp(AppOptions{
			Config: newRunConfig(t),
			Locker: mockLocker,
			Logger: mockLogger,
			Exit:   func(int) {},
		})

		if err := app.Close(); err == nil {
			t.Error("Expected Close to report the release failure")
		}
		if !mockLogger.ErrorCalled {
			t.Error("Expected the failure to be logged")
		}
		if !strings.Contains(mockLogger.LastMessage, "Failed to release lock during cleanup") {
			t.Errorf("Expected release failure message, got: %s", mockLogger.LastMessage)
		}
	})

	t.Run("Release error without logger", func(t *testing.T) {
		mockLocker := &MockLocker{ReleaseErr: fmt.Errorf("test error")}
		var stderr bytes.Buffer

		app := NewApp(AppOptions{
			Config: newRunConfig(t),
			Locker: mockLocker,
			Stderr: &stderr,
			Exit:   func(int) {},
		})

		if err := app.Close(); err == nil {
			t.Error("Expected Close to report the release failure")
		}
		if !strings.Contains(stderr.String(), "Failed to release lock during cleanup: test error") {
			t.Errorf("Expected release failure on stderr, got: %s", stderr.String())
		}
	})

	t.Run("Logger close error", func(t *testing.T) {
		mockLogger := &MockLogger{CloseErr: fmt.Errorf("sync failed")}
		var stderr bytes.Buffer

		app := NewApp(AppOptions{
			Config: newRunConfig(t),
			Logger: mockLogger,
			Stderr: &stderr,
			Exit:   func(int) {},
		})

		if err := app.Close(); err == nil {
			t.Error("Expected Close to report the logger failure")
		}
		if !strings.Contains(stderr.String(), "Failed to close logger") {
			t.Errorf("Expected logger failure on stderr, got: %s", stderr.String())
		}
	})
}

// fakeSignal is an os.Signal that is not a syscall signal
type fakeSignal struct{}

func (fakeSignal) String() string { return "fake" }
func (fakeSignal) Signal()        {}

// TestSignalExitCode tests the shell convention for death by signal
func TestSignalExitCode(t *testing.T) {
	tests := map[string]struct {
		sig  os.Signal
		want int
	}{
		"Terminated":     {sig: unix.SIGTERM, want: 143},
		"Interrupted":    {sig: unix.SIGINT, want: 130},
		"HangUp":         {sig: unix.SIGHUP, want: 129},
		"NotASignalType": {sig: fakeSignal{}, want: constants.ExitFailure},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			if got := signalExitCode(test.sig); got != test.want {
				t.Errorf("Expected exit code %d for %v, got %d", test.want, test.sig, got)
			}
		})
	}
}
