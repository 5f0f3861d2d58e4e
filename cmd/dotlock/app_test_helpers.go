package main

import (
	"context"
	"fmt"

	"github.com/jaysoffian/dotlock/internal/config"
)

// MockLocker implements the Locker interface for testing
type MockLocker struct {
	AcquireErr    error
	ReleaseErr    error
	AcquireCalled bool
	ReleaseCalled bool
	Released      bool
	ReleaseCount  int
	Name          string
	File          string
}

func (m *MockLocker) Acquire() error {
	m.AcquireCalled = true
	return m.AcquireErr
}

func (m *MockLocker) Release() error {
	m.ReleaseCalled = true
	m.Released = true
	m.ReleaseCount++
	return m.ReleaseErr
}

func (m *MockLocker) Identity() string {
	if m.Name == "" {
		return "mock"
	}
	return m.Name
}

func (m *MockLocker) LockFile() string {
	if m.File == "" {
		return "/tmp/lock.pid.mock"
	}
	return m.File
}

// MockRunner implements the CommandRunner interface for testing
type MockRunner struct {
	Code      int
	RunErr    error
	RunCalled bool
	Argv      []string
}

func (m *MockRunner) Run(ctx context.Context, argv []string) (int, error) {
	m.RunCalled = true
	m.Argv = append([]string(nil), argv...)
	return m.Code, m.RunErr
}

// MockLogger implements the Logger interface for testing
type MockLogger struct {
	InfoCalled          bool
	InfoToUserCalled    bool
	WarningCalled       bool
	WarningToUserCalled bool
	ErrorCalled         bool
	SuccessCalled       bool
	StatusCalled        bool
	CloseCalled         bool
	CloseErr            error
	LastMessage         string
}

// Standard logging methods

// Info logs an info message
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.InfoCalled = true
	m.LastMessage = fmt.Sprintf(format, args...)
}

// Warning logs a warning message
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.WarningCalled = true
	m.LastMessage = fmt.Sprintf(format, args...)
}

// Error logs an error message
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.ErrorCalled = true
	m.LastMessage = fmt.Sprintf(format, args...)
}

// User-facing logging methods

// InfoToUser logs an info message to the user
func (m *MockLogger) InfoToUser(format string, args ...interface{}) {
	m.InfoToUserCalled = true
	m.LastMessage = fmt.Sprintf(format, args...)
}

// WarningToUser logs a warning message to the user
func (m *MockLogger) WarningToUser(format string, args ...interface{}) {
	m.WarningToUserCalled = true
	m.LastMessage = fmt.Sprintf(format, args...)
}

// Success logs a success message
func (m *MockLogger) Success(format string, args ...interface{}) {
	m.SuccessCalled = true
	m.LastMessage = fmt.Sprintf(format, args...)
}

// StatusMessage logs a status message
func (m *MockLogger) StatusMessage(format string, args ...interface{}) {
	m.StatusCalled = true
	m.LastMessage = fmt.Sprintf(format, args...)
}

// Close closes the logger
func (m *MockLogger) Close() error {
	m.CloseCalled = true
	return m.CloseErr
}

// Testing helper functions

// NewTestApp creates a new App with default test settings
func NewTestApp() *App {
	app := NewDefaultApp(config.VersionInfo{})

	app.exit = func(int) {}

	return app
}

// WithMockLocker adds a mock locker to the app
func WithMockLocker(app *App, mockLocker *MockLocker) *App {
	app.Locker = mockLocker
	return app
}

// WithMockRunner adds a mock runner to the app
func WithMockRunner(app *App, mockRunner *MockRunner) *App {
	app.Runner = mockRunner
	return app
}

// WithMockLogger adds a mock logger to the app
func WithMockLogger(app *App, mockLogger Logger) *App {
	app.Logger = mockLogger
	return app
}

// WithExit mocks the exit function
func WithExit(app *App, fn func(int)) *App {
	app.exit = fn
	return app
}
