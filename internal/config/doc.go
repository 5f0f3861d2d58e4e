// Package config manages dotlock application configuration.
//
// Configuration flows through three layers, each overriding the one
// before it:
//
//  1. Defaults from New
//  2. Environment variables via LoadFromEnvironment
//  3. Command-line flags via ParseFlags
//
// Finalize then derives whatever is still unset (the lock identity from
// the command, the lock directory from the system temp directory, the log
// file location from the XDG base directories) and validates the result.
//
// # Argument Layout
//
// dotlock is a wrapper: its own flags come first and everything from the
// first non-flag argument onward is the wrapped command, passed through
// untouched. "dotlock -name myjob backup -v /data" locks "myjob" and runs
// "backup -v /data"; the -v belongs to backup, not to dotlock.
//
// # Environment Variables
//
//   - LOCK_NAME: lock identity override
//   - LOCK_DIR: directory holding lock files
//   - LOCK_BACKEND: "link" or "flock"
//   - SAVED_PATH: PATH to restore for the wrapped command
//   - VERBOSE, DEBUG, LOG_FILE: output and logging controls
package config
