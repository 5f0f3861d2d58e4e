// Package dotlock runs a command under a single-host mutual exclusion lock
//
// dotlock guarantees that at most one instance of a named command runs on a
// host at a time. It is built for cron jobs, backup scripts, queue drains,
// and any other periodic task where a slow run must not be joined by the
// next scheduled one. The lock lives on the filesystem, survives no longer
// than the process that holds it needs it to, and is detected and cleared
// automatically when its holder dies without cleaning up.
//
// A second invocation while the lock is held is not an error: it reports
// that another instance is running and exits successfully, which keeps cron
// from mailing a failure every time a job is simply still busy.
//
// # Quick Start
//
//	# Run a backup so overlapping cron fires cannot collide
//	dotlock backup.sh -v /data
//
//	# Same job from two terminals: the second exits immediately
//	dotlock -name nightly sleep 300
//	dotlock -name nightly sleep 300   # "another instance of nightly is already running"
//
// # Key Features
//
//   - Portable Locking: Hard-link based dot-locking that is atomic even on
//     filesystems where O_EXCL is not, with a flock(2) backend as an option
//   - Stale Lock Recovery: Locks left behind by dead processes are detected
//     with a signal 0 liveness probe and removed
//   - Exit Status Pass-Through: The wrapped command's exit status becomes
//     dotlock's exit status, including 128+N for death by signal
//   - Signal Safety: Termination signals are deferred while the lock is
//     being taken and forwarded to the command once it runs
//
// # Module Structure
//
// The module is organized into these packages:
//
//   - cmd/dotlock: Command-line interface
//   - internal/lock: Lock acquisition, stale detection, and release
//   - internal/proc: Process liveness probing and signal holding
//   - internal/runner: Wrapped command execution and status propagation
//   - internal/config: Configuration and flag parsing
//   - internal/logger: Logging facilities
//   - internal/errors: Error handling utilities
//   - internal/constants: Exit codes and fixed values
//
// # Common Configuration Options
//
//	# Name the lock explicitly instead of using the command basename
//	dotlock -name nightly-backup backup.sh /data
//
//	# Keep lock files somewhere other than the temp directory
//	dotlock -dir /var/lock/myapp backup.sh
//
//	# Use kernel flock(2) locks instead of hard links
//	dotlock -backend flock backup.sh
//
//	# Restore a saved PATH before running the command
//	SAVED_PATH=/usr/local/bin:/usr/bin dotlock backup.sh
//
// Every flag has an environment variable equivalent (LOCK_NAME, LOCK_DIR,
// LOCK_BACKEND, VERBOSE, DEBUG, LOG_FILE) so dotlock can be configured from
// crontab lines without quoting flags.
//
// # Exit Status
//
// dotlock distinguishes "the command failed" from "dotlock failed":
//
//   - The wrapped command's own exit status, when it ran
//   - 0 when another live instance holds the lock, or a stale lock was cleared
//   - 126 when the command was found but could not be executed
//   - 127 when the command was not found
//   - 128+N when the command was killed by signal N
//   - 1 when dotlock itself failed
//
// # Design Philosophy
//
// dotlock is designed with the following principles in mind:
//
//   - Conservatism: A lock is never stolen from a process that might be
//     alive; when liveness cannot be determined the holder is presumed live
//   - Cleanliness: Every invocation removes what it created, on success,
//     failure, and signal-interrupted paths alike
//   - Non-Intrusion: The wrapped command keeps its stdin, stdout, stderr,
//     and exit status exactly as if it had been run directly
//   - Transparency: Every decision about a lock is logged and can be explained
//
// # Platform Support
//
// dotlock runs on:
//
//   - macOS (Intel and Apple Silicon)
//   - Linux (x86_64, ARM64)
//   - BSD and other Unix-like systems
//
// Windows is not supported: the lock protocol depends on Unix hard link and
// signal semantics.
//
// # Implementation Notes
//
// The default backend claims a lock by writing a per-process marker file and
// hard-linking it to the shared lock name. Whether the claim won is decided
// by the marker's link count alone, not by the result of the link call, so
// the protocol stays correct on NFS and other filesystems with unreliable
// system call results. The marker is removed in every outcome.
//
// Stale locks are detected by reading the holder's PID from the lock file
// and probing it with signal 0. A dead holder's lock is removed, and the
// run reports what happened rather than retrying, so the operator sees
// every recovery.
package dotlock
