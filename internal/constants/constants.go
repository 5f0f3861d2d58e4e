package constants

// Process exit codes. dotlock's own outcomes use the low codes; whatever the
// wrapped command exits with is propagated untouched, so the high codes
// follow the shell conventions a caller already knows.
const (
	// ExitOK is returned on success, and also on the "lock busy" and
	// "stale lock cleared" paths, neither of which is an error.
	ExitOK = 0

	// ExitFailure is returned when the lock protocol or configuration
	// fails before the wrapped command could be considered.
	ExitFailure = 1

	// ExitNotExecutable is returned when the wrapped command exists but
	// cannot be executed.
	ExitNotExecutable = 126

	// ExitNotFound is returned when the wrapped command cannot be found.
	ExitNotFound = 127

	// ExitSignalBase plus a signal number is returned when the wrapped
	// command was terminated by that signal.
	ExitSignalBase = 128
)

// Program is the canonical binary name, used in user-facing messages.
const Program = "dotlock"
