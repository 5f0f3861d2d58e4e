// Package constants provides application-wide constant values for dotlock.
//
// This package centralizes fixed values that are shared across package
// boundaries, making them easy to find and keep consistent. Today that is
// the process exit-code contract and the program name used in user-facing
// messages.
//
// # Exit Codes
//
// dotlock distinguishes its own outcomes from those of the wrapped command:
//
//   - ExitOK: lock acquired and command ran, or the designed
//     "busy"/"stale lock cleared" outcomes
//   - ExitFailure: configuration or lock-protocol failure
//   - ExitNotFound / ExitNotExecutable: the wrapped command could not be
//     launched (shell conventions 127 and 126)
//   - ExitSignalBase + N: the wrapped command died from signal N
//
// # Usage
//
// The constants in this package can be imported and used directly:
//
//	import "github.com/jaysoffian/dotlock/internal/constants"
//
//	func report(code int) bool {
//	    return code == constants.ExitOK
//	}
package constants
