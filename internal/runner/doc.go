// Package runner starts and awaits the wrapped command.
//
// dotlock holds the lock for the whole life of the child: the child is
// awaited rather than exec-replaced, which is what lets the lock be
// released on the child's behalf afterwards. Standard input, output and
// error pass straight through, the search path can be restored from a
// saved value for the child only, and termination signals received while
// the child runs are forwarded to it instead of killing the wrapper.
//
// Exit codes follow the shell wrapper conventions: the child's own code
// when it ran, 128 plus the signal number when it died by signal, 127
// when the command was not found and 126 when it was found but could not
// be executed.
package runner
