package runner

import (
	"context"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jaysoffian/dotlock/internal/constants"
	dotlockErrors "github.com/jaysoffian/dotlock/internal/errors"
)

// Runner executes the wrapped command once the lock is held. The child
// inherits the runner's stdio streams untouched; dotlock's own messages
// never travel through them.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Env is the base environment for the child. SavedPath, when set,
	// replaces the child's PATH with it; dotlock's own lookup of the
	// command is not affected.
	Env       []string
	SavedPath string

	// Signals, when non-nil, is drained while the child runs and every
	// received signal is forwarded to it. The lock outlives the child, so
	// shutdown requests go to the child first and dotlock cleans up after
	// its exit.
	Signals <-chan os.Signal

	// LookPath resolves argv[0]. Tests substitute it.
	LookPath func(file string) (string, error)
}

// New returns a Runner wired to the real process environment.
func New() *Runner {
	return &Runner{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Env:      os.Environ(),
		LookPath: exec.LookPath,
	}
}

// Run starts argv[0] with argv[1:] and awaits it. The returned code is
// what the dotlock process should exit with: the child's own exit code, or
// 128 plus the signal number when the child dies by signal, or the shell
// conventions 127 (not found) and 126 (not runnable) when the child never
// starts. The error is non-nil only when the child did not run to
// completion.
func (r *Runner) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return constants.ExitFailure, dotlockErrors.New("no command to run")
	}

	path, err := r.LookPath(argv[0])
	if err != nil {
		return startExitCode(err), dotlockErrors.NewCommandError(argv[0], argv[1:], err)
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = childEnv(r.Env, r.SavedPath)

	// On context cancellation ask the child to stop before the runtime
	// falls back to SIGKILL
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = 10 * time.Second

	if err := cmd.Start(); err != nil {
		return startExitCode(err), dotlockErrors.NewCommandError(argv[0], argv[1:], err)
	}

	waitDone := make(chan struct{})
	if r.Signals != nil {
		go r.forward(cmd, waitDone)
	}

	err = cmd.Wait()
	close(waitDone)

	var exitErr *exec.ExitError
	if dotlockErrors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return constants.ExitSignalBase + int(status.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return constants.ExitFailure, dotlockErrors.NewCommandError(argv[0], argv[1:], err)
	}

	return constants.ExitOK, nil
}

// forward relays termination signals to the running child until the wait
// completes.
func (r *Runner) forward(cmd *exec.Cmd, waitDone <-chan struct{}) {
	for {
		select {
		case sig, ok := <-r.Signals:
			if !ok {
				return
			}
			_ = cmd.Process.Signal(sig)
		case <-waitDone:
			return
		}
	}
}

// startExitCode maps a resolution or start failure to the shell wrapper
// conventions: 127 for a command that does not exist, 126 for one that
// exists but cannot be run.
func startExitCode(err error) int {
	if dotlockErrors.Is(err, exec.ErrNotFound) || dotlockErrors.Is(err, fs.ErrNotExist) {
		return constants.ExitNotFound
	}
	return constants.ExitNotExecutable
}

// childEnv returns base with PATH replaced by savedPath. An empty
// savedPath leaves the environment alone.
func childEnv(base []string, savedPath string) []string {
	if savedPath == "" {
		return base
	}

	env := make([]string, 0, len(base)+1)
	replaced := false
	for _, kv := range base {
		if strings.HasPrefix(kv, "PATH=") {
			if !replaced {
				env = append(env, "PATH="+savedPath)
				replaced = true
			}
			continue
		}
		env = append(env, kv)
	}
	if !replaced {
		env = append(env, "PATH="+savedPath)
	}

	return env
}
