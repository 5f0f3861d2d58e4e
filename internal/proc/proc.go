package proc

import (
	"golang.org/x/sys/unix"
)

// Alive reports whether a process with the given PID currently exists.
//
// The probe is signal 0: nothing is delivered, the kernel only checks that
// the target can be addressed. EPERM still counts as alive since the
// process exists under another user. Only ESRCH proves the PID is free.
func Alive(pid int) bool {
	if pid <= 0 {
		// 0 and negatives address process groups, never probe those
		return false
	}

	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return err != unix.ESRCH
}

// KillProber is the production liveness prober handed to the lock manager.
type KillProber struct{}

// Alive implements the probe by delegating to the package-level function.
func (KillProber) Alive(pid int) bool {
	return Alive(pid)
}
