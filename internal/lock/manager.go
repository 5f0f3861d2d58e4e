package lock

import (
	"io/fs"
	"runtime"

	dotlockErrors "github.com/jaysoffian/dotlock/internal/errors"
)

// Prober answers whether a process with the given PID exists. The manager
// consults it to decide whether a lost claim belongs to a live holder or
// to a corpse.
type Prober interface {
	Alive(pid int) bool
}

// Manager drives one lock acquisition for one identity. It owns the
// busy/stale decision; the mechanics of claiming live in the Store.
//
// A Manager is not safe for concurrent use by multiple goroutines.
// Exclusion across processes is the store's job, not the manager's.
type Manager struct {
	store    Store
	prober   Prober
	identity string
	owner    Owner
	held     bool
}

// New creates a Manager claiming identity through store, attributing the
// claim to the current process.
func New(store Store, prober Prober, identity string) (*Manager, error) {
	if runtime.GOOS == "windows" {
		return nil, dotlockErrors.NewLockError("", 0,
			dotlockErrors.Wrap(dotlockErrors.ErrLockAcquisitionFailure,
				"dotlock currently only supports Unix-like operating systems (Linux, macOS, BSD)"))
	}

	return &Manager{
		store:    store,
		prober:   prober,
		identity: identity,
		owner:    CurrentOwner(),
	}, nil
}

// Acquire makes a single claim attempt. It never blocks and never
// retries. The returned error tells the caller which of the three
// non-holding outcomes happened:
//
//   - wraps ErrAlreadyRunning: a live process holds the lock
//   - wraps ErrStaleLock: the recorded holder is dead; the lock file has
//     been removed, and the caller must re-invoke to actually run
//   - anything else: the claim itself failed and nothing can be assumed
//     about the lock
//
// A nil return means the lock is held and Release must eventually run.
func (m *Manager) Acquire() error {
	if m.held {
		return nil
	}

	won, err := m.store.TryClaim(m.identity, m.owner)
	if err != nil {
		return dotlockErrors.NewLockError(m.LockFile(), 0,
			dotlockErrors.Wrap(err, "failed to acquire lock"))
	}
	if won {
		m.held = true
		return nil
	}

	holder, err := m.store.Owner(m.identity)
	if err != nil {
		if dotlockErrors.Is(err, fs.ErrNotExist) {
			// The holder released between our claim and this read; the
			// lock is free again but this invocation does not retry
			return dotlockErrors.NewLockError(m.LockFile(), 0,
				dotlockErrors.Wrap(dotlockErrors.ErrStaleLock, "lock was released while being inspected"))
		}

		// A lock we cannot attribute is treated as busy, never deleted
		return dotlockErrors.NewLockError(m.LockFile(), 0,
			dotlockErrors.Wrapf(dotlockErrors.ErrAlreadyRunning, "cannot identify the lock holder (%v)", err))
	}

	if m.prober.Alive(holder.PID) {
		return dotlockErrors.NewLockError(m.LockFile(), holder.PID, dotlockErrors.ErrAlreadyRunning)
	}

	if err := m.store.Discard(m.identity); err != nil {
		return dotlockErrors.NewLockError(m.LockFile(), holder.PID,
			dotlockErrors.Wrapf(err, "found stale lock from PID %d, but failed to remove it", holder.PID))
	}

	return dotlockErrors.NewLockError(m.LockFile(), holder.PID, dotlockErrors.ErrStaleLock)
}

// Release gives the lock back. Calling it without holding the lock, or
// calling it twice, is a no-op.
func (m *Manager) Release() error {
	if !m.held {
		return nil
	}

	if err := m.store.Release(m.identity); err != nil {
		return dotlockErrors.NewLockError(m.LockFile(), m.owner.PID,
			dotlockErrors.Wrap(err, "failed to release lock"))
	}

	m.held = false
	return nil
}

// Held reports whether this manager currently holds the lock.
func (m *Manager) Held() bool {
	return m.held
}

// Identity returns the name the lock is scoped to.
func (m *Manager) Identity() string {
	return m.identity
}

// LockFile returns the path of the shared lock file.
func (m *Manager) LockFile() string {
	return m.store.Path(m.identity)
}
