package lock

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	dotlockErrors "github.com/jaysoffian/dotlock/internal/errors"
)

// FlockStore claims locks with a kernel advisory lock (flock) on the lock
// file instead of the link protocol. The file carries the same owner
// record; the claim itself lives in the kernel.
//
// A holder that dies without releasing leaves no obstacle here: the
// kernel drops the flock with the process, so the next TryClaim simply
// wins and overwrites the record. The stale-detection path above this
// store only fires for lock files that are present but not flocked by a
// live process.
type FlockStore struct {
	dir string
	fl  *flock.Flock
}

// NewFlockStore returns a FlockStore placing its files in dir.
func NewFlockStore(dir string) *FlockStore {
	return &FlockStore{dir: dir}
}

// Path returns the shared lock file path for identity.
func (s *FlockStore) Path(identity string) string {
	return filepath.Join(s.dir, Prefix+"."+identity)
}

// TryClaim takes a non-blocking exclusive flock on the lock file and, on
// success, records the owner in it. The flock handle is kept open for the
// lifetime of the claim.
func (s *FlockStore) TryClaim(identity string, owner Owner) (bool, error) {
	fl := flock.New(s.Path(identity))

	locked, err := fl.TryLock()
	if err != nil {
		return false, dotlockErrors.Wrap(err, "failed to probe lock file")
	}
	if !locked {
		return false, nil
	}

	if err := os.WriteFile(s.Path(identity), marshalOwner(owner), 0644); err != nil {
		_ = fl.Unlock()
		return false, dotlockErrors.Wrap(err, "failed to record lock owner")
	}

	s.fl = fl
	return true, nil
}

// Owner reads the claim recorded in the lock file.
func (s *FlockStore) Owner(identity string) (Owner, error) {
	return readOwner(s.Path(identity))
}

// Discard removes the lock file regardless of who wrote it.
func (s *FlockStore) Discard(identity string) error {
	if err := os.Remove(s.Path(identity)); err != nil && !dotlockErrors.Is(err, fs.ErrNotExist) {
		return dotlockErrors.Wrap(err, "failed to remove lock file")
	}
	return nil
}

// Release drops the flock and removes the lock file so no artifact
// remains after a clean exit.
func (s *FlockStore) Release(identity string) error {
	if s.fl != nil {
		if err := s.fl.Unlock(); err != nil {
			return dotlockErrors.Wrap(err, "failed to unlock lock file")
		}
		s.fl = nil
	}

	if err := os.Remove(s.Path(identity)); err != nil && !dotlockErrors.Is(err, fs.ErrNotExist) {
		return dotlockErrors.Wrap(err, "failed to remove lock file")
	}

	return nil
}
