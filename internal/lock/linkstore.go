package lock

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"

	dotlockErrors "github.com/jaysoffian/dotlock/internal/errors"
)

// LinkStore claims locks with the hard-link protocol: write a marker file
// unique to this process, hard-link it to the shared lock name, then read
// the marker's link count. A count of exactly 2 means our link created the
// lock file and nobody else's did. The link count is the only outcome
// consulted; the result of the link call itself is discarded.
//
// The protocol needs no O_EXCL and no flock support from the filesystem,
// only POSIX link semantics, which is what makes it usable on filesystems
// where kernel locking is unreliable.
type LinkStore struct {
	dir string
	pid int
}

// NewLinkStore returns a LinkStore placing its files in dir. Marker files
// are namespaced by the calling process's PID.
func NewLinkStore(dir string) *LinkStore {
	return &LinkStore{
		dir: dir,
		pid: os.Getpid(),
	}
}

// Path returns the shared lock file path for identity.
func (s *LinkStore) Path(identity string) string {
	return filepath.Join(s.dir, Prefix+"."+identity)
}

// markerPath returns this process's temporary marker file for identity.
func (s *LinkStore) markerPath(identity string) string {
	return filepath.Join(s.dir, Prefix+strconv.Itoa(s.pid)+"."+identity)
}

// TryClaim runs one round of the link protocol. The marker file never
// outlives the attempt: it is removed on the win path, the loss path and
// every error path.
func (s *LinkStore) TryClaim(identity string, owner Owner) (bool, error) {
	marker := s.markerPath(identity)

	if err := os.WriteFile(marker, marshalOwner(owner), 0644); err != nil {
		return false, dotlockErrors.Wrap(err, "failed to create marker file")
	}
	defer func() {
		_ = os.Remove(marker)
	}()

	// The link fails whenever the lock name already exists; that failure
	// carries no information the link count does not
	_ = os.Link(marker, s.Path(identity))

	var st unix.Stat_t
	if err := unix.Stat(marker, &st); err != nil {
		return false, dotlockErrors.Wrap(err, "failed to stat marker file")
	}

	return st.Nlink == 2, nil
}

// Owner reads the claim recorded in the lock file.
func (s *LinkStore) Owner(identity string) (Owner, error) {
	return readOwner(s.Path(identity))
}

// Discard removes the lock file regardless of who wrote it. Removing an
// already-missing lock is not an error.
func (s *LinkStore) Discard(identity string) error {
	if err := os.Remove(s.Path(identity)); err != nil && !dotlockErrors.Is(err, fs.ErrNotExist) {
		return dotlockErrors.Wrap(err, "failed to remove lock file")
	}
	return nil
}

// Release removes this process's marker file, normally gone since
// TryClaim, and then the lock file itself. Both removals are idempotent.
func (s *LinkStore) Release(identity string) error {
	if err := os.Remove(s.markerPath(identity)); err != nil && !dotlockErrors.Is(err, fs.ErrNotExist) {
		return dotlockErrors.Wrap(err, "failed to remove marker file")
	}

	if err := os.Remove(s.Path(identity)); err != nil && !dotlockErrors.Is(err, fs.ErrNotExist) {
		return dotlockErrors.Wrap(err, "failed to remove lock file")
	}

	return nil
}
