package lock

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	dotlockErrors "github.com/jaysoffian/dotlock/internal/errors"
)

// Prefix is the common leader of every file the link protocol creates in
// the lock directory. The lock file is Prefix + "." + identity; a marker
// file is Prefix + strconv.Itoa(pid) + "." + identity.
const Prefix = "lock.pid"

// Owner is the claim recorded inside a lock file. Only PID participates in
// staleness decisions; hostname and timestamp are for humans reading the
// lock directory after something went wrong.
type Owner struct {
	PID        int
	Hostname   string
	AcquiredAt time.Time
}

// CurrentOwner builds the record for this process.
func CurrentOwner() Owner {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return Owner{
		PID:        os.Getpid(),
		Hostname:   hostname,
		AcquiredAt: time.Now(),
	}
}

// Store is a claim backend. TryClaim is all-or-nothing: true means this
// owner now holds the named lock, false means somebody else does. Owner
// reads back whatever claim is recorded; a missing lock yields an error
// matching fs.ErrNotExist. Discard removes another process's (stale)
// claim; Release removes our own. Path reports where the claim for an
// identity lives, for messages and diagnostics.
type Store interface {
	TryClaim(identity string, owner Owner) (bool, error)
	Owner(identity string) (Owner, error)
	Discard(identity string) error
	Release(identity string) error
	Path(identity string) string
}

// marshalOwner renders the on-disk record: PID, hostname and Unix
// acquisition time, one per line. Line 1 is the contract; the rest is
// diagnostic.
func marshalOwner(o Owner) []byte {
	return []byte(fmt.Sprintf("%d\n%s\n%d\n", o.PID, o.Hostname, o.AcquiredAt.Unix()))
}

// parseOwner decodes a lock-file body. Only the PID line is required;
// records written by older tools that stored a bare PID still parse.
func parseOwner(data []byte) (Owner, error) {
	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 {
		return Owner{}, dotlockErrors.New("empty lock file")
	}

	pidStr := strings.TrimSpace(lines[0])
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return Owner{}, dotlockErrors.Errorf("invalid PID %q in lock file", pidStr)
	}

	owner := Owner{PID: pid}

	if len(lines) > 1 {
		owner.Hostname = strings.TrimSpace(lines[1])
	}
	if len(lines) > 2 {
		if unixTime, err := strconv.ParseInt(strings.TrimSpace(lines[2]), 10, 64); err == nil {
			owner.AcquiredAt = time.Unix(unixTime, 0)
		}
	}

	return owner, nil
}

// readOwner loads and parses the lock file at path. A missing file comes
// back as an error wrapping fs.ErrNotExist so callers can tell "nobody
// holds this" apart from "cannot read the record".
func readOwner(path string) (Owner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if dotlockErrors.Is(err, fs.ErrNotExist) {
			return Owner{}, dotlockErrors.Wrapf(fs.ErrNotExist, "lock file %s", path)
		}
		return Owner{}, dotlockErrors.Wrap(err, "failed to read lock file")
	}

	return parseOwner(data)
}
