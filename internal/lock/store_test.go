package lock

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	dotlockErrors "github.com/jaysoffian/dotlock/internal/errors"
)

func TestOwnerRecordRoundTrip(t *testing.T) {
	acquired := time.Unix(1724400000, 0)
	in := Owner{PID: 4242, Hostname: "worker-3", AcquiredAt: acquired}

	out, err := parseOwner(marshalOwner(in))
	if err != nil {
		t.Fatalf("Failed to parse marshaled owner: %v", err)
	}

	if out.PID != in.PID {
		t.Errorf("Expected PID %d, got %d", in.PID, out.PID)
	}
	if out.Hostname != in.Hostname {
		t.Errorf("Expected hostname %q, got %q", in.Hostname, out.Hostname)
	}
	if !out.AcquiredAt.Equal(acquired) {
		t.Errorf("Expected acquisition time %v, got %v", acquired, out.AcquiredAt)
	}
}

func TestParseOwnerBarePid(t *testing.T) {
	// Records written by older dot-locking tools hold nothing but a PID
	owner, err := parseOwner([]byte("31337"))
	if err != nil {
		t.Fatalf("Failed to parse bare PID record: %v", err)
	}

	if owner.PID != 31337 {
		t.Errorf("Expected PID 31337, got %d", owner.PID)
	}
	if owner.Hostname != "" {
		t.Errorf("Expected empty hostname, got %q", owner.Hostname)
	}
}

func TestParseOwnerInvalid(t *testing.T) {
	tests := map[string]string{
		"Empty":        "",
		"NotANumber":   "not-a-pid\nhost\n0\n",
		"NegativePid":  "-5\n",
		"ZeroPid":      "0\n",
		"OnlySpaces":   "   \n",
		"FloatingText": "12.5\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseOwner([]byte(input)); err == nil {
				t.Errorf("Expected parse error for %q, got nil", input)
			}
		})
	}
}

func TestReadOwnerMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock.pid.nonexistent")

	_, err := readOwner(path)
	if err == nil {
		t.Fatal("Expected error reading a missing lock file")
	}

	if !dotlockErrors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected error matching fs.ErrNotExist, got: %v", err)
	}
}

func TestReadOwnerFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock.pid.myjob")

	if err := os.WriteFile(path, []byte("777\nbuildhost\n1724400000\n"), 0644); err != nil {
		t.Fatalf("Failed to write lock file: %v", err)
	}

	owner, err := readOwner(path)
	if err != nil {
		t.Fatalf("Failed to read owner: %v", err)
	}

	if owner.PID != 777 {
		t.Errorf("Expected PID 777, got %d", owner.PID)
	}
	if owner.Hostname != "buildhost" {
		t.Errorf("Expected hostname buildhost, got %q", owner.Hostname)
	}
	if owner.AcquiredAt.Unix() != 1724400000 {
		t.Errorf("Expected acquisition time 1724400000, got %d", owner.AcquiredAt.Unix())
	}
}

func TestCurrentOwner(t *testing.T) {
	owner := CurrentOwner()

	if owner.PID != os.Getpid() {
		t.Errorf("Expected PID %d, got %d", os.Getpid(), owner.PID)
	}
	if owner.Hostname == "" {
		t.Error("Expected a non-empty hostname")
	}
	if owner.AcquiredAt.IsZero() {
		t.Error("Expected a non-zero acquisition time")
	}
}
