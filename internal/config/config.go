package config

import (
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaysoffian/dotlock/internal/errors"
)

const (
	// BackendLink selects the hard-link dot-locking protocol.
	BackendLink = "link"

	// BackendFlock selects kernel advisory locking.
	BackendFlock = "flock"
)

// Config holds all dotlock application settings.
type Config struct {
	// Lock configuration
	Name    string
	Dir     string
	Backend string

	// Wrapped command: everything after the last flag
	Command []string

	// SavedPath, when set, becomes the child's PATH. The wrapper that
	// stripped the search path down for its own run records the original
	// here so the command still sees it.
	SavedPath string

	// User experience
	Verbose bool

	// Debugging
	Debug   bool
	LogFile string

	// Special flags
	Version bool

	// Build metadata
	VersionInfo VersionInfo
}

// VersionInfo contains build-time version metadata
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		Name:      "",
		Dir:       "",
		Backend:   BackendLink,
		SavedPath: "",
		Verbose:   false,
		Debug:     false,
		LogFile:   "",
		Version:   false,

		// Default version info, will be overridden if provided
		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// LoadFromEnvironment updates config from environment variables
func (c *Config) LoadFromEnvironment() {
	c.Name = getEnvString("LOCK_NAME", c.Name)
	c.Dir = getEnvString("LOCK_DIR", c.Dir)
	c.Backend = getEnvString("LOCK_BACKEND", c.Backend)
	c.SavedPath = getEnvString("SAVED_PATH", c.SavedPath)
	c.Verbose = getEnvBool("VERBOSE", c.Verbose)
	c.Debug = getEnvBool("DEBUG", c.Debug)
	c.LogFile = getEnvString("LOG_FILE", c.LogFile)
}

// SetupFlags sets up command-line flags to override config values
func (c *Config) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Name, "name", c.Name, "Lock identity (default: basename of the command)")
	fs.StringVar(&c.Dir, "dir", c.Dir, "Directory holding lock files (default: system temp directory)")
	fs.StringVar(&c.Backend, "backend", c.Backend, "Locking backend: link or flock")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "Show informational messages")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Path to log file (default: ~/.local/share/dotlock/logs/dotlock-{lock-hash}.log)")
	fs.BoolVar(&c.Version, "version", c.Version, "Print version information and exit")
}

// ParseFlags parses the command-line arguments and updates the config.
// Parsing stops at the first non-flag argument; that argument and the
// rest become the wrapped command verbatim, so the command's own flags
// are never interpreted here.
func (c *Config) ParseFlags() error {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

	c.SetupFlags(fs)

	var appArgs []string
	if len(os.Args) > 1 {
		appArgs = os.Args[1:]
	}

	if err := fs.Parse(appArgs); err != nil {
		return errors.NewConfigError("flags", nil, errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to parse command-line arguments: %v", err)))
	}

	c.Command = fs.Args()

	return nil
}

// Finalize validates and finalizes the configuration
func (c *Config) Finalize() error {
	if c.Version {
		return nil
	}

	if len(c.Command) == 0 {
		return errors.NewConfigError("command", nil,
			errors.Wrap(errors.ErrInvalidConfiguration, "no command given to run"))
	}

	if c.Backend != BackendLink && c.Backend != BackendFlock {
		return errors.NewConfigError("backend", c.Backend,
			errors.Wrap(errors.ErrInvalidConfiguration,
				fmt.Sprintf("unknown backend %q (want %s or %s)", c.Backend, BackendLink, BackendFlock)))
	}

	if c.Dir == "" {
		c.Dir = os.TempDir()
	}

	absDir, err := filepath.Abs(c.Dir)
	if err != nil {
		return errors.NewConfigError("dir", c.Dir,
			errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to resolve absolute path: %v", err)))
	}
	c.Dir = absDir

	info, err := os.Stat(c.Dir)
	if err != nil {
		return errors.NewConfigError("dir", c.Dir,
			errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("lock directory is not usable: %v", err)))
	}
	if !info.IsDir() {
		return errors.NewConfigError("dir", c.Dir,
			errors.Wrap(errors.ErrInvalidConfiguration, "lock directory is not a directory"))
	}

	if c.Name == "" {
		c.Name = filepath.Base(c.Command[0])
	}
	if err := validateIdentity(c.Name); err != nil {
		return errors.NewConfigError("name", c.Name, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}

	if c.LogFile == "" {
		// Follow XDG Base Directory Specification
		logDir := os.Getenv("XDG_DATA_HOME")
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err == nil {
				logDir = filepath.Join(homeDir, ".local", "share")
			} else {
				// Fallback to the temp directory if home dir can't be determined
				logDir = os.TempDir()
			}
		}

		// A unique identifier for this lock across directories
		lockHash := fmt.Sprintf("%x", sha256OfString(filepath.Join(c.Dir, c.Name))[:8])

		dotlockLogDir := filepath.Join(logDir, "dotlock", "logs")
		c.LogFile = filepath.Join(dotlockLogDir, fmt.Sprintf("dotlock-%s.log", lockHash))
	}

	return nil
}

// Identity returns the name the lock is scoped to. Valid after Finalize.
func (c *Config) Identity() string {
	return c.Name
}

// validateIdentity rejects names that would escape the lock directory or
// produce unusable file names.
func validateIdentity(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid lock name %q", name)
	}
	if strings.ContainsRune(name, os.PathSeparator) {
		return fmt.Errorf("lock name %q must not contain a path separator", name)
	}
	return nil
}

// getEnvString returns an environment variable string or a default value
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value
func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		valueLower := strings.ToLower(valueStr)
		if valueLower == "true" || valueLower == "1" || valueLower == "yes" {
			return true
		}
		if valueLower == "false" || valueLower == "0" || valueLower == "no" {
			return false
		}
		// For any other value, fall back to default
	}
	return defaultValue
}

// sha256OfString returns the SHA256 hash of a string
func sha256OfString(input string) []byte {
	hash := sha256.Sum256([]byte(input))
	return hash[:]
}
