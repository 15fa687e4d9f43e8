// Package config loads vcs-go settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable, e.g. VCS_WORKSPACE_DIR.
const Prefix = "VCS"

type Config struct {
	// WorkspaceDir holds the working copies of every repository.
	// Env: VCS_WORKSPACE_DIR (default: <user cache dir>/vcs-go/workspaces)
	WorkspaceDir string `envconfig:"WORKSPACE_DIR"`

	// DefaultBranch is the branch used when none is given.
	// Env: VCS_DEFAULT_BRANCH (default: master)
	DefaultBranch string `envconfig:"DEFAULT_BRANCH" default:"master"`

	// AuthorName and AuthorEmail sign commits and tags.
	AuthorName  string `envconfig:"AUTHOR_NAME" default:"vcs-go"`
	AuthorEmail string `envconfig:"AUTHOR_EMAIL" default:"vcs-go@localhost"`

	// LogLevel is one of DEBUG, INFO, WARN or ERROR.
	// Env: VCS_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LockPollInterval is how often a blocked acquisition retries.
	LockPollInterval time.Duration `envconfig:"LOCK_POLL_INTERVAL" default:"200ms"`

	// AcquireTimeout bounds the wait for a busy working copy. Zero waits
	// forever.
	AcquireTimeout time.Duration `envconfig:"ACQUIRE_TIMEOUT" default:"0s"`
}

// LoadDotEnv loads path (".env" when empty) into the environment. A missing
// file is not an error and variables already set win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// Load reads the optional .env file and then the environment.
func Load(envPath string) (Config, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", envPath, err)
	}
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg.normalize()
}

func (c Config) normalize() (Config, error) {
	if c.WorkspaceDir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			cache = os.TempDir()
		}
		c.WorkspaceDir = filepath.Join(cache, "vcs-go", "workspaces")
	}
	if c.DefaultBranch == "" {
		c.DefaultBranch = "master"
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return Config{}, err
	}
	if c.LockPollInterval <= 0 {
		return Config{}, fmt.Errorf("lock poll interval must be positive, got %s", c.LockPollInterval)
	}
	if c.AcquireTimeout < 0 {
		return Config{}, fmt.Errorf("acquire timeout must not be negative, got %s", c.AcquireTimeout)
	}
	return c, nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
