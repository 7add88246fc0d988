package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the full configuration file. Either JSON or YAML on disk; YAML is
// coerced to JSON before strict decoding (see yaml.go).
type Config struct {
	Server    ServerConfig    `json:"server"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Storage   StorageConfig   `json:"storage"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig controls the local HTTP API.
type ServerConfig struct {
	Host string `json:"host,omitempty"` // default: 127.0.0.1
	Port int    `json:"port,omitempty"` // default: 8000

	// Reconcile is a cron expression (robfig/cron, 5-field) driving how often
	// the record store is refreshed from live scheduler state. Empty disables
	// reconciliation.
	Reconcile string `json:"reconcile,omitempty"`

	// RatePerSec / Burst cap mutating API calls; each one spawns a
	// subprocess. Zero values get defaults.
	RatePerSec int `json:"rate_per_sec,omitempty"`
	Burst      int `json:"burst,omitempty"`
}

func (c ServerConfig) Addr() string {
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.Port
	if port == 0 {
		port = 8000
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// SchedulerConfig controls the schtasks adapter.
type SchedulerConfig struct {
	// Executor runs registered scripts (the interpreter/runtime path).
	// Empty defaults to the current binary.
	Executor string `json:"executor,omitempty"`

	// Author is stamped into generated task documents. Empty falls back to
	// the USERNAME environment variable.
	Author string `json:"author,omitempty"`
}

// StorageConfig controls the local record store of declared tasks.
//
// Driver values: "sqlite" (default) or "none".
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string
}

func (c StorageConfig) BusyTimeoutDuration() (time.Duration, error) {
	s := strings.TrimSpace(c.BusyTimeout)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("storage.busy_timeout: invalid duration %q: %w", c.BusyTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("storage.busy_timeout: duration must be >= 0")
	}
	return d, nil
}

type LoggingConfig struct {
	Level   string `json:"level,omitempty"`
	Console *bool  `json:"console,omitempty"` // default: true
	File    string `json:"file,omitempty"`    // path; empty disables the file sink
}

func (c LoggingConfig) ConsoleEnabled() bool {
	return c.Console == nil || *c.Console
}

// DefaultStoragePath places the database under the user's config directory,
// next to where the original tool kept it.
func DefaultStoragePath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base, _ = os.UserHomeDir()
	}
	return filepath.Join(base, "datalys2-tasks", "datalys2.db")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Driver: "sqlite", Path: DefaultStoragePath()},
		Logging: LoggingConfig{Level: "info"},
	}
}
