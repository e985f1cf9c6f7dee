// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// StoreDriver selects the clip store: memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`

	// DatabaseURL is the DSN of the sqlite file or postgres database.
	// Empty with sqlite means an in-memory database.
	DatabaseURL string `koanf:"database_url"`

	// DBMaxOpenConns caps the postgres connection pool.
	DBMaxOpenConns int `koanf:"db_max_open_conns"`

	// SeedSample inserts the built-in demo clips into an empty store.
	SeedSample bool `koanf:"seed_sample"`

	// SeedFile, when set, replaces the built-in demo clips.
	SeedFile string `koanf:"seed_file"`

	// DefaultListLimit and MaxListLimit bound GET /api/clips?limit.
	DefaultListLimit int `koanf:"default_list_limit"`
	MaxListLimit     int `koanf:"max_list_limit"`

	// VoteQueueSize bounds the in-memory vote event queue.
	VoteQueueSize int `koanf:"vote_queue_size"`

	// WorkerCount sets the number of vote log workers.
	WorkerCount int `koanf:"worker_count"`

	// ActiveWindow is how long a voter counts towards active_users.
	ActiveWindow time.Duration `koanf:"active_window"`

	// RejectUnknownVoteType turns unknown vote types into 400s instead of no-ops.
	RejectUnknownVoteType bool `koanf:"reject_unknown_vote_type"`

	// CORSAllowedOrigins is a comma separated origin list; "*" allows all.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":8000",
		StoreDriver:           StoreMemory,
		DBMaxOpenConns:        10,
		SeedSample:            true,
		DefaultListLimit:      50,
		MaxListLimit:          100,
		VoteQueueSize:         10_000,
		WorkerCount:           runtime.NumCPU(),
		ActiveWindow:          24 * time.Hour,
		RejectUnknownVoteType: true,
		CORSAllowedOrigins:    "*",
	}
}

// AllowedOrigins splits CORSAllowedOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fail("addr must not be empty")
	case !slices.Contains([]string{StoreMemory, StoreSQLite, StorePostgres}, c.StoreDriver):
		return fail("store_driver %q must be one of memory, sqlite, postgres", c.StoreDriver)
	case c.StoreDriver == StorePostgres && c.DatabaseURL == "":
		return fail("database_url is required for the postgres store")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fail("log_format %q must be text or json", c.LogFormat)
	case c.MaxListLimit < 1:
		return fail("max_list_limit must be positive")
	case c.DefaultListLimit < 1 || c.DefaultListLimit > c.MaxListLimit:
		return fail("default_list_limit must be between 1 and max_list_limit (%d)", c.MaxListLimit)
	case c.VoteQueueSize < 1:
		return fail("vote_queue_size must be positive")
	case c.WorkerCount < 1:
		return fail("worker_count must be positive")
	case c.ActiveWindow <= 0:
		return fail("active_window must be positive")
	case c.DBMaxOpenConns < 1:
		return fail("db_max_open_conns must be positive")
	}
	return nil
}
