// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, tees log output to a file on disk.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataFile is the path of the live TOML database document.
	DataFile string `koanf:"data_file"`

	// ArchiveDir is the base directory monthly archives live under.
	// Defaults to the directory containing DataFile.
	ArchiveDir string `koanf:"archive_dir"`

	// Timezone is the IANA zone month boundaries are computed in.
	Timezone string `koanf:"timezone"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use
// and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel: "info",
		LogFile:  "",
		Addr:     ":8080",
		DataFile: "database.toml",
		Timezone: "America/New_York",
	}
}
