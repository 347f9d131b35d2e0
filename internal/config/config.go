// Package config loads CLI defaults from .pkgtrace.yaml and PKGTRACE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
)

// Default values applied when neither the config file nor the environment
// sets a key.
const (
	DefaultFormat    = "text"
	DefaultCacheSize = 4096
)

// Supported output formats.
var Formats = []string{"text", "json", "dot"}

// ErrInvalidFormat is returned when the configured format is not supported.
var ErrInvalidFormat = errors.New("invalid format")

// ErrInvalidCacheSize is returned for a negative cache size.
var ErrInvalidCacheSize = errors.New("invalid cache size")

// Config holds the settings shared by the trace commands.
type Config struct {
	// TSConfig is an explicit tsconfig.json path, relative to the root.
	TSConfig string `mapstructure:"tsconfig"`
	// Exclude lists extra path substrings dropped from results.
	Exclude []string `mapstructure:"exclude"`
	// Format is the default output format.
	Format string `mapstructure:"format"`
	// Manifest is the package.json used when tracing published entries.
	Manifest string `mapstructure:"manifest"`
	// CacheSize bounds the resolution memo.
	CacheSize int `mapstructure:"cache_size"`
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	if !IsFormat(c.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.CacheSize)
	}
	return nil
}

// IsFormat reports whether format is a supported output format.
func IsFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}
