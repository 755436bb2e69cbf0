// Package config defines core configuration types for gomdwarehouse.
// These types are pure data structures; discovery and merging live in
// internal/configloader.
package config

import "slices"

// Flavor specifies the Markdown flavor to use for tokenizing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// IsValid returns true if the flavor is known.
func (f Flavor) IsValid() bool {
	switch f {
	case FlavorCommonMark, FlavorGFM:
		return true
	default:
		return false
	}
}

// CollectorConfig holds per-collector configuration.
type CollectorConfig struct {
	// Enabled overrides the collector's default state when set.
	Enabled *bool `yaml:"enabled,omitempty"`

	// MaxItems caps the number of items a collector keeps. Zero means no cap.
	MaxItems *int `yaml:"max_items,omitempty"`

	// IgnoreInside lists container names ("fence", "code_block", ...) whose
	// contents the collector skips. Nil keeps the collector's default; an
	// empty list clears it.
	IgnoreInside []string `yaml:"ignore_inside,omitempty"`

	// Options holds collector-specific settings.
	Options map[string]any `yaml:"options,omitempty"`
}

// LimitsConfig bounds the resources spent on a single document. Zero values
// select the warehouse defaults.
type LimitsConfig struct {
	MaxTokens int   `yaml:"max_tokens"`
	MaxBytes  int64 `yaml:"max_bytes"`
	MaxDepth  int   `yaml:"max_depth"`
}

// URLConfig is the URL validation policy.
type URLConfig struct {
	// AllowedSchemes lists accepted schemes. Empty means http, https, mailto.
	AllowedSchemes []string `yaml:"allowed_schemes"`

	// AllowRelative accepts scheme-less relative references.
	AllowRelative bool `yaml:"allow_relative"`
}

// Config is the root configuration structure for gomdwarehouse.
type Config struct {
	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor"`

	// Limits bounds tokens, bytes and nesting depth per document.
	Limits LimitsConfig `yaml:"limits"`

	// URLs configures link and image URL validation.
	URLs URLConfig `yaml:"urls"`

	// Collectors contains per-collector configuration keyed by name.
	Collectors map[string]CollectorConfig `yaml:"collectors"`

	// Ignore contains glob patterns for files to ignore.
	Ignore []string `yaml:"ignore"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Output is the file results are written to; empty means stdout.
	Output string `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// Strict turns unsafe URLs and collector failures into a failing exit code.
	Strict bool `yaml:"-"`

	// EnableCollectors contains collector names to explicitly enable.
	EnableCollectors []string `yaml:"-"`

	// DisableCollectors contains collector names to explicitly disable.
	DisableCollectors []string `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Flavor:     FlavorGFM,
		Collectors: make(map[string]CollectorConfig),
		Ignore:     nil,
		Format:     FormatText,
		Jobs:       0, // 0 means use GOMAXPROCS
	}
}

// Collector returns the configuration for a collector, or the zero value.
func (c *Config) Collector(name string) CollectorConfig {
	if c == nil {
		return CollectorConfig{}
	}
	return c.Collectors[name]
}

// CollectorEnabled resolves whether a collector runs. The CLI disable list
// wins over the enable list, which wins over the config file and finally
// the collector's default.
func (c *Config) CollectorEnabled(name string, byDefault bool) bool {
	if c == nil {
		return byDefault
	}
	if slices.Contains(c.DisableCollectors, name) {
		return false
	}
	if slices.Contains(c.EnableCollectors, name) {
		return true
	}
	if cc, ok := c.Collectors[name]; ok && cc.Enabled != nil {
		return *cc.Enabled
	}
	return byDefault
}
