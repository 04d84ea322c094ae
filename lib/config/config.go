// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the configuration file for Load.
const EnvironmentVariable = "COURSEWARE_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Cache backend names.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheBadger = "badger"
)

// Config is the master configuration for courseware.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Cache configures the content cache.
	Cache CacheConfig `yaml:"cache"`

	// Content configures content resolution.
	Content ContentConfig `yaml:"content"`

	// Events configures the course event store.
	Events EventsConfig `yaml:"events"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths   *PathsConfig   `yaml:"paths,omitempty"`
	Cache   *CacheConfig   `yaml:"cache,omitempty"`
	Content *ContentConfig `yaml:"content,omitempty"`
	Events  *EventsConfig  `yaml:"events,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// GitRoot holds one git repository per course, named by the
	// course identifier.
	GitRoot string `yaml:"git_root"`

	// State is where the cache database and event store live.
	State string `yaml:"state"`
}

// CacheConfig configures the content cache.
type CacheConfig struct {
	// Backend is one of "none", "memory", "badger".
	// Default: memory
	Backend string `yaml:"backend"`

	// Path is the badger directory.
	// Default: ${COURSEWARE_STATE}/cache
	Path string `yaml:"path"`

	// MaxBytes is the largest encoded value stored. Zero caches
	// nothing.
	// Default: 0
	MaxBytes int `yaml:"max_bytes"`

	// MaxKeyLength bypasses the cache for longer keys.
	// Default: 240
	MaxKeyLength int `yaml:"max_key_length"`

	// TTL bounds entry lifetime ("" or "0" for none).
	TTL string `yaml:"ttl"`

	// Compression is one of "none", "lz4", "zstd".
	// Default: lz4
	Compression string `yaml:"compression"`
}

// ContentConfig configures content resolution.
type ContentConfig struct {
	// TimeZone is the IANA zone literal dates are read in.
	// Default: UTC
	TimeZone string `yaml:"time_zone"`

	// MaxIncludeDepth bounds nested template includes.
	// Default: 16
	MaxIncludeDepth int `yaml:"max_include_depth"`

	// URLPrefix is prepended to rewritten internal links.
	URLPrefix string `yaml:"url_prefix"`

	// CodeStyle is the chroma style for highlighted code.
	// Default: friendly
	CodeStyle string `yaml:"code_style"`

	// LuaHandlers enables repo:<module>.<Class> page types.
	// Default: true (development), false (production)
	LuaHandlers bool `yaml:"lua_handlers"`
}

// EventsConfig configures the course event store.
type EventsConfig struct {
	// Database is the SQLite database path.
	// Default: ${COURSEWARE_STATE}/events.db
	Database string `yaml:"database"`

	// PoolSize is the number of SQLite connections.
	// Default: 4
	PoolSize int `yaml:"pool_size"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultState := filepath.Join(homeDir, ".cache", "courseware")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			GitRoot: filepath.Join(homeDir, "courses"),
			State:   defaultState,
		},
		Cache: CacheConfig{
			Backend:      CacheMemory,
			Path:         "${COURSEWARE_STATE}/cache",
			MaxKeyLength: 240,
			Compression:  "lz4",
		},
		Content: ContentConfig{
			TimeZone:        "UTC",
			MaxIncludeDepth: 16,
			CodeStyle:       "friendly",
			LuaHandlers:     true,
		},
		Events: EventsConfig{
			Database: "${COURSEWARE_STATE}/events.db",
			PoolSize: 4,
		},
	}
}

// Load loads configuration from the COURSEWARE_CONFIG environment
// variable. There are no fallbacks or defaults - if it is not set,
// this fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your courseware.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do not
// override config values - this ensures deterministic, auditable configuration.
// The only expansion performed is ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: course code does not run.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Content: &ContentConfig{LuaHandlers: false},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.GitRoot != "" {
			c.Paths.GitRoot = overrides.Paths.GitRoot
		}
		if overrides.Paths.State != "" {
			c.Paths.State = overrides.Paths.State
		}
	}

	if overrides.Cache != nil {
		if overrides.Cache.Backend != "" {
			c.Cache.Backend = overrides.Cache.Backend
		}
		if overrides.Cache.Path != "" {
			c.Cache.Path = overrides.Cache.Path
		}
		if overrides.Cache.MaxBytes != 0 {
			c.Cache.MaxBytes = overrides.Cache.MaxBytes
		}
		if overrides.Cache.MaxKeyLength != 0 {
			c.Cache.MaxKeyLength = overrides.Cache.MaxKeyLength
		}
		if overrides.Cache.TTL != "" {
			c.Cache.TTL = overrides.Cache.TTL
		}
		if overrides.Cache.Compression != "" {
			c.Cache.Compression = overrides.Cache.Compression
		}
	}

	if overrides.Content != nil {
		if overrides.Content.TimeZone != "" {
			c.Content.TimeZone = overrides.Content.TimeZone
		}
		if overrides.Content.MaxIncludeDepth != 0 {
			c.Content.MaxIncludeDepth = overrides.Content.MaxIncludeDepth
		}
		if overrides.Content.URLPrefix != "" {
			c.Content.URLPrefix = overrides.Content.URLPrefix
		}
		if overrides.Content.CodeStyle != "" {
			c.Content.CodeStyle = overrides.Content.CodeStyle
		}
		// LuaHandlers is a bool, so we always apply it from overrides.
		c.Content.LuaHandlers = overrides.Content.LuaHandlers
	}

	if overrides.Events != nil {
		if overrides.Events.Database != "" {
			c.Events.Database = overrides.Events.Database
		}
		if overrides.Events.PoolSize != 0 {
			c.Events.PoolSize = overrides.Events.PoolSize
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"COURSEWARE_STATE": c.Paths.State,
		"HOME":             os.Getenv("HOME"),
	}

	c.Paths.State = expandVars(c.Paths.State, vars)
	vars["COURSEWARE_STATE"] = c.Paths.State // Update for dependent paths.

	c.Paths.GitRoot = expandVars(c.Paths.GitRoot, vars)
	c.Cache.Path = expandVars(c.Cache.Path, vars)
	c.Events.Database = expandVars(c.Events.Database, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.GitRoot == "" {
		errs = append(errs, fmt.Errorf("paths.git_root is required"))
	}

	backends := []string{CacheNone, CacheMemory, CacheBadger}
	if !slices.Contains(backends, c.Cache.Backend) {
		errs = append(errs, fmt.Errorf("cache.backend must be one of: %v", backends))
	}
	if c.Cache.Backend == CacheBadger && c.Cache.Path == "" {
		errs = append(errs, fmt.Errorf("cache.path is required for the badger backend"))
	}
	if c.Cache.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("cache.max_bytes must not be negative"))
	}
	if _, err := c.Cache.TTLDuration(); err != nil {
		errs = append(errs, err)
	}
	compressions := []string{"none", "lz4", "zstd"}
	if !slices.Contains(compressions, c.Cache.Compression) {
		errs = append(errs, fmt.Errorf("cache.compression must be one of: %v", compressions))
	}

	if _, err := c.Content.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.Content.MaxIncludeDepth < 1 {
		errs = append(errs, fmt.Errorf("content.max_include_depth must be positive"))
	}

	if c.Events.Database == "" {
		errs = append(errs, fmt.Errorf("events.database is required"))
	}
	if c.Events.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("events.pool_size must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// TTLDuration parses TTL. An empty TTL is zero.
func (c CacheConfig) TTLDuration() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(c.TTL)
	if err != nil || ttl < 0 {
		return 0, fmt.Errorf("cache.ttl %q is not a non-negative duration", c.TTL)
	}
	return ttl, nil
}

// Location loads the content time zone.
func (c ContentConfig) Location() (*time.Location, error) {
	location, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("content.time_zone: %w", err)
	}
	return location, nil
}

// EnsurePaths creates the state directory and the parents of the
// configured databases.
func (c *Config) EnsurePaths() error {
	paths := []string{c.Paths.State}
	if c.Cache.Backend == CacheBadger {
		paths = append(paths, c.Cache.Path)
	}
	if c.Events.Database != "" {
		paths = append(paths, filepath.Dir(c.Events.Database))
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
