// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "courseware.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}

	if cfg.Cache.Backend != CacheMemory {
		t.Errorf("expected cache.backend=memory, got %s", cfg.Cache.Backend)
	}

	if cfg.Cache.MaxBytes != 0 {
		t.Errorf("expected cache.max_bytes=0, got %d", cfg.Cache.MaxBytes)
	}

	if cfg.Content.MaxIncludeDepth != 16 {
		t.Errorf("expected content.max_include_depth=16, got %d", cfg.Content.MaxIncludeDepth)
	}

	if !cfg.Content.LuaHandlers {
		t.Error("expected lua_handlers=true for development")
	}
}

func TestLoad_RequiresConfigVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when COURSEWARE_CONFIG not set, got nil")
	}

	expectedMsg := "COURSEWARE_CONFIG environment variable not set"
	if !strings.HasPrefix(err.Error(), expectedMsg) {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithConfigVariable(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging
paths:
  git_root: /test/courses
`)
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}

	if cfg.Paths.GitRoot != "/test/courses" {
		t.Errorf("expected git_root=/test/courses, got %s", cfg.Paths.GitRoot)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging

paths:
  git_root: /srv/courses
  state: /var/lib/courseware

cache:
  backend: badger
  max_bytes: 65536
  ttl: 24h
  compression: zstd

content:
  time_zone: America/Chicago
  url_prefix: https://learn.example.edu

events:
  pool_size: 8
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Cache.Backend != CacheBadger {
		t.Errorf("expected backend=badger, got %s", cfg.Cache.Backend)
	}

	if cfg.Cache.Path != "/var/lib/courseware/cache" {
		t.Errorf("expected cache path under state, got %s", cfg.Cache.Path)
	}

	if cfg.Events.Database != "/var/lib/courseware/events.db" {
		t.Errorf("expected events database under state, got %s", cfg.Events.Database)
	}

	if cfg.Events.PoolSize != 8 {
		t.Errorf("expected pool_size=8, got %d", cfg.Events.PoolSize)
	}

	// Unset fields keep their defaults.
	if cfg.Content.MaxIncludeDepth != 16 {
		t.Errorf("expected max_include_depth=16, got %d", cfg.Content.MaxIncludeDepth)
	}

	ttl, err := cfg.Cache.TTLDuration()
	if err != nil || ttl != 24*time.Hour {
		t.Errorf("TTLDuration() = %v, %v; want 24h", ttl, err)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	configPath := writeConfig(t, `
environment: production

paths:
  git_root: /default/courses

cache:
  max_bytes: 1024

production:
  paths:
    git_root: /prod/courses
  cache:
    backend: badger
    max_bytes: 1048576
  content:
    url_prefix: https://learn.example.edu
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Paths.GitRoot != "/prod/courses" {
		t.Errorf("expected git_root=/prod/courses, got %s", cfg.Paths.GitRoot)
	}

	if cfg.Cache.Backend != CacheBadger || cfg.Cache.MaxBytes != 1048576 {
		t.Errorf("expected production cache overrides, got %+v", cfg.Cache)
	}

	if cfg.Content.URLPrefix != "https://learn.example.edu" {
		t.Errorf("expected url_prefix override, got %s", cfg.Content.URLPrefix)
	}

	if cfg.Content.LuaHandlers {
		t.Error("expected lua_handlers=false from production override")
	}
}

func TestProductionDefaultsDisableLua(t *testing.T) {
	configPath := writeConfig(t, "environment: production\n")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Content.LuaHandlers {
		t.Error("expected lua_handlers=false for production without overrides")
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	// Environment variables are only consulted for ${VAR} expansion.
	t.Setenv("COURSEWARE_GIT_ROOT", "/env/courses")
	t.Setenv("COURSEWARE_ENVIRONMENT", "staging")

	configPath := writeConfig(t, `
environment: development
paths:
  git_root: /file/courses
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Environment != Development {
		t.Errorf("expected environment=development from file, got %s (env vars should not override)", cfg.Environment)
	}

	if cfg.Paths.GitRoot != "/file/courses" {
		t.Errorf("expected git_root=/file/courses from file, got %s (env vars should not override)", cfg.Paths.GitRoot)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/courses",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/courses",
		},
		{
			input:    "${COURSEWARE_TEST_MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid environment",
			modify: func(c *Config) {
				c.Environment = "invalid"
			},
			wantErr: true,
		},
		{
			name: "empty git root",
			modify: func(c *Config) {
				c.Paths.GitRoot = ""
			},
			wantErr: true,
		},
		{
			name: "unknown cache backend",
			modify: func(c *Config) {
				c.Cache.Backend = "redis"
			},
			wantErr: true,
		},
		{
			name: "badger without path",
			modify: func(c *Config) {
				c.Cache.Backend = CacheBadger
				c.Cache.Path = ""
			},
			wantErr: true,
		},
		{
			name: "bad ttl",
			modify: func(c *Config) {
				c.Cache.TTL = "forever"
			},
			wantErr: true,
		},
		{
			name: "unknown compression",
			modify: func(c *Config) {
				c.Cache.Compression = "gzip"
			},
			wantErr: true,
		},
		{
			name: "unknown time zone",
			modify: func(c *Config) {
				c.Content.TimeZone = "Mars/Olympus_Mons"
			},
			wantErr: true,
		},
		{
			name: "zero include depth",
			modify: func(c *Config) {
				c.Content.MaxIncludeDepth = 0
			},
			wantErr: true,
		},
		{
			name: "zero pool size",
			modify: func(c *Config) {
				c.Events.PoolSize = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsurePaths(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.Paths.State = filepath.Join(tmpDir, "state")
	cfg.Cache.Backend = CacheBadger
	cfg.Cache.Path = filepath.Join(tmpDir, "state", "cache")
	cfg.Events.Database = filepath.Join(tmpDir, "events", "events.db")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}

	for _, path := range []string{cfg.Paths.State, cfg.Cache.Path, filepath.Dir(cfg.Events.Database)} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("path %s not created: %v", path, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("path %s is not a directory", path)
		}
	}
}
