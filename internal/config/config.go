// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for scoopchat.
//
// Configuration sources, in order of precedence:
//   - SCOOPCHAT_BACKEND_URL environment variable
//   - ~/.scoopchat/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/scoopchat/internal/backend"
)

// EnvBackendURL overrides the backend URL when set.
const EnvBackendURL = "SCOOPCHAT_BACKEND_URL"

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config represents the complete scoopchat configuration.
type Config struct {
	// BackendURL is the assistant backend base URL.
	BackendURL string `toml:"backend_url"`

	// TimeoutSeconds bounds every backend request.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// ProfileDir holds the local profile (identity + consent).
	ProfileDir string `toml:"profile_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BackendURL:     backend.DefaultBaseURL,
		TimeoutSeconds: 30,
		ProfileDir:     defaultProfileDir(),
	}
}

// Timeout returns the request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	parsed, err := url.Parse(c.BackendURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("backend_url %q is not a valid URL", c.BackendURL)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the default location, applying
// defaults and environment overrides. A missing file is not an error.
func Load() (Config, error) {
	return LoadFrom(filepath.Join(defaultProfileDir(), "config.toml"))
}

// LoadFrom reads configuration from a specific path.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if env := os.Getenv(EnvBackendURL); env != "" {
		cfg.BackendURL = env
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// defaultProfileDir returns ~/.scoopchat, falling back to the working
// directory when the home directory can't be resolved.
func defaultProfileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scoopchat"
	}
	return filepath.Join(home, ".scoopchat")
}
