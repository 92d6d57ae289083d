// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for relay.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.relay/config.toml
//   - ~/.relay/config.json
//   - Built-in defaults
//
// The store endpoint, store key, and gateway base URL have no defaults: a
// configuration without them fails validation at startup, before any network
// call is attempted.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete relay configuration.
type Config struct {
	// Store is the hosted conversation store (Supabase project).
	Store StoreConfig `toml:"store" json:"store"`

	// Gateway is the model gateway endpoint.
	Gateway GatewayConfig `toml:"gateway" json:"gateway"`

	// UI configuration.
	UI UIConfig `toml:"ui" json:"ui"`
}

// StoreConfig contains the remote store connection settings.
type StoreConfig struct {
	// URL is the Supabase project URL (e.g. https://xyz.supabase.co).
	URL string `toml:"url" json:"url"`
	// AnonKey is the project's public anon key, sent with every request.
	AnonKey string `toml:"anon_key" json:"anon_key"`
}

// GatewayConfig contains the model gateway settings.
type GatewayConfig struct {
	// BaseURL is the gateway base URL; message turns are posted to
	// BaseURL + "/claude".
	BaseURL string `toml:"base_url" json:"base_url"`
	// Model is the model identifier sent with every gateway request.
	Model string `toml:"model" json:"model"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultModel is the model identifier used when none is configured.
const DefaultModel = "claude-3-sonnet-20240229"

// Default returns a Config with default values. Store and gateway endpoints
// have no defaults and must come from the config file or environment.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Model: DefaultModel,
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the relay configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".relay"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files hold the store key and should be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s). Tries TOML first, then
// JSON, and falls back to defaults. Environment overrides are applied last,
// followed by validation.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finish(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Used by tests and the --config flag.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// finish applies env overrides, defaults, and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
// SECURITY: Creates config files with 0600 permissions.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# relay configuration file")
	fmt.Fprintln(file, "# Generated by relay - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors. A missing
// store endpoint, store key, or gateway base URL is a fatal configuration
// error: relay cannot reach any collaborator without them.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Store.URL == "" {
		errs = append(errs, ValidationError{
			Field:   "store.url",
			Message: "store URL is required (set store.url or RELAY_SUPABASE_URL)",
		})
	} else if _, err := url.ParseRequestURI(c.Store.URL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "store.url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	}

	if c.Store.AnonKey == "" {
		errs = append(errs, ValidationError{
			Field:   "store.anon_key",
			Message: "store anon key is required (set store.anon_key or RELAY_SUPABASE_ANON_KEY)",
		})
	}

	if c.Gateway.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "gateway.base_url",
			Message: "gateway base URL is required (set gateway.base_url or RELAY_API_BASE_URL)",
		})
	} else if _, err := url.ParseRequestURI(c.Gateway.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "gateway.base_url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing configuration fields.
func (c *Config) SetDefaults() {
	if c.Gateway.Model == "" {
		c.Gateway.Model = DefaultModel
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "dark"
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RELAY_SUPABASE_URL: overrides store.url
//   - RELAY_SUPABASE_ANON_KEY: overrides store.anon_key
//   - RELAY_API_BASE_URL: overrides gateway.base_url
//   - RELAY_MODEL: overrides gateway.model
//   - RELAY_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RELAY_SUPABASE_URL"); v != "" {
		c.Store.URL = v
	}
	if v := os.Getenv("RELAY_SUPABASE_ANON_KEY"); v != "" {
		c.Store.AnonKey = v
	}
	if v := os.Getenv("RELAY_API_BASE_URL"); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := os.Getenv("RELAY_MODEL"); v != "" {
		c.Gateway.Model = v
	}
	if v := os.Getenv("RELAY_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// String returns a string representation of the config for debugging.
// SECURITY: Redacts the store key to prevent accidental exposure in logs.
func (c *Config) String() string {
	safe := *c
	if safe.Store.AnonKey != "" {
		safe.Store.AnonKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
