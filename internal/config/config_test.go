// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RELAY_SUPABASE_URL", "RELAY_SUPABASE_ANON_KEY",
		"RELAY_API_BASE_URL", "RELAY_MODEL", "RELAY_THEME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[store]
url = "https://example.supabase.co"
anon_key = "anon-123"

[gateway]
base_url = "https://example.supabase.co/functions/v1"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Store.URL != "https://example.supabase.co" {
		t.Errorf("Store.URL = %q, want %q", cfg.Store.URL, "https://example.supabase.co")
	}
	if cfg.Store.AnonKey != "anon-123" {
		t.Errorf("Store.AnonKey = %q, want %q", cfg.Store.AnonKey, "anon-123")
	}
	if cfg.Gateway.Model != DefaultModel {
		t.Errorf("Gateway.Model = %q, want default %q", cfg.Gateway.Model, DefaultModel)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("UI.Theme = %q, want %q", cfg.UI.Theme, "dark")
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "store": {"url": "https://example.supabase.co", "anon_key": "anon-123"},
  "gateway": {"base_url": "https://gw.example.com", "model": "claude-3-opus-20240229"}
}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Gateway.Model != "claude-3-opus-20240229" {
		t.Errorf("Gateway.Model = %q, want %q", cfg.Gateway.Model, "claude-3-opus-20240229")
	}
}

func TestValidate_MissingEndpoints(t *testing.T) {
	cfg := Default()
	cfg.SetDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error for missing endpoints")
	}

	msg := err.Error()
	for _, want := range []string{"store.url", "store.anon_key", "gateway.base_url"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Validate() error missing %q: %v", want, msg)
		}
	}
}

func TestValidate_BadTheme(t *testing.T) {
	cfg := Default()
	cfg.Store = StoreConfig{URL: "https://example.supabase.co", AnonKey: "k"}
	cfg.Gateway.BaseURL = "https://gw.example.com"
	cfg.UI.Theme = "solarized"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for unknown theme")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELAY_SUPABASE_URL", "https://env.supabase.co")
	t.Setenv("RELAY_MODEL", "claude-3-haiku-20240307")

	cfg := Default()
	cfg.Store.URL = "https://file.supabase.co"
	cfg.ApplyEnvOverrides()

	if cfg.Store.URL != "https://env.supabase.co" {
		t.Errorf("Store.URL = %q, env override not applied", cfg.Store.URL)
	}
	if cfg.Gateway.Model != "claude-3-haiku-20240307" {
		t.Errorf("Gateway.Model = %q, env override not applied", cfg.Gateway.Model)
	}
}

func TestEnsureSecurePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := ensureSecurePermissions(path); err != nil {
		t.Fatalf("ensureSecurePermissions failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}
}

func TestString_RedactsKey(t *testing.T) {
	cfg := Default()
	cfg.Store.AnonKey = "super-secret"

	if strings.Contains(cfg.String(), "super-secret") {
		t.Error("String() exposes the store key")
	}
	if !strings.Contains(cfg.String(), "[REDACTED]") {
		t.Error("String() should mark the key as redacted")
	}
}
