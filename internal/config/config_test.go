package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("GABB_USERNAME", "parent@example.com")
	t.Setenv("GABB_PASSWORD", "hunter2")
	t.Setenv("GABB_APP_BUILD", "")
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	setCredentials(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Fatalf("PollInterval = %v, want %v", cfg.PollInterval, defaultPollInterval)
	}
	if cfg.BaseURL != "" {
		t.Fatalf("BaseURL = %q, want empty (client applies its own default)", cfg.BaseURL)
	}
	wantLogPath, err := expandPath(defaultLogPath)
	if err != nil {
		t.Fatalf("expandPath(defaultLogPath) returned error: %v", err)
	}
	if cfg.LogPath != wantLogPath {
		t.Fatalf("LogPath = %q, want %q", cfg.LogPath, wantLogPath)
	}
	if cfg.Username != "parent@example.com" || cfg.Password != "hunter2" {
		t.Fatalf("credentials = %q/%q, want the environment values", cfg.Username, cfg.Password)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	setCredentials(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
base_url = "  https://filip.example.test/  "
poll_interval = "10s"
log_path = "  ~/.gabbwatch/watch.log  "
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "https://filip.example.test/" {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, "https://filip.example.test/")
	}
	if cfg.PollInterval != 10*time.Second {
		t.Fatalf("PollInterval = %v, want 10s", cfg.PollInterval)
	}
	if !strings.HasPrefix(cfg.LogPath, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", cfg.LogPath, home)
	}
}

func TestLoad_MissingCredentialsFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GABB_USERNAME", "")
	t.Setenv("GABB_PASSWORD", "")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load returned nil error, want missing credentials error")
	}
	if !strings.Contains(err.Error(), "GABB_USERNAME") {
		t.Fatalf("Load error = %q, want it to name GABB_USERNAME", err.Error())
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	setCredentials(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`base_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_InvalidPollIntervalFails(t *testing.T) {
	setCredentials(t)
	for _, interval := range []string{"soon", "-5s", "0s"} {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(`poll_interval = "`+interval+`"`), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("Load accepted poll_interval %q, want error", interval)
		}
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatal("expandPath returned nil error, want error")
	}
}

func TestLoadPrefs_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	prefs := LoadPrefs("")
	if prefs.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", prefs.Theme, defaultTheme)
	}
}

func TestPrefs_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")

	if err := SavePrefs(path, Prefs{Theme: "Slate"}); err != nil {
		t.Fatalf("SavePrefs returned error: %v", err)
	}
	prefs := LoadPrefs(path)
	if prefs.Theme != "Slate" {
		t.Fatalf("Theme = %q, want Slate", prefs.Theme)
	}
}

func TestLoadPrefs_BrokenFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte(`theme = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	prefs := LoadPrefs(path)
	if prefs.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", prefs.Theme, defaultTheme)
	}
}
