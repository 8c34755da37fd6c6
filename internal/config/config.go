package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything gabbwatch needs to run. File settings come from
// the TOML config, credentials only from the environment.
type Config struct {
	Username     string
	Password     string
	AppBuild     string
	BaseURL      string
	PollInterval time.Duration
	LogPath      string
}

const (
	defaultConfigPath   = "~/.config/gabbwatch/config.toml"
	defaultLogPath      = "~/.local/share/gabbwatch/gabbwatch.log"
	defaultPollInterval = 30 * time.Second
)

// credentials are read from GABB_USERNAME, GABB_PASSWORD and optionally
// GABB_APP_BUILD. They never live in the config file.
type credentials struct {
	Username string
	Password string
	AppBuild string
}

// Load reads the gabbwatch config file, falling back to defaults when it is
// missing, and overlays the account credentials from the environment.
// Missing credentials are a hard error: the dashboard cannot authenticate
// without them.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path, defaultConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{PollInterval: defaultPollInterval}

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file is fine, defaults cover everything but credentials.
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}

		var raw struct {
			BaseURL      string `toml:"base_url"`
			PollInterval string `toml:"poll_interval"`
			LogPath      string `toml:"log_path"`
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}

		cfg.BaseURL = strings.TrimSpace(raw.BaseURL)
		if interval := strings.TrimSpace(raw.PollInterval); interval != "" {
			parsed, err := time.ParseDuration(interval)
			if err != nil {
				return Config{}, fmt.Errorf("parse poll_interval: %w", err)
			}
			if parsed <= 0 {
				return Config{}, fmt.Errorf("poll_interval %q must be positive", interval)
			}
			cfg.PollInterval = parsed
		}
		cfg.LogPath = strings.TrimSpace(raw.LogPath)
	}

	if cfg.LogPath == "" {
		cfg.LogPath = defaultLogPath
	}
	cfg.LogPath = mustExpand(cfg.LogPath)

	var creds credentials
	if err := envconfig.Process("GABB", &creds); err != nil {
		return Config{}, fmt.Errorf("read credentials from environment: %w", err)
	}
	cfg.Username = strings.TrimSpace(creds.Username)
	cfg.Password = creds.Password
	cfg.AppBuild = strings.TrimSpace(creds.AppBuild)
	if cfg.Username == "" || cfg.Password == "" {
		return Config{}, errors.New("missing credentials: set GABB_USERNAME and GABB_PASSWORD")
	}

	return cfg, nil
}

func resolvePath(path, fallback string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(fallback)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
