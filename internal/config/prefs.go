package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds the user preferences gabbwatch persists between runs. They live
// apart from the config file so the app can rewrite them freely.
type Prefs struct {
	Theme string `toml:"theme"`
}

const (
	defaultPrefsPath = "~/.config/gabbwatch/prefs.toml"
	defaultTheme     = "Dracula"
)

// DefaultPrefsPath returns the default preferences file path.
func DefaultPrefsPath() string {
	return defaultPrefsPath
}

// LoadPrefs reads preferences from the given path. Missing or unreadable
// preferences degrade to defaults rather than failing, a broken prefs file
// must never keep the dashboard from starting.
func LoadPrefs(path string) Prefs {
	prefs := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path, defaultPrefsPath)
	if err != nil {
		return prefs
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		return prefs
	}
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{Theme: defaultTheme}
	}
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	return prefs
}

// SavePrefs writes preferences to the given path, creating directories as
// needed.
func SavePrefs(path string, p Prefs) error {
	resolved, err := resolvePath(path, defaultPrefsPath)
	if err != nil {
		return fmt.Errorf("resolve prefs path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
