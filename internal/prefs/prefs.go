// Package prefs persists wait-for-rs watch UI preferences.
// Preferences are stored in ~/.config/wait-for-rs/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds what the watch UI remembers between runs.
type Prefs struct {
	Theme    string `toml:"theme"`
	ShowHelp bool   `toml:"show_help"`
}

const (
	defaultPrefsPath = "~/.config/wait-for-rs/prefs.toml"
	DefaultTheme     = "Midnight"
)

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{Theme: DefaultTheme, ShowHelp: true}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path. Unreadable or malformed files yield the
// defaults; preferences never stop the UI from starting.
func Load(path string) Prefs {
	prefs := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return prefs
	}

	var stored Prefs
	if err := toml.Unmarshal(data, &stored); err != nil {
		return prefs
	}
	if theme := strings.TrimSpace(stored.Theme); theme != "" {
		prefs.Theme = theme
	}
	if strings.Contains(string(data), "show_help") {
		prefs.ShowHelp = stored.ShowHelp
	}
	return prefs
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
