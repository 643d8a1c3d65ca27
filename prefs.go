package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const (
	prefsSection = "display"
	darkModeKey  = "dark_mode"
)

// PrefStore persists the display preference between sessions.
type PrefStore struct {
	path string
}

// DefaultPrefsPath returns the per-user location of the preference file.
func DefaultPrefsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "bucketview", "prefs.ini"), nil
}

// NewPrefStore creates a store backed by the file at path.
func NewPrefStore(path string) *PrefStore {
	return &PrefStore{path: path}
}

// DarkMode reads the stored preference. A missing file means off.
func (p *PrefStore) DarkMode() (bool, error) {
	if _, err := os.Stat(p.path); os.IsNotExist(err) {
		return false, nil
	}
	file, err := ini.Load(p.path)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", p.path, err)
	}
	return file.Section(prefsSection).Key(darkModeKey).MustBool(false), nil
}

// SetDarkMode writes the preference, keeping any other keys in the file.
func (p *PrefStore) SetDarkMode(on bool) error {
	file := ini.Empty()
	if _, err := os.Stat(p.path); err == nil {
		if file, err = ini.Load(p.path); err != nil {
			return fmt.Errorf("failed to load %s: %w", p.path, err)
		}
	}

	value := "false"
	if on {
		value = "true"
	}
	file.Section(prefsSection).Key(darkModeKey).SetValue(value)

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(p.path), err)
	}
	if err := file.SaveTo(p.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", p.path, err)
	}
	return nil
}
