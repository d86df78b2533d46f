// Package fs discovers workspace source files, watches them for changes and
// locates the program's config and state directories.
package fs

import (
	"os"
	"path/filepath"
)

const appName = "deadcodehunter"

// DefaultConfigPath returns the default config file location.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/deadcodehunter/config.toml.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName, "config.toml")
}

// DefaultStateDir returns the directory for the log file.
// Uses XDG_STATE_HOME if set, otherwise ~/.local/state/deadcodehunter.
func DefaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", appName)
}
