// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DatabasePath resolves the SQLite database path, defaulting to the standard
// config directory when unset.
func DatabasePath(configured string) string {
	if configured != "" {
		return ExpandPath(configured)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "fleet.db"
	}
	return filepath.Join(home, ".local", "share", "fleet", "fleet.db")
}
