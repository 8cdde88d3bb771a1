// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

// Package xdg provides XDG Base Directory paths for LimboGate.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "limbogate"

// ConfigDir returns the XDG config directory for limbogate.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultConfigFile returns the default path of the YAML config file.
func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), "limbogate.yaml")
}
