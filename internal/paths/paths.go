// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package paths centralizes filesystem path handling: the configuration
// directory lookup chain, home directory expansion, and path validation.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// GetConfigDir returns the natid-scan configuration directory.
// Resolution order: explicit override, XDG config home, then a dotted
// directory under the user's home.
func GetConfigDir() string {
	if dir := os.Getenv("NATIDSCAN_CONFIG_DIR"); dir != "" {
		return NormalizePath(dir)
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "natid-scan")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "natid-scan")
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetAllowlistFile returns the path to the allowlist file
func GetAllowlistFile() string {
	return filepath.Join(GetConfigDir(), "allowlist.yaml")
}

// NormalizePath expands a leading ~ and environment variables, then
// cleans the result.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return filepath.Clean(os.ExpandEnv(path))
}

// ResolvePath resolves a path to its absolute form.
func ResolvePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return filepath.Abs(NormalizePath(path))
}

// ValidatePath validates a path for use as a scan target or output
// location. Empty paths are valid; callers treat them as "unset".
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}
	for _, char := range path {
		if char == 0 {
			return &PathValidationError{Path: path, Reason: "contains null byte"}
		}
	}
	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}
