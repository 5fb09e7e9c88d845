// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizePathExpandsHome(t *testing.T) {
	got := NormalizePath("~/reports/out.json")
	if strings.HasPrefix(got, "~") {
		t.Errorf("tilde not expanded: %s", got)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path after expansion, got %s", got)
	}
}

func TestNormalizePathCleans(t *testing.T) {
	if got := NormalizePath("a/b/../c"); got != filepath.Join("a", "c") {
		t.Errorf("expected cleaned path a/c, got %s", got)
	}
	if got := NormalizePath(""); got != "" {
		t.Errorf("empty path should stay empty, got %q", got)
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath(""); err != nil {
		t.Errorf("empty path should be valid: %v", err)
	}
	if err := ValidatePath("reports/scan.csv"); err != nil {
		t.Errorf("ordinary path should be valid: %v", err)
	}
	if err := ValidatePath("bad\x00path"); err == nil {
		t.Error("null byte should be rejected")
	}
}

func TestConfigDirOverride(t *testing.T) {
	t.Setenv("NATIDSCAN_CONFIG_DIR", "/etc/natid-scan")
	if got := GetConfigDir(); got != "/etc/natid-scan" {
		t.Errorf("override not honored, got %s", got)
	}
	if got := GetConfigFile(); got != filepath.Join("/etc/natid-scan", "config.yaml") {
		t.Errorf("unexpected config file path %s", got)
	}
	if got := GetAllowlistFile(); got != filepath.Join("/etc/natid-scan", "allowlist.yaml") {
		t.Errorf("unexpected allowlist file path %s", got)
	}
}
