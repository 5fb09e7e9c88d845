// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigOrDefault_NoFile(t *testing.T) {
	// With no config file, should return defaults without error
	cfg := LoadConfigOrDefault("")
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Defaults.Format == "" {
		t.Error("expected default format to be set")
	}
}

func TestLoadConfigOrDefault_NonexistentFile(t *testing.T) {
	// A path that doesn't exist should fall back to defaults
	cfg := LoadConfigOrDefault("/nonexistent/path/config.yaml")
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults)")
	}
}

func TestLoadConfigOrDefault_ValidFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
defaults:
  format: json
  confidence_levels: high
  countries: ES_DNI,CL_RUT
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := LoadConfigOrDefault(configPath)
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Defaults.Format != "json" {
		t.Errorf("expected format=json, got %q", cfg.Defaults.Format)
	}
	if cfg.Defaults.ConfidenceLevels != "high" {
		t.Errorf("expected confidence_levels=high, got %q", cfg.Defaults.ConfidenceLevels)
	}
	if cfg.Defaults.Countries != "ES_DNI,CL_RUT" {
		t.Errorf("expected countries to carry through, got %q", cfg.Defaults.Countries)
	}
}

func TestLoadConfigOrDefault_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bad.yaml")

	if err := os.WriteFile(configPath, []byte(":::invalid yaml:::"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Should fall back to defaults, not panic
	cfg := LoadConfigOrDefault(configPath)
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults on parse error)")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("expected default format=text, got %q", cfg.Defaults.Format)
	}
	if cfg.Defaults.ConfidenceLevels != "all" {
		t.Errorf("expected default confidence_levels=all, got %q", cfg.Defaults.ConfidenceLevels)
	}
	if cfg.Defaults.Countries != "all" {
		t.Errorf("expected default countries=all, got %q", cfg.Defaults.Countries)
	}
	if !cfg.Defaults.EnablePreprocessors {
		t.Error("expected enable_preprocessors=true by default")
	}
	if cfg.Defaults.Observability != "metrics" {
		t.Errorf("expected default observability=metrics, got %q", cfg.Defaults.Observability)
	}
}

func TestLoadConfig_ProfilesInitialized(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Profiles == nil {
		t.Error("expected profiles map to be initialized")
	}
	for _, name := range []string{"ci", "audit"} {
		if _, ok := cfg.Profiles[name]; !ok {
			t.Errorf("expected built-in profile %q to exist", name)
		}
	}
}

func TestLoadConfig_PreprocessorDefaultSurvivesPartialFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	// File sets format only; enable_preprocessors is absent and must
	// keep its true default despite YAML zeroing the field.
	if err := os.WriteFile(configPath, []byte("defaults:\n  format: csv\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Defaults.EnablePreprocessors {
		t.Error("enable_preprocessors default lost when absent from file")
	}
	if cfg.Defaults.Format != "csv" {
		t.Errorf("expected format=csv, got %q", cfg.Defaults.Format)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("NATIDSCAN_FORMAT", "yaml")
	t.Setenv("NATIDSCAN_WORKERS", "4")
	t.Setenv("NATIDSCAN_NO_COLOR", "1")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "yaml" {
		t.Errorf("env override for format not applied, got %q", cfg.Defaults.Format)
	}
	if cfg.Defaults.Workers != 4 {
		t.Errorf("env override for workers not applied, got %d", cfg.Defaults.Workers)
	}
	if !cfg.Defaults.NoColor {
		t.Error("env override for no_color not applied")
	}
}

func TestLoadConfig_RejectsBadObservability(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("defaults:\n  observability: loud\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected validation error for unknown observability level")
	}
}

func TestGetProfile(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p := cfg.GetProfile("ci"); p == nil {
		t.Error("expected ci profile")
	} else if p.Format != "json" {
		t.Errorf("ci profile format = %q, want json", p.Format)
	}
	if p := cfg.GetProfile("missing"); p != nil {
		t.Error("expected nil for unknown profile")
	}
}
