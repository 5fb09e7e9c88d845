// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"natid-scan/internal/paths"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format              string   `yaml:"format"`
		ConfidenceLevels    string   `yaml:"confidence_levels"`
		Countries           string   `yaml:"countries"`
		Verbose             bool     `yaml:"verbose"`
		Debug               bool     `yaml:"debug"`
		NoColor             bool     `yaml:"no_color"`
		Recursive           bool     `yaml:"recursive"`
		EnablePreprocessors bool     `yaml:"enable_preprocessors"`
		Workers             int      `yaml:"workers"`
		Allowlist           string   `yaml:"allowlist"`
		Observability       string   `yaml:"observability"`
		ExcludePatterns     []string `yaml:"exclude_patterns"`
	} `yaml:"defaults"`

	// Global validator configurations
	Validators map[string]map[string]interface{} `yaml:"validators"`

	// Profiles for different scanning scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a scanning profile with specific settings
type Profile struct {
	Format              string                            `yaml:"format"`
	ConfidenceLevels    string                            `yaml:"confidence_levels"`
	Countries           string                            `yaml:"countries"`
	Verbose             bool                              `yaml:"verbose"`
	Debug               bool                              `yaml:"debug"`
	NoColor             bool                              `yaml:"no_color"`
	Recursive           bool                              `yaml:"recursive"`
	EnablePreprocessors bool                              `yaml:"enable_preprocessors"`
	Workers             int                               `yaml:"workers"`
	Allowlist           string                            `yaml:"allowlist"`
	ExcludePatterns     []string                          `yaml:"exclude_patterns"`
	Description         string                            `yaml:"description"`
	Validators          map[string]map[string]interface{} `yaml:"validators"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles:   make(map[string]Profile),
		Validators: make(map[string]map[string]interface{}),
	}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.ConfidenceLevels = "all"
	config.Defaults.Countries = "all"
	config.Defaults.Verbose = false
	config.Defaults.Debug = false
	config.Defaults.NoColor = false
	config.Defaults.Recursive = false
	config.Defaults.EnablePreprocessors = true
	config.Defaults.Workers = 0 // 0 means one worker per CPU
	config.Defaults.Observability = "metrics"

	// Built-in profiles
	config.Profiles["ci"] = Profile{
		Format:              "json",
		ConfidenceLevels:    "high,medium",
		Countries:           "all",
		NoColor:             true,
		EnablePreprocessors: true,
		Description:         "Machine-readable output for CI pipelines and pre-commit hooks",
		Validators:          make(map[string]map[string]interface{}),
	}
	config.Profiles["audit"] = Profile{
		Format:              "text",
		ConfidenceLevels:    "all",
		Countries:           "all",
		Verbose:             true,
		Recursive:           true,
		EnablePreprocessors: true,
		Description:         "Full-depth review of a directory tree including low-confidence findings",
		Validators:          make(map[string]map[string]interface{}),
	}

	// If no config file specified, return default config
	if configPath == "" {
		applyEnvOverrides(config)
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Remember defaults that YAML unmarshaling would silently zero when
	// the field is absent from the file.
	defaultEnablePreprocessors := config.Defaults.EnablePreprocessors
	defaultWorkers := config.Defaults.Workers

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if !containsField(data, "defaults", "enable_preprocessors") {
		config.Defaults.EnablePreprocessors = defaultEnablePreprocessors
	}
	if !containsField(data, "defaults", "workers") {
		config.Defaults.Workers = defaultWorkers
	}

	applyEnvOverrides(config)

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// applyEnvOverrides lets NATIDSCAN_* environment variables override the
// defaults section. The CLI loads .env files before config resolution,
// so these also work from a project-local .env.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("NATIDSCAN_FORMAT"); v != "" {
		config.Defaults.Format = v
	}
	if v := os.Getenv("NATIDSCAN_COUNTRIES"); v != "" {
		config.Defaults.Countries = v
	}
	if v := os.Getenv("NATIDSCAN_CONFIDENCE_LEVELS"); v != "" {
		config.Defaults.ConfidenceLevels = v
	}
	if v := os.Getenv("NATIDSCAN_ALLOWLIST"); v != "" {
		config.Defaults.Allowlist = paths.NormalizePath(v)
	}
	if v := os.Getenv("NATIDSCAN_OBSERVABILITY"); v != "" {
		config.Defaults.Observability = v
	}
	if v := os.Getenv("NATIDSCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			config.Defaults.Workers = n
		}
	}
	if v := os.Getenv("NATIDSCAN_NO_COLOR"); v == "1" || v == "true" {
		config.Defaults.NoColor = true
	}
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	// Current directory first
	for _, name := range []string{
		"config.yaml",
		"natid-scan.yaml",
		"natid-scan.yml",
		".natid-scan.yaml",
		".natid-scan.yml",
	} {
		if fileExists(name) {
			return name
		}
	}

	// Standard config directory (override, XDG, or home)
	standardConfig := paths.GetConfigFile()
	if fileExists(standardConfig) {
		return standardConfig
	}

	// Legacy dotted file in the home directory
	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, ".natid-scan.yaml")
		if fileExists(homeConfig) {
			return homeConfig
		}
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns a list of available profile names
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			_, exists := current[key]
			return exists
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return false
		}
		current = next
	}
	return false
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := validateObservability(config.Defaults.Observability); err != nil {
		return err
	}
	if config.Defaults.Workers < 0 {
		return fmt.Errorf("workers cannot be negative: %d", config.Defaults.Workers)
	}
	if err := paths.ValidatePath(config.Defaults.Allowlist); err != nil {
		return fmt.Errorf("invalid allowlist path: %w", err)
	}

	for profileName, profile := range config.Profiles {
		if profile.Workers < 0 {
			return fmt.Errorf("workers cannot be negative in profile '%s': %d", profileName, profile.Workers)
		}
		if err := paths.ValidatePath(profile.Allowlist); err != nil {
			return fmt.Errorf("invalid allowlist path in profile '%s': %w", profileName, err)
		}
	}

	return nil
}

func validateObservability(level string) error {
	switch level {
	case "", "off", "metrics", "debug":
		return nil
	}
	return fmt.Errorf("unknown observability level: %q (expected off, metrics, or debug)", level)
}

// LoadConfigOrDefault loads configuration from configFile (or searches
// standard locations when configFile is empty). If loading fails, it
// returns a default configuration so callers never crash on a bad file.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg, _ = LoadConfig("")
	}
	return cfg
}
