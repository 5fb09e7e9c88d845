// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package allowlist filters findings that are known-safe: published
// specimen numbers, official test ranges, and values a reviewer has
// deliberately accepted. Rules never store the value itself, only a
// country-scoped hash, so the allowlist file stays safe to commit.
package allowlist

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"natid-scan/internal/detector"
	"natid-scan/internal/natid"
	"natid-scan/internal/paths"
	"natid-scan/internal/security"

	"gopkg.in/yaml.v3"
)

// Rule represents a single allowlist rule
type Rule struct {
	ID        string     `yaml:"id"`
	ValueHash string     `yaml:"value_hash"`
	Country   string     `yaml:"country"`
	Reason    string     `yaml:"reason"`
	Enabled   bool       `yaml:"enabled"`
	CreatedBy string     `yaml:"created_by,omitempty"`
	CreatedAt time.Time  `yaml:"created_at"`
	ExpiresAt *time.Time `yaml:"expires_at,omitempty"`
	// FilePattern optionally restricts the rule to files whose basename
	// matches the glob.
	FilePattern string            `yaml:"file_pattern,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

// builtinCreator marks rules shipped with the scanner. They are applied
// like any other rule but never written back to the allowlist file.
const builtinCreator = "builtin"

// Config represents the allowlist configuration file
type Config struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// Manager applies allowlist rules to findings
type Manager struct {
	configPath string
	config     *Config
	enabled    bool
}

// NewManager creates an allowlist manager. An empty configPath uses the
// standard location; a missing or unreadable file yields the built-in
// rules only.
func NewManager(configPath string) *Manager {
	if configPath == "" {
		configPath = paths.GetAllowlistFile()
	}

	manager := &Manager{
		configPath: configPath,
		enabled:    true,
	}
	manager.loadConfig()
	return manager
}

func (m *Manager) loadConfig() {
	m.config = &Config{
		Version: "1.0",
		Rules:   builtinRules(),
	}

	if m.configPath == "" {
		return
	}

	data, err := os.ReadFile(filepath.Clean(m.configPath))
	if err != nil {
		return
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return
	}

	if fileConfig.Version != "" {
		m.config.Version = fileConfig.Version
	}
	m.config.Rules = append(m.config.Rules, fileConfig.Rules...)
}

// builtinRules returns the specimen and test numbers that governments
// publish for documentation. These show up constantly in manuals, form
// templates, and integration fixtures and are never real assignments.
func builtinRules() []Rule {
	seed := []struct {
		country string
		value   string
		reason  string
	}{
		{string(natid.KeySpainDNI), "99999999R", "specimen DNI used on official sample documents"},
		{string(natid.KeyNetherlandsBSN), "999999990", "Dutch tax office test number"},
		{string(natid.KeyNetherlandsBSN), "999990019", "Dutch tax office test number"},
		{string(natid.KeyNetherlandsBSN), "999990020", "Dutch tax office test number"},
		{string(natid.KeyChileRUT), "11.111.111-1", "placeholder RUT used in Chilean documentation"},
		{string(natid.KeyJapanMyNumber), "123456789018", "specimen My Number printed on sample cards"},
	}

	rules := make([]Rule, 0, len(seed))
	for i, s := range seed {
		rules = append(rules, Rule{
			ID:        fmt.Sprintf("ALW-BUILTIN-%03d", i+1),
			ValueHash: hashValue(s.country, s.value),
			Country:   s.country,
			Reason:    s.reason,
			Enabled:   true,
			CreatedBy: builtinCreator,
			Metadata: map[string]string{
				"country":    s.country,
				"value_hint": security.Mask(canonicalValue(s.value)),
			},
		})
	}
	return rules
}

// canonicalValue reduces a value to its separator-free uppercase form so
// "12.345.678-5", "12345678-5", and "12345678 - 5" hash identically.
func canonicalValue(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch r {
		case ' ', '.', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// hashValue hashes a canonical value scoped by country key. Scoping
// keeps an allowlisted Dutch test number from accidentally allowlisting
// the same digits read as another country's document.
func hashValue(country, value string) string {
	composite := country + "|" + canonicalValue(value)
	hash := sha256.Sum256([]byte(composite))
	return fmt.Sprintf("%x", hash)
}

// IsAllowlisted checks whether a finding matches an active rule
func (m *Manager) IsAllowlisted(match detector.Match) (bool, *Rule) {
	if !m.enabled || m.config == nil {
		return false, nil
	}

	valueHash := hashValue(match.Type, match.Text)
	now := time.Now()

	for i := range m.config.Rules {
		rule := &m.config.Rules[i]
		if !rule.Enabled || rule.ValueHash != valueHash {
			continue
		}
		if rule.Country != "" && rule.Country != match.Type {
			continue
		}
		if rule.ExpiresAt != nil && now.After(*rule.ExpiresAt) {
			continue
		}
		if !ruleAppliesToFile(rule, match.Filename) {
			continue
		}
		return true, rule
	}
	return false, nil
}

// ExpiredRuleFor returns a rule that would have allowlisted the finding
// but has lapsed, so reports can flag findings that were accepted once
// and have come back out of grace.
func (m *Manager) ExpiredRuleFor(match detector.Match) *Rule {
	if !m.enabled || m.config == nil {
		return nil
	}

	valueHash := hashValue(match.Type, match.Text)
	now := time.Now()

	for i := range m.config.Rules {
		rule := &m.config.Rules[i]
		if !rule.Enabled || rule.ValueHash != valueHash {
			continue
		}
		if rule.Country != "" && rule.Country != match.Type {
			continue
		}
		if rule.ExpiresAt != nil && now.After(*rule.ExpiresAt) && ruleAppliesToFile(rule, match.Filename) {
			return rule
		}
	}
	return nil
}

func ruleAppliesToFile(rule *Rule, filename string) bool {
	if rule.FilePattern == "" {
		return true
	}
	matched, err := filepath.Match(rule.FilePattern, filepath.Base(filename))
	return err == nil && matched
}

// AddValue adds an allowlist rule for a value. The country must be a
// registered key or alias. Only the hash is persisted.
func (m *Manager) AddValue(country, value, reason, createdBy string, expiresAt *time.Time) (*Rule, error) {
	key, ok := natid.ParseKey(country)
	if !ok {
		return nil, fmt.Errorf("unknown country key: %q", country)
	}
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("value cannot be empty")
	}

	valueHash := hashValue(string(key), value)
	for _, rule := range m.config.Rules {
		if rule.ValueHash == valueHash {
			return nil, fmt.Errorf("allowlist rule already exists for this value (%s)", rule.ID)
		}
	}

	rule := Rule{
		ID:        m.nextID(),
		ValueHash: valueHash,
		Country:   string(key),
		Reason:    reason,
		Enabled:   true,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		Metadata: map[string]string{
			"country":    string(key),
			"value_hint": security.Mask(canonicalValue(value)),
		},
	}

	m.config.Rules = append(m.config.Rules, rule)
	if err := m.saveConfig(); err != nil {
		return nil, err
	}
	return &rule, nil
}

// nextID generates a sequential rule ID, skipping built-ins.
func (m *Manager) nextID() string {
	maxID := 0
	for _, rule := range m.config.Rules {
		var num int
		if _, err := fmt.Sscanf(rule.ID, "ALW-%08d", &num); err == nil && num > maxID {
			maxID = num
		}
	}
	return fmt.Sprintf("ALW-%08d", maxID+1)
}

// RemoveRule removes a rule by ID. Built-in rules cannot be removed,
// only disabled in the allowlist file by shadowing.
func (m *Manager) RemoveRule(id string) error {
	for i, rule := range m.config.Rules {
		if rule.ID != id {
			continue
		}
		if rule.CreatedBy == builtinCreator {
			return fmt.Errorf("built-in rule %s cannot be removed", id)
		}
		m.config.Rules = append(m.config.Rules[:i], m.config.Rules[i+1:]...)
		return m.saveConfig()
	}
	return fmt.Errorf("allowlist rule with ID %s not found", id)
}

// ListRules returns all rules, built-ins included
func (m *Manager) ListRules() []Rule {
	if m.config == nil {
		return []Rule{}
	}
	out := make([]Rule, len(m.config.Rules))
	copy(out, m.config.Rules)
	return out
}

// CleanupExpired removes expired user rules and reports how many were
// dropped. Built-ins never expire.
func (m *Manager) CleanupExpired() int {
	if m.config == nil {
		return 0
	}

	now := time.Now()
	var active []Rule
	removed := 0
	for _, rule := range m.config.Rules {
		if rule.ExpiresAt != nil && now.After(*rule.ExpiresAt) && rule.CreatedBy != builtinCreator {
			removed++
			continue
		}
		active = append(active, rule)
	}

	m.config.Rules = active
	if removed > 0 {
		m.saveConfig()
	}
	return removed
}

// saveConfig persists user rules with restrictive permissions.
// Built-ins are stripped first so the file holds only local decisions.
func (m *Manager) saveConfig() error {
	if m.configPath == "" {
		m.configPath = paths.GetAllowlistFile()
	}

	persisted := &Config{Version: m.config.Version}
	for _, rule := range m.config.Rules {
		if rule.CreatedBy != builtinCreator {
			persisted.Rules = append(persisted.Rules, rule)
		}
	}

	data, err := yaml.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("failed to marshal allowlist config: %w", err)
	}

	dir := filepath.Dir(m.configPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write allowlist config: %w", err)
	}
	return nil
}

// SetEnabled enables or disables the allowlist manager
func (m *Manager) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// IsEnabled returns whether the allowlist manager is enabled
func (m *Manager) IsEnabled() bool {
	return m.enabled
}

// GetConfigPath returns the path to the allowlist config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
