// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package allowlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"natid-scan/internal/detector"
	"natid-scan/internal/natid"
)

func newTestMatch(matchType, text, filename string) detector.Match {
	return detector.Match{
		Type:       matchType,
		Text:       text,
		Filename:   filename,
		LineNumber: 1,
		Confidence: 85,
	}
}

func TestNewManager_NoFile(t *testing.T) {
	m := NewManager("/nonexistent/path.yaml")
	if m == nil {
		t.Fatal("expected non-nil manager")
	}
	if !m.IsEnabled() {
		t.Error("allowlist manager should be enabled by default")
	}
	if len(m.ListRules()) == 0 {
		t.Error("built-in rules should be present even without a file")
	}
}

func TestBuiltinSpecimenValues(t *testing.T) {
	m := NewManager("/nonexistent/path.yaml")

	cases := []struct {
		name  string
		match detector.Match
	}{
		{"spanish specimen dni", newTestMatch(string(natid.KeySpainDNI), "99999999R", "manual.txt")},
		{"dutch test bsn", newTestMatch(string(natid.KeyNetherlandsBSN), "999990019", "fixtures.csv")},
		{"chilean placeholder dotted", newTestMatch(string(natid.KeyChileRUT), "11.111.111-1", "doc.txt")},
		{"chilean placeholder plain", newTestMatch(string(natid.KeyChileRUT), "11111111-1", "doc.txt")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, rule := m.IsAllowlisted(tc.match)
			if !allowed {
				t.Fatal("expected built-in rule to apply")
			}
			if rule.CreatedBy != builtinCreator {
				t.Errorf("expected builtin creator, got %q", rule.CreatedBy)
			}
		})
	}
}

func TestCountryScopingPreventsCrossMatches(t *testing.T) {
	m := NewManager("/nonexistent/path.yaml")

	// Same digits as the allowlisted Dutch test number, but claimed as a
	// different document family.
	match := newTestMatch(string(natid.KeyChinaRIC), "999990019", "file.txt")
	if allowed, _ := m.IsAllowlisted(match); allowed {
		t.Error("rule scoped to NL_BSN must not apply to other countries")
	}
}

func TestAddValueAndIsAllowlisted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.yaml")

	m := NewManager(path)
	rule, err := m.AddValue("ES_DNI", "87654321X", "seed data for staging", "tester", nil)
	if err != nil {
		t.Fatalf("AddValue failed: %v", err)
	}
	if rule.ID == "" {
		t.Error("expected rule ID to be assigned")
	}

	allowed, got := m.IsAllowlisted(newTestMatch("ES_DNI", "87654321X", "staging.sql"))
	if !allowed {
		t.Error("value should be allowlisted after AddValue")
	}
	if got.Reason != "seed data for staging" {
		t.Errorf("unexpected reason %q", got.Reason)
	}

	// Separator variants hash to the same rule
	allowed, _ = m.IsAllowlisted(newTestMatch("ES_DNI", "87654321 X", "staging.sql"))
	if !allowed {
		t.Error("separator variant should hit the same rule")
	}
}

func TestAddValueRejectsUnknownCountry(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "allowlist.yaml"))
	if _, err := m.AddValue("XX_BOGUS", "12345", "nope", "tester", nil); err == nil {
		t.Error("expected error for unknown country key")
	}
}

func TestAddValueAcceptsAliases(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "allowlist.yaml"))
	rule, err := m.AddValue("rut", "12.345.678-5", "documentation sample", "tester", nil)
	if err != nil {
		t.Fatalf("AddValue with alias failed: %v", err)
	}
	if rule.Country != string(natid.KeyChileRUT) {
		t.Errorf("alias not resolved, got %q", rule.Country)
	}
}

func TestValueNotStoredInFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.yaml")

	m := NewManager(path)
	if _, err := m.AddValue("NL_BSN", "111222333", "fixture", "tester", nil); err != nil {
		t.Fatalf("AddValue failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading allowlist file: %v", err)
	}
	if strings.Contains(string(data), "111222333") {
		t.Error("raw value must not appear in the allowlist file")
	}
	if !strings.Contains(string(data), "value_hash") {
		t.Error("expected hashed value in file")
	}
}

func TestExpiredRulesDoNotApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.yaml")

	m := NewManager(path)
	past := time.Now().Add(-time.Hour)
	if _, err := m.AddValue("ES_DNI", "12345679S", "short-lived acceptance", "tester", &past); err != nil {
		t.Fatalf("AddValue failed: %v", err)
	}

	match := newTestMatch("ES_DNI", "12345679S", "file.txt")
	if allowed, _ := m.IsAllowlisted(match); allowed {
		t.Error("expired rule should not allowlist")
	}
	if expired := m.ExpiredRuleFor(match); expired == nil {
		t.Error("expected ExpiredRuleFor to surface the lapsed rule")
	}
}

func TestCleanupExpired(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.yaml")

	m := NewManager(path)
	builtins := len(builtinRules())

	past := time.Now().Add(-time.Hour)
	if _, err := m.AddValue("CL_RUT", "12345678-5", "expired", "tester", &past); err != nil {
		t.Fatalf("AddValue failed: %v", err)
	}

	if removed := m.CleanupExpired(); removed != 1 {
		t.Errorf("expected 1 expired rule removed, got %d", removed)
	}
	if got := len(m.ListRules()); got != builtins {
		t.Errorf("expected only %d built-ins to remain, got %d", builtins, got)
	}
}

func TestRemoveRule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.yaml")

	m := NewManager(path)
	rule, err := m.AddValue("JP_MYNUMBER", "123456789012", "fixture", "tester", nil)
	if err != nil {
		t.Fatalf("AddValue failed: %v", err)
	}

	if err := m.RemoveRule(rule.ID); err != nil {
		t.Fatalf("RemoveRule failed: %v", err)
	}
	if allowed, _ := m.IsAllowlisted(newTestMatch("JP_MYNUMBER", "123456789012", "f.txt")); allowed {
		t.Error("value should not be allowlisted after rule removal")
	}

	if err := m.RemoveRule("ALW-BUILTIN-001"); err == nil {
		t.Error("built-in rules must not be removable")
	}
}

func TestFilePatternScoping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.yaml")

	m := NewManager(path)
	rule, err := m.AddValue("NL_BSN", "11122237", "fixtures only", "tester", nil)
	if err != nil {
		t.Fatalf("AddValue failed: %v", err)
	}

	// Narrow the rule to fixture files
	for i := range m.config.Rules {
		if m.config.Rules[i].ID == rule.ID {
			m.config.Rules[i].FilePattern = "*_fixtures.sql"
		}
	}

	if allowed, _ := m.IsAllowlisted(newTestMatch("NL_BSN", "11122237", "/data/users_fixtures.sql")); !allowed {
		t.Error("rule should apply to matching basename")
	}
	if allowed, _ := m.IsAllowlisted(newTestMatch("NL_BSN", "11122237", "/data/production.sql")); allowed {
		t.Error("rule should not apply outside the file pattern")
	}
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowlist.yaml")

	m1 := NewManager(path)
	if _, err := m1.AddValue("CN_RIC", "110101199003078515", "sample record", "tester", nil); err != nil {
		t.Fatalf("AddValue failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("allowlist file should have been created")
	}

	m2 := NewManager(path)
	allowed, _ := m2.IsAllowlisted(newTestMatch("CN_RIC", "110101199003078515", "any.txt"))
	if !allowed {
		t.Error("allowlist rule should persist across manager instances")
	}

	// Built-ins are not duplicated by the reload
	count := 0
	for _, rule := range m2.ListRules() {
		if rule.CreatedBy == builtinCreator {
			count++
		}
	}
	if count != len(builtinRules()) {
		t.Errorf("expected %d built-in rules after reload, got %d", len(builtinRules()), count)
	}
}

func TestSetEnabled(t *testing.T) {
	m := NewManager("/nonexistent/path.yaml")
	m.SetEnabled(false)
	if allowed, _ := m.IsAllowlisted(newTestMatch("ES_DNI", "99999999R", "f.txt")); allowed {
		t.Error("disabled manager should not allowlist anything")
	}
	m.SetEnabled(true)
	if allowed, _ := m.IsAllowlisted(newTestMatch("ES_DNI", "99999999R", "f.txt")); !allowed {
		t.Error("re-enabled manager should apply rules again")
	}
}
