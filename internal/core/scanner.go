// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core wires the detection pipeline together: preprocessing,
// validation, confidence filtering, and the allowlist. The CLI and the
// parallel directory scanner both run files through this package.
package core

import (
	"fmt"
	"os"
	"strings"

	"natid-scan/internal/allowlist"
	"natid-scan/internal/detector"
	"natid-scan/internal/observability"
	"natid-scan/internal/preprocessors"
)

// ScanConfig holds configuration for scanning operations.
type ScanConfig struct {
	FilePath            string
	Countries           []string
	ConfidenceLevels    string
	Debug               bool
	EnablePreprocessors bool
	// Observability is the observation level name: off, metrics, or
	// debug. Debug=true forces the debug level.
	Observability string
	// AllowlistManager, when non-nil, is applied to matches before
	// returning. ScanResult.AllowlistedMatches is populated accordingly.
	AllowlistManager *allowlist.Manager
}

// ScanResult holds the results of a scanning operation.
type ScanResult struct {
	Matches []detector.Match
	// AllowlistedMatches lists findings an allowlist rule removed, plus
	// advisory entries for findings whose rule has lapsed. Lapsed
	// findings also remain in Matches.
	AllowlistedMatches []detector.AllowlistedMatch
	AllowlistedCount   int
	ProcessedFiles     int
	Error              error
}

// Scanner bundles the shared pieces of a scan run: one observer, one
// preprocessor fleet, one validator set, one allowlist. Build it once
// and reuse it across files; ScanFile is safe for concurrent use.
type Scanner struct {
	observer     *observability.StandardObserver
	preprocessor *preprocessors.PreprocessorManager
	validators   map[string]detector.Validator
	allowlist    *allowlist.Manager
	levels       map[string]bool
}

// NewScanner builds a scanner from the configuration. Country names are
// resolved here so an invalid selection fails before any file is read.
func NewScanner(scanConfig ScanConfig) (*Scanner, error) {
	level := observability.ParseLevel(scanConfig.Observability)
	if scanConfig.Debug {
		level = observability.LevelDebug
	}
	observer := observability.NewStandardObserver(level, os.Stderr)

	keys, err := ParseCountriesToRun(scanConfig.Countries)
	if err != nil {
		return nil, err
	}

	pm := preprocessors.NewPreprocessorManager()
	if scanConfig.EnablePreprocessors {
		preprocessors.RegisterDefaultPreprocessors(pm, observer)
	} else {
		pt := preprocessors.NewPlainTextPreprocessor()
		pt.SetObserver(observer)
		pm.RegisterPreprocessor(pt)
	}

	return &Scanner{
		observer:     observer,
		preprocessor: pm,
		validators:   BuildValidatorSet(keys, observer),
		allowlist:    scanConfig.AllowlistManager,
		levels:       ParseConfidenceLevels(scanConfig.ConfidenceLevels),
	}, nil
}

// Observer returns the run's shared observer.
func (s *Scanner) Observer() *observability.StandardObserver {
	return s.observer
}

// CanProcess reports whether any preprocessor can handle the file.
func (s *Scanner) CanProcess(filePath string) bool {
	return s.preprocessor.CanProcessFile(filePath)
}

// ScanFile runs the pipeline on one file: extract text, detect identity
// numbers, filter by confidence level, then apply the allowlist. Errors
// are carried in the result so a directory scan can keep going.
func (s *Scanner) ScanFile(filePath string) *ScanResult {
	result := &ScanResult{ProcessedFiles: 1}

	processed, err := s.preprocessor.ProcessFile(filePath)
	if err != nil {
		result.Error = fmt.Errorf("extracting text from %s: %w", filePath, err)
		return result
	}
	if !processed.Success {
		if processed.Error != nil {
			result.Error = fmt.Errorf("cannot process %s: %w", filePath, processed.Error)
		} else {
			result.Error = fmt.Errorf("cannot process %s: unsupported file type", filePath)
		}
		return result
	}

	for _, validator := range s.validators {
		matches, err := validator.ValidateContent(processed.Text, filePath)
		if err != nil {
			result.Error = fmt.Errorf("validating %s: %w", filePath, err)
			return result
		}
		kept, allowlisted := s.applyFilters(matches)
		result.Matches = append(result.Matches, kept...)
		result.AllowlistedMatches = append(result.AllowlistedMatches, allowlisted...)
	}

	result.AllowlistedCount = len(result.AllowlistedMatches)
	return result
}

// applyFilters drops matches outside the requested confidence levels and
// applies allowlist rules. A finding under an active rule moves to the
// allowlisted list; a finding whose rule has lapsed stays in the report
// and gains an advisory entry marked Expired.
func (s *Scanner) applyFilters(matches []detector.Match) ([]detector.Match, []detector.AllowlistedMatch) {
	var kept []detector.Match
	var allowlisted []detector.AllowlistedMatch

	for _, match := range matches {
		if !s.levels[ConfidenceLevelOf(match.Confidence)] {
			continue
		}
		if s.allowlist != nil {
			if ok, rule := s.allowlist.IsAllowlisted(match); ok {
				allowlisted = append(allowlisted, detector.AllowlistedMatch{
					Match:     match,
					RuleID:    rule.ID,
					Reason:    rule.Reason,
					ExpiresAt: rule.ExpiresAt,
				})
				continue
			}
			if rule := s.allowlist.ExpiredRuleFor(match); rule != nil {
				allowlisted = append(allowlisted, detector.AllowlistedMatch{
					Match:     match,
					RuleID:    rule.ID,
					Reason:    rule.Reason,
					ExpiresAt: rule.ExpiresAt,
					Expired:   true,
				})
			}
		}
		kept = append(kept, match)
	}
	return kept, allowlisted
}

// ScanFile performs the core scanning logic shared by the CLI and the
// fixture tooling: build a scanner for one configuration and run a
// single file through it.
func ScanFile(scanConfig ScanConfig) (*ScanResult, error) {
	scanner, err := NewScanner(scanConfig)
	if err != nil {
		return nil, err
	}
	result := scanner.ScanFile(scanConfig.FilePath)
	if result.Error != nil {
		return nil, result.Error
	}
	return result, nil
}

// ConfidenceLevelOf buckets a confidence score into the reporting levels
// used for filtering and display.
func ConfidenceLevelOf(confidence float64) string {
	switch {
	case confidence >= 80:
		return "high"
	case confidence >= 50:
		return "medium"
	default:
		return "low"
	}
}

// ParseConfidenceLevels converts a comma-separated confidence level string into a map.
// "all" or empty string enables every level.
func ParseConfidenceLevels(levels string) map[string]bool {
	result := map[string]bool{
		"high":   false,
		"medium": false,
		"low":    false,
	}

	if levels == "all" || levels == "" {
		result["high"] = true
		result["medium"] = true
		result["low"] = true
		return result
	}

	for _, level := range strings.Split(levels, ",") {
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "high", "medium", "low":
			result[strings.ToLower(strings.TrimSpace(level))] = true
		}
	}

	return result
}
