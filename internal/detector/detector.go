// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detector defines the finding types shared by the scanning
// validators, the allowlist, and the output formatters.
package detector

import (
	"time"

	"natid-scan/internal/security"
)

// ContextInfo stores contextual information around a matched identity number.
type ContextInfo struct {
	// Text before and after the match on the surrounding lines
	BeforeText string
	AfterText  string

	// Line containing the match
	FullLine string

	// Contextual keywords found near the match
	PositiveKeywords []string // Keywords that increase confidence
	NegativeKeywords []string // Keywords that decrease confidence

	// Impact on confidence score
	ConfidenceImpact float64
}

// Validator is implemented by every scanning validator.
type Validator interface {
	Validate(filePath string) ([]Match, error)
	CalculateConfidence(match string) (float64, map[string]bool)

	// AnalyzeContext scores the surroundings of a match.
	AnalyzeContext(match string, context ContextInfo) float64

	// ValidateContent scans preprocessed content.
	ValidateContent(content string, originalPath string) ([]Match, error)
}

// Match is one detected national identity number.
type Match struct {
	Text       string
	SecureText *security.SecureString // Secure copy of Text, cleared after reporting
	LineNumber int
	Type       string // Registry country/document key, e.g. "ES_DNI"
	Confidence float64
	Metadata   map[string]any
	Filename   string // Path to the file where the match was found
	Validator  string // Name of the validator that created this match

	Context ContextInfo
}

// AllowlistedMatch is a finding an allowlist rule removed from the report.
type AllowlistedMatch struct {
	Match     Match      `json:"finding"`
	RuleID    string     `json:"rule_id"`
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

// Clear scrubs the sensitive fields of a match.
func (m *Match) Clear() {
	m.Text = ""
	if m.SecureText != nil {
		m.SecureText.Clear()
		m.SecureText = nil
	}
	m.Context.BeforeText = ""
	m.Context.AfterText = ""
	m.Context.FullLine = ""
}
