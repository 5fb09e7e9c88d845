// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"time"

	"github.com/google/uuid"

	"natid-scan/internal/detector"
	"natid-scan/internal/formatters"
)

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	Results     []JSONMatch        `json:"results" yaml:"results"`
	Allowlisted []AllowlistedEntry `json:"allowlisted,omitempty" yaml:"allowlisted,omitempty"`
}

// JSONMatch represents a single finding in JSON/YAML format. Each finding
// gets a fresh ID so report consumers can reference individual rows.
type JSONMatch struct {
	ID              string                 `json:"id" yaml:"id"`
	Text            string                 `json:"text" yaml:"text"`
	LineNumber      int                    `json:"line_number" yaml:"line_number"`
	Country         string                 `json:"country" yaml:"country"`
	Document        string                 `json:"document,omitempty" yaml:"document,omitempty"`
	Confidence      float64                `json:"confidence" yaml:"confidence"`
	ConfidenceLevel string                 `json:"confidence_level" yaml:"confidence_level"`
	Filename        string                 `json:"filename" yaml:"filename"`
	Validator       string                 `json:"validator,omitempty" yaml:"validator,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	FullLine        string                 `json:"full_line,omitempty" yaml:"full_line,omitempty"`
	BeforeText      string                 `json:"before_text,omitempty" yaml:"before_text,omitempty"`
	AfterText       string                 `json:"after_text,omitempty" yaml:"after_text,omitempty"`
}

// AllowlistedEntry is a finding an allowlist rule matched, reduced to
// what a report consumer needs to audit the rule.
type AllowlistedEntry struct {
	Finding   JSONMatch  `json:"finding" yaml:"finding"`
	RuleID    string     `json:"rule_id" yaml:"rule_id"`
	Reason    string     `json:"reason" yaml:"reason"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired   bool       `json:"expired,omitempty" yaml:"expired,omitempty"`
}

// FilterMatchesByConfidence filters matches based on confidence level settings
func FilterMatchesByConfidence(matches []detector.Match, options formatters.FormatterOptions) []detector.Match {
	var filtered []detector.Match
	for _, match := range matches {
		if (match.Confidence >= 80 && options.ConfidenceLevel["high"]) ||
			(match.Confidence >= 50 && match.Confidence < 80 && options.ConfidenceLevel["medium"]) ||
			(match.Confidence < 50 && options.ConfidenceLevel["low"]) {
			filtered = append(filtered, match)
		}
	}
	return filtered
}

// GetConfidenceLevel returns the confidence level as a string
func GetConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 80:
		return "HIGH"
	case confidence >= 50:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// ConvertMatchesToJSONFormat converts detector matches to JSON/YAML format
func ConvertMatchesToJSONFormat(matches []detector.Match, allowlisted []detector.AllowlistedMatch, options formatters.FormatterOptions) JSONResponse {
	jsonMatches := make([]JSONMatch, 0, len(matches))
	for _, match := range matches {
		jsonMatches = append(jsonMatches, convertMatch(match, options))
	}

	var entries []AllowlistedEntry
	for _, entry := range allowlisted {
		entries = append(entries, AllowlistedEntry{
			Finding:   convertMatch(entry.Match, options),
			RuleID:    entry.RuleID,
			Reason:    entry.Reason,
			ExpiresAt: entry.ExpiresAt,
			Expired:   entry.Expired,
		})
	}

	return JSONResponse{
		Results:     jsonMatches,
		Allowlisted: entries,
	}
}

func convertMatch(match detector.Match, options formatters.FormatterOptions) JSONMatch {
	metadata := make(map[string]interface{})
	for k, v := range match.Metadata {
		metadata[k] = v
	}

	document, _ := match.Metadata["document_name"].(string)

	jsonMatch := JSONMatch{
		ID:              uuid.NewString(),
		Text:            match.Text,
		LineNumber:      match.LineNumber,
		Country:         match.Type,
		Document:        document,
		Confidence:      match.Confidence,
		ConfidenceLevel: GetConfidenceLevel(match.Confidence),
		Filename:        match.Filename,
		Validator:       match.Validator,
		Metadata:        metadata,
	}

	if options.Verbose {
		if match.Context.FullLine != "" {
			jsonMatch.FullLine = match.Context.FullLine
		}
		if match.Context.BeforeText != "" {
			jsonMatch.BeforeText = match.Context.BeforeText
		}
		if match.Context.AfterText != "" {
			jsonMatch.AfterText = match.Context.AfterText
		}
	}

	return jsonMatch
}
