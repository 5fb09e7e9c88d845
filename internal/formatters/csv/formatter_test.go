// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"strings"
	"testing"

	"natid-scan/internal/detector"
	"natid-scan/internal/formatters"
)

func allLevels() map[string]bool {
	return map[string]bool{"high": true, "medium": true, "low": true}
}

func testMatch() detector.Match {
	return detector.Match{
		Text:       "111222333",
		LineNumber: 2,
		Type:       "NL_BSN",
		Confidence: 85,
		Filename:   "staff.txt",
		Metadata: map[string]interface{}{
			"document_name": "Dutch BSN",
		},
	}
}

func TestFormatHeaderRow(t *testing.T) {
	formatter := NewFormatter()
	output, err := formatter.Format(nil, nil, formatters.FormatterOptions{ConfidenceLevel: allLevels()})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	expected := "Filename,Country,Document,Confidence Level,Confidence %,Line Number,Text"
	if output != expected {
		t.Errorf("Expected header row %q, got %q", expected, output)
	}
}

func TestFormatRedactsByDefault(t *testing.T) {
	formatter := NewFormatter()
	output, err := formatter.Format([]detector.Match{testMatch()}, nil, formatters.FormatterOptions{ConfidenceLevel: allLevels()})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if strings.Contains(output, "111222333") {
		t.Error("Matched text should be redacted without ShowMatch")
	}
	if !strings.Contains(output, "[REDACTED]") {
		t.Error("Expected [REDACTED] placeholder in output")
	}
}

func TestFormatShowMatch(t *testing.T) {
	formatter := NewFormatter()
	output, err := formatter.Format([]detector.Match{testMatch()}, nil, formatters.FormatterOptions{
		ConfidenceLevel: allLevels(),
		ShowMatch:       true,
	})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if !strings.Contains(output, "staff.txt,NL_BSN,Dutch BSN,HIGH,85.0,2,111222333") {
		t.Errorf("Expected full data row, got %q", output)
	}
}

func TestFormatAllowlistedStatus(t *testing.T) {
	formatter := NewFormatter()
	active := detector.AllowlistedMatch{Match: testMatch(), RuleID: "ALW-BUILTIN-001", Reason: "specimen"}
	expired := detector.AllowlistedMatch{Match: testMatch(), RuleID: "ALW-00000002", Reason: "lapsed", Expired: true}

	output, err := formatter.Format(nil, []detector.AllowlistedMatch{active, expired}, formatters.FormatterOptions{ConfidenceLevel: allLevels()})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if !strings.Contains(output, ",ALLOWLISTED,") {
		t.Error("Expected ALLOWLISTED status column")
	}
	if !strings.Contains(output, ",ALLOWLIST_EXPIRED,") {
		t.Error("Expected ALLOWLIST_EXPIRED status column")
	}
}

func TestEscapeCSVField(t *testing.T) {
	formatter := NewFormatter()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "staff.txt", "staff.txt"},
		{"comma", "a,b", "\"a,b\""},
		{"quote", "say \"hi\"", "\"say \"\"hi\"\"\""},
		{"newline", "a\nb", "\"a\nb\""},
		{"formula equals", "=HYPERLINK(\"http://x\")", "\"'=HYPERLINK(\"\"http://x\"\")\""},
		{"formula plus", "+1234", "'+1234"},
		{"formula at", "@cmd", "'@cmd"},
		{"leading dash", "-rf", "'-rf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatter.escapeCSVField(tt.input)
			if result != tt.expected {
				t.Errorf("escapeCSVField(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}
