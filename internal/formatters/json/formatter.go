// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"natid-scan/internal/detector"
	"natid-scan/internal/formatters"
	"natid-scan/internal/formatters/shared"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output for programmatic consumption"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

func (f *Formatter) Format(matches []detector.Match, allowlisted []detector.AllowlistedMatch, options formatters.FormatterOptions) (string, error) {
	filteredMatches := shared.FilterMatchesByConfidence(matches, options)
	if len(filteredMatches) == 0 && len(allowlisted) == 0 {
		return "[]", nil
	}
	return f.render(filteredMatches, allowlisted, options), nil
}

func (f *Formatter) render(matches []detector.Match, allowlisted []detector.AllowlistedMatch, options formatters.FormatterOptions) string {
	response := shared.ConvertMatchesToJSONFormat(matches, allowlisted, options)

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error formatting JSON: %v", err)
	}
	return string(jsonData)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
