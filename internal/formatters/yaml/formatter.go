// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package yaml

import (
	"fmt"

	"natid-scan/internal/detector"
	"natid-scan/internal/formatters"
	"natid-scan/internal/formatters/shared"

	"gopkg.in/yaml.v3"
)

// Formatter implements YAML output formatting
type Formatter struct{}

// NewFormatter creates a new YAML formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "yaml"
}

func (f *Formatter) Description() string {
	return "YAML format output, structurally identical to the JSON format"
}

func (f *Formatter) FileExtension() string {
	return ".yaml"
}

func (f *Formatter) Format(matches []detector.Match, allowlisted []detector.AllowlistedMatch, options formatters.FormatterOptions) (string, error) {
	filteredMatches := shared.FilterMatchesByConfidence(matches, options)
	if len(filteredMatches) == 0 && len(allowlisted) == 0 {
		return "results: []\n", nil
	}
	return f.render(filteredMatches, allowlisted, options), nil
}

func (f *Formatter) render(matches []detector.Match, allowlisted []detector.AllowlistedMatch, options formatters.FormatterOptions) string {
	// Same conversion as the JSON formatter so the two formats never drift
	response := shared.ConvertMatchesToJSONFormat(matches, allowlisted, options)

	yamlData, err := yaml.Marshal(response)
	if err != nil {
		return fmt.Sprintf("Error formatting YAML: %v", err)
	}
	return string(yamlData)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
