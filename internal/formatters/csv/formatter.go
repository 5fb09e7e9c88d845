// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/json"
	"fmt"
	"strings"

	"natid-scan/internal/detector"
	"natid-scan/internal/formatters"
	"natid-scan/internal/formatters/shared"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(matches []detector.Match, allowlisted []detector.AllowlistedMatch, options formatters.FormatterOptions) (string, error) {
	filteredMatches := shared.FilterMatchesByConfidence(matches, options)

	headers := []string{"Filename", "Country", "Document", "Confidence Level", "Confidence %", "Line Number", "Text"}
	if options.Verbose {
		headers = append(headers, "Metadata")
	}

	csvRows := []string{strings.Join(headers, ",")}

	for _, match := range filteredMatches {
		csvRows = append(csvRows, f.createRow(match, options, ""))
	}

	// Allowlisted findings keep their row shape; the level column carries
	// the allowlist status instead of a confidence bucket.
	for _, entry := range allowlisted {
		status := "ALLOWLISTED"
		if entry.Expired {
			status = "ALLOWLIST_EXPIRED"
		}
		csvRows = append(csvRows, f.createRow(entry.Match, options, status))
	}

	return strings.Join(csvRows, "\n"), nil
}

// createRow renders one finding. A non-empty status overrides the
// confidence level column.
func (f *Formatter) createRow(match detector.Match, options formatters.FormatterOptions, status string) string {
	confidenceLevel := shared.GetConfidenceLevel(match.Confidence)
	if status != "" {
		confidenceLevel = status
	}

	displayText := "[REDACTED]"
	if options.ShowMatch {
		displayText = match.Text
	}

	document, _ := match.Metadata["document_name"].(string)

	row := []string{
		f.escapeCSVField(match.Filename),
		f.escapeCSVField(match.Type),
		f.escapeCSVField(document),
		f.escapeCSVField(confidenceLevel),
		fmt.Sprintf("%.1f", match.Confidence),
		fmt.Sprintf("%d", match.LineNumber),
		f.escapeCSVField(displayText),
	}

	if options.Verbose && match.Metadata != nil {
		metadataJSON, err := json.Marshal(match.Metadata)
		if err != nil {
			row = append(row, f.escapeCSVField("Error serializing metadata"))
		} else {
			row = append(row, f.escapeCSVField(string(metadataJSON)))
		}
	}

	return strings.Join(row, ",")
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	if strings.ContainsAny(field, ",\"\n\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection neutralizes leading formula characters so an
// identity number or file path cannot execute when the CSV is opened in
// a spreadsheet.
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
