// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"natid-scan/internal/detector"
	"natid-scan/internal/formatters"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(matches []detector.Match, allowlisted []detector.AllowlistedMatch, options formatters.FormatterOptions) (string, error) {
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	if len(matches) == 0 && len(allowlisted) == 0 {
		return "No identity numbers found.", nil
	}

	filteredMatches := f.filterMatchesByConfidence(matches, options)
	if len(filteredMatches) == 0 && len(allowlisted) == 0 {
		return "No identity numbers found at the specified confidence levels.", nil
	}

	return f.render(filteredMatches, allowlisted, options), nil
}

// filterMatchesByConfidence filters matches based on confidence level settings
func (f *Formatter) filterMatchesByConfidence(matches []detector.Match, options formatters.FormatterOptions) []detector.Match {
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

func (f *Formatter) render(matches []detector.Match, allowlisted []detector.AllowlistedMatch, options formatters.FormatterOptions) string {
	var builder strings.Builder

	f.sortMatches(matches)

	if !options.Verbose && (len(matches) > 0 || len(allowlisted) > 0) {
		f.appendHeaders(&builder, matches, options)
	}

	for _, match := range matches {
		confidenceLevel := f.getConfidenceLevel(match.Confidence)
		if !options.Verbose {
			f.appendSummaryLine(&builder, match, confidenceLevel, matches, "", options)
			continue
		}
		f.appendDetailedMatch(&builder, match, confidenceLevel, options)
	}

	for _, entry := range allowlisted {
		status := "ALLOW"
		if entry.Expired {
			status = "LAPSED"
		}
		if !options.Verbose {
			f.appendSummaryLine(&builder, entry.Match, "", matches, status, options)
			continue
		}
		f.appendDetailedAllowlisted(&builder, entry, options)
	}

	return builder.String()
}

// appendHeaders adds column headers to the string builder
func (f *Formatter) appendHeaders(builder *strings.Builder, matches []detector.Match, options formatters.FormatterOptions) {
	matchWidth := f.calculateMatchColumnWidth(matches, options)
	headerStr := fmt.Sprintf("%-8s %-12s %-8s %-10s %-*s %s\n",
		"LEVEL", "COUNTRY", "CONF%", "LINE", matchWidth, "MATCH", "FILE")
	if !options.NoColor {
		headerStr = f.colors["white"].Sprintf("%-8s %-12s %-8s %-10s %-*s %s\n",
			"LEVEL", "COUNTRY", "CONF%", "LINE", matchWidth, "MATCH", "FILE")
	}
	builder.WriteString(headerStr)

	totalWidth := 8 + 1 + 12 + 1 + 8 + 1 + 10 + 1 + matchWidth + 1 + 10
	separator := strings.Repeat("-", totalWidth) + "\n"
	if !options.NoColor {
		separator = f.colors["white"].Sprint(strings.Repeat("-", totalWidth) + "\n")
	}
	builder.WriteString(separator)
}

// calculateMatchColumnWidth calculates the optimal width for the match column
func (f *Formatter) calculateMatchColumnWidth(matches []detector.Match, options formatters.FormatterOptions) int {
	maxWidth := 10 // Minimum width for "[REDACTED]"
	if !options.ShowMatch && !options.Verbose {
		return maxWidth
	}
	for _, match := range matches {
		runeCount := len([]rune(f.flattenMatchText(match.Text)))
		if runeCount > maxWidth {
			maxWidth = runeCount
		}
	}
	// Identity numbers are short; anything longer is noise in the table
	if maxWidth > 30 {
		maxWidth = 30
	}
	return maxWidth
}

func (f *Formatter) flattenMatchText(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.ReplaceAll(text, "\t", " ")
}

// appendSummaryLine adds a single line summary to the string builder.
// A non-empty status renders instead of the confidence level, for
// allowlisted findings.
func (f *Formatter) appendSummaryLine(builder *strings.Builder, match detector.Match, confidenceLevel string, allMatches []detector.Match, status string, options formatters.FormatterOptions) {
	var levelColor *color.Color
	switch confidenceLevel {
	case "HIGH":
		levelColor = f.colors["red"]
	case "MEDIUM":
		levelColor = f.colors["yellow"]
	case "LOW":
		levelColor = f.colors["green"]
	default:
		levelColor = f.colors["white"]
	}

	levelText := confidenceLevel
	if status != "" {
		levelText = status
		levelColor = f.colors["white"]
	}
	levelStr := fmt.Sprintf("[%-6s]", levelText)
	if !options.NoColor {
		levelStr = levelColor.Sprintf("[%-6s]", levelText)
	}

	countryStr := fmt.Sprintf("%-12s", match.Type)
	if !options.NoColor {
		countryStr = f.colors["cyan"].Sprintf("%-12s", match.Type)
	}

	confidenceStr := fmt.Sprintf("%7.2f%%", match.Confidence)
	if !options.NoColor {
		confidenceStr = f.colors["blue"].Sprintf("%7.2f%%", match.Confidence)
	}

	lineStr := fmt.Sprintf("line %5d", match.LineNumber)
	if !options.NoColor {
		lineStr = f.colors["magenta"].Sprintf("line %5d", match.LineNumber)
	}

	targetWidth := f.calculateMatchColumnWidth(allMatches, options)
	var matchText string
	if options.ShowMatch || options.Verbose {
		matchText = f.flattenMatchText(match.Text)
		runes := []rune(matchText)
		if len(runes) > targetWidth {
			matchText = string(runes[:targetWidth-3]) + "..."
		}
	} else {
		matchText = "[REDACTED]"
	}
	if padding := targetWidth - len([]rune(matchText)); padding > 0 {
		matchText += strings.Repeat(" ", padding)
	}

	filename := f.getSmartFilename(match.Filename, allMatches)
	filenameStr := filename
	if !options.NoColor {
		filenameStr = f.colors["white"].Sprint(filename)
	}

	fmt.Fprintf(builder, "%s %s %s %s %s %s\n",
		levelStr,
		countryStr,
		confidenceStr,
		lineStr,
		matchText,
		filenameStr)
}

// appendDetailedMatch adds detailed match information to the string builder
func (f *Formatter) appendDetailedMatch(builder *strings.Builder, match detector.Match, confidenceLevel string, options formatters.FormatterOptions) {
	if !options.NoColor {
		f.colors["white"].Fprintf(builder, "=== Match Details ===\n")
	} else {
		fmt.Fprintf(builder, "=== Match Details ===\n")
	}
	f.appendMatchDetailBody(builder, match, confidenceLevel, options)
}

// appendMatchDetailBody writes the detail block shared by regular and
// allowlisted findings.
func (f *Formatter) appendMatchDetailBody(builder *strings.Builder, match detector.Match, confidenceLevel string, options formatters.FormatterOptions) {
	if !options.NoColor {
		f.colors["cyan"].Fprintf(builder, "Match found in ")
		f.colors["white"].Fprintf(builder, "%s", match.Filename)
		f.colors["cyan"].Fprintf(builder, " on ")
		f.colors["magenta"].Fprintf(builder, "line %d", match.LineNumber)
		f.colors["cyan"].Fprintf(builder, ": %s\n", match.Text)
	} else {
		fmt.Fprintf(builder, "Match found in %s on line %d: %s\n", match.Filename, match.LineNumber, match.Text)
	}

	f.appendField(builder, "Country", match.Type, options)

	if document, ok := match.Metadata["document_name"].(string); ok {
		f.appendField(builder, "Document", document, options)
	}

	var levelColor *color.Color
	switch confidenceLevel {
	case "HIGH":
		levelColor = f.colors["red"]
	case "MEDIUM":
		levelColor = f.colors["yellow"]
	default:
		levelColor = f.colors["green"]
	}

	if !options.NoColor {
		f.colors["cyan"].Fprintf(builder, "Confidence level: ")
		f.colors["white"].Fprintf(builder, "%.2f%% ", match.Confidence)
		levelColor.Fprintf(builder, "(%s)\n", confidenceLevel)
	} else {
		fmt.Fprintf(builder, "Confidence level: %.2f%% (%s)\n", match.Confidence, confidenceLevel)
	}

	if impact, ok := match.Metadata["context_impact"].(float64); ok {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "Context impact: ")
			if impact > 0 {
				f.colors["green"].Fprintf(builder, "+%.2f%%\n", impact)
			} else if impact < 0 {
				f.colors["red"].Fprintf(builder, "%.2f%%\n", impact)
			} else {
				f.colors["white"].Fprintf(builder, "0.00%%\n")
			}
		} else {
			if impact > 0 {
				fmt.Fprintf(builder, "Context impact: +%.2f%%\n", impact)
			} else {
				fmt.Fprintf(builder, "Context impact: %.2f%%\n", impact)
			}
		}
	}

	if checks, ok := match.Metadata["validation_checks"].(map[string]bool); ok {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "Validation results:\n")
		} else {
			fmt.Fprintf(builder, "Validation results:\n")
		}

		names := make([]string, 0, len(checks))
		for check := range checks {
			names = append(names, check)
		}
		sort.Strings(names)

		for _, check := range names {
			checkName := f.formatCheckName(check)
			if !options.NoColor {
				fmt.Fprintf(builder, "- %s: ", checkName)
				if checks[check] {
					f.colors["green"].Fprintf(builder, "true\n")
				} else {
					f.colors["red"].Fprintf(builder, "false\n")
				}
			} else {
				fmt.Fprintf(builder, "- %s: %v\n", checkName, checks[check])
			}
		}
	}

	if len(match.Context.PositiveKeywords) > 0 || len(match.Context.NegativeKeywords) > 0 {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "Context analysis:\n")
		} else {
			fmt.Fprintf(builder, "Context analysis:\n")
		}

		if len(match.Context.PositiveKeywords) > 0 {
			if !options.NoColor {
				fmt.Fprintf(builder, "- Supporting keywords: ")
				f.colors["green"].Fprintf(builder, "%s\n", strings.Join(match.Context.PositiveKeywords, ", "))
			} else {
				fmt.Fprintf(builder, "- Supporting keywords: %s\n", strings.Join(match.Context.PositiveKeywords, ", "))
			}
		}

		if len(match.Context.NegativeKeywords) > 0 {
			if !options.NoColor {
				fmt.Fprintf(builder, "- Contradicting keywords: ")
				f.colors["red"].Fprintf(builder, "%s\n", strings.Join(match.Context.NegativeKeywords, ", "))
			} else {
				fmt.Fprintf(builder, "- Contradicting keywords: %s\n", strings.Join(match.Context.NegativeKeywords, ", "))
			}
		}
	}

	if options.Verbose && (match.Context.BeforeText != "" || match.Context.AfterText != "") {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "Context snippet:\n")
			if match.Context.BeforeText != "" {
				fmt.Fprintf(builder, "... %s", match.Context.BeforeText)
			}
			f.colors["yellow"].Fprintf(builder, "[%s]", match.Text)
			if match.Context.AfterText != "" {
				fmt.Fprintf(builder, "%s ...\n", match.Context.AfterText)
			} else {
				fmt.Fprintln(builder)
			}
		} else {
			fmt.Fprintf(builder, "Context snippet:\n")
			fmt.Fprintf(builder, "... %s[%s]%s ...\n",
				match.Context.BeforeText,
				match.Text,
				match.Context.AfterText)
		}
	}

	fmt.Fprintln(builder)
}

// appendDetailedAllowlisted adds detailed allowlisted finding information
func (f *Formatter) appendDetailedAllowlisted(builder *strings.Builder, entry detector.AllowlistedMatch, options formatters.FormatterOptions) {
	match := entry.Match

	title := "=== Allowlisted Match Details ==="
	if entry.Expired {
		title = "=== Lapsed Allowlist Match Details ==="
	}
	if !options.NoColor {
		f.colors["white"].Fprintf(builder, "%s\n", title)
	} else {
		fmt.Fprintf(builder, "%s\n", title)
	}

	f.appendField(builder, "Allowlisted by", entry.RuleID, options)
	f.appendField(builder, "Reason", entry.Reason, options)

	if entry.ExpiresAt != nil {
		expirationStatus := f.formatExpirationStatus(entry.ExpiresAt, entry.Expired)
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "Expiration: ")
			if entry.Expired {
				f.colors["red"].Fprintf(builder, "%s\n", expirationStatus)
			} else {
				f.colors["white"].Fprintf(builder, "%s\n", expirationStatus)
			}
		} else {
			fmt.Fprintf(builder, "Expiration: %s\n", expirationStatus)
		}
	}

	f.appendMatchDetailBody(builder, match, f.getConfidenceLevel(match.Confidence), options)
}

// appendField writes one "Label: value" line with the standard colors.
func (f *Formatter) appendField(builder *strings.Builder, label, value string, options formatters.FormatterOptions) {
	if !options.NoColor {
		f.colors["cyan"].Fprintf(builder, "%s: ", label)
		f.colors["white"].Fprintf(builder, "%s\n", value)
	} else {
		fmt.Fprintf(builder, "%s: %s\n", label, value)
	}
}

// formatCheckName formats a check name from snake_case to Title Case
func (f *Formatter) formatCheckName(check string) string {
	words := strings.Split(check, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// sortMatches orders matches by confidence level (HIGH, MEDIUM, LOW),
// then by confidence score within each level.
func (f *Formatter) sortMatches(matches []detector.Match) {
	levelPriority := map[string]int{"HIGH": 0, "MEDIUM": 1, "LOW": 2}
	sort.SliceStable(matches, func(i, j int) bool {
		pi := levelPriority[f.getConfidenceLevel(matches[i].Confidence)]
		pj := levelPriority[f.getConfidenceLevel(matches[j].Confidence)]
		if pi != pj {
			return pi < pj
		}
		return matches[i].Confidence > matches[j].Confidence
	})
}

// getSmartFilename returns the basename unless another match shares it,
// in which case the parent directory disambiguates.
func (f *Formatter) getSmartFilename(fullPath string, allMatches []detector.Match) string {
	if !strings.Contains(fullPath, "/") {
		return fullPath
	}

	parts := strings.Split(fullPath, "/")
	basename := parts[len(parts)-1]

	conflicts := false
	for _, match := range allMatches {
		if match.Filename != fullPath && strings.HasSuffix(match.Filename, "/"+basename) {
			conflicts = true
			break
		}
	}
	if !conflicts {
		return basename
	}

	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + basename
	}
	return basename
}

// getConfidenceLevel returns the confidence level as a string
func (f *Formatter) getConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 80:
		return "HIGH"
	case confidence >= 50:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// formatExpirationStatus returns a human-readable expiration status
func (f *Formatter) formatExpirationStatus(expiresAt *time.Time, expired bool) string {
	if expiresAt == nil {
		return "never expires"
	}

	if expired {
		daysAgo := int(time.Since(*expiresAt).Hours() / 24)
		switch daysAgo {
		case 0:
			return "expired today"
		case 1:
			return "expired 1 day ago"
		default:
			return fmt.Sprintf("expired %d days ago", daysAgo)
		}
	}

	daysUntil := int(time.Until(*expiresAt).Hours() / 24)
	switch daysUntil {
	case 0:
		return "expires today"
	case 1:
		return "expires in 1 day"
	default:
		return fmt.Sprintf("expires in %d days", daysUntil)
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
