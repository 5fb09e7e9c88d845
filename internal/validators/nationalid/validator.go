// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nationalid

import (
	"regexp"
	"sort"
	"strings"

	"natid-scan/internal/detector"
	"natid-scan/internal/natid"
	"natid-scan/internal/observability"
)

// Validator implements the detector.Validator interface for detecting
// national identity numbers. Candidate tokens are located with
// separator-tolerant search patterns, normalized, and then judged by the
// natid engine; the checksum verdict dominates the confidence score.
type Validator struct {
	// Search patterns keyed by country. These are looser than the engine's
	// canonical shapes: they tolerate the separators people actually type
	// (spaced My Numbers, dotted RUTs, hyphenated DNIs).
	searchPatterns map[natid.CountryKey]*regexp.Regexp

	// Countries this validator scans for, in registry order.
	countries []natid.CountryKey

	// Keywords that suggest an identity-document context, per country
	positiveKeywords map[natid.CountryKey][]string

	// Keywords that suggest a number is not an identity number
	negativeKeywords []string

	// Known placeholder digit strings that appear in documentation
	knownTestNumbers map[string]bool

	// Observability
	observer *observability.StandardObserver
}

// NewValidator creates a Validator that scans for every document family
// the registry knows about.
func NewValidator() *Validator {
	return NewValidatorForCountries(nil)
}

// NewValidatorForCountries creates a Validator restricted to the given
// country keys. A nil or empty slice enables all registered countries.
// Unknown keys are ignored.
func NewValidatorForCountries(keys []natid.CountryKey) *Validator {
	enabled := map[natid.CountryKey]bool{}
	for _, k := range keys {
		enabled[k] = true
	}

	var countries []natid.CountryKey
	for _, profile := range natid.Profiles() {
		if len(enabled) == 0 || enabled[profile.Key] {
			countries = append(countries, profile.Key)
		}
	}

	return &Validator{
		searchPatterns: map[natid.CountryKey]*regexp.Regexp{
			// Mexico: CURPs are written as one unbroken token
			natid.KeyMexicoCURP: regexp.MustCompile(`\b[A-Z]{4}\d{6}[HM][A-Z]{5}[0-9A-Z]\d\b`),

			// China: 18 characters, optional lowercase final x in the wild
			natid.KeyChinaRIC: regexp.MustCompile(`\b\d{17}[0-9Xx]\b`),

			// Japan: My Numbers are usually printed in three groups of four
			natid.KeyJapanMyNumber: regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}\b`),

			// Netherlands: plain 8 or 9 digit runs
			natid.KeyNetherlandsBSN: regexp.MustCompile(`\b\d{8,9}\b`),

			// Spain: DNI digits sometimes separated from the letter
			natid.KeySpainDNI: regexp.MustCompile(`\b\d{8}[-. ]?[A-HJ-NP-TV-Z]\b`),

			// Spain: NIE with optional separators around the digit block
			natid.KeySpainNIE: regexp.MustCompile(`\b[XYZ][-. ]?\d{7}[-. ]?[A-HJ-NP-TV-Z]\b`),

			// Chile: dotted or plain body, hyphen before the verifier required
			natid.KeyChileRUT: regexp.MustCompile(`\b(?:\d{1,2}\.\d{3}\.\d{3}|\d{7,8})-[0-9Kk]\b`),
		},
		countries: countries,
		positiveKeywords: map[natid.CountryKey][]string{
			natid.KeyMexicoCURP: {
				"curp", "clave unica", "clave única", "registro de poblacion",
				"registro de población", "renapo", "mexico", "méxico", "mexican",
			},
			natid.KeyChinaRIC: {
				"身份证", "居民身份证", "公民身份号码", "shenfenzheng",
				"resident identity", "identity card", "id card", "china", "chinese",
			},
			natid.KeyJapanMyNumber: {
				"マイナンバー", "個人番号", "my number", "mynumber",
				"individual number", "japan", "japanese",
			},
			natid.KeyNetherlandsBSN: {
				"bsn", "burgerservicenummer", "sofinummer", "sofi",
				"citizen service number", "netherlands", "dutch",
			},
			natid.KeySpainDNI: {
				"dni", "documento nacional de identidad", "documento nacional",
				"nif", "spain", "spanish", "españa", "espana",
			},
			natid.KeySpainNIE: {
				"nie", "numero de identidad de extranjero",
				"número de identidad de extranjero", "extranjero", "foreigner",
				"spain", "spanish",
			},
			natid.KeyChileRUT: {
				"rut", "run", "rol unico tributario", "rol único tributario",
				"chile", "chilean", "cedula", "cédula",
			},
		},
		negativeKeywords: []string{
			// Test/fake data indicators
			"example", "test", "sample", "mock", "fake", "dummy", "placeholder",
			"template", "demo", "random", "generated", "synthetic", "fixture",

			// Technical identifiers
			"uuid", "guid", "serial", "serial number", "product code", "model",
			"version", "build", "revision", "commit", "hash", "sha",

			// Business identifiers
			"tracking", "shipment", "order", "invoice", "receipt", "transaction",
			"account number", "reference", "confirmation", "booking", "ticket",

			// Other number families that collide with digit runs
			"phone", "fax", "zip", "postal", "isbn", "ean", "barcode",
			"timestamp", "epoch", "port",
		},

		knownTestNumbers: map[string]bool{
			// Published demo values that pass their checksum. Repeated and
			// sequential digit runs are caught structurally and do not
			// need to be listed here.
			"999999990": true, // Dutch tax office test range
			"999990019": true,
			"999990020": true,
		},
	}
}

// SetObserver sets the observability component
func (v *Validator) SetObserver(observer *observability.StandardObserver) {
	v.observer = observer
}

// Countries returns the country keys this validator scans for.
func (v *Validator) Countries() []natid.CountryKey {
	out := make([]natid.CountryKey, len(v.countries))
	copy(out, v.countries)
	return out
}

// Validate implements the detector.Validator interface
func (v *Validator) Validate(filePath string) ([]detector.Match, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if v.observer != nil {
		finishTiming = v.observer.StartTiming("nationalid_validator", "validate_file", filePath)
		if v.observer.DebugObserver != nil {
			finishStep = v.observer.DebugObserver.StartStep("nationalid_validator", "validate_file", filePath)
		}
	}

	// The national ID validator only processes preprocessed content; raw
	// file paths are handled by the scan engine and its preprocessors.
	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{"match_count": 0, "direct_file_processing": false})
	}
	if finishStep != nil {
		finishStep(true, "national ID validator only processes preprocessed content")
	}
	return []detector.Match{}, nil
}

// candidateHit is a token found by a country search pattern, before the
// engine has judged it.
type candidateHit struct {
	key   natid.CountryKey
	raw   string
	start int
	end   int
}

// ValidateContent validates preprocessed content for national identity numbers
func (v *Validator) ValidateContent(content string, originalPath string) ([]detector.Match, error) {
	var finishTiming func(bool, map[string]interface{})
	if v.observer != nil {
		finishTiming = v.observer.StartTiming("nationalid_validator", "validate_content", originalPath)
	}

	var matches []detector.Match
	lines := strings.Split(content, "\n")

	for lineNum, line := range lines {
		// Extremely long unbroken lines are almost always minified or
		// encoded payloads, not prose holding identity numbers.
		if len(line) > 4096 && !strings.ContainsAny(line, " \t") {
			continue
		}

		for _, hit := range v.findCandidates(line) {
			normalized := natid.Normalize(hit.key, hit.raw)
			verdict := natid.Validate(normalized, hit.key)
			if !verdict.ShapeMatched {
				continue
			}

			confidence, checks := v.scoreVerdict(normalized, verdict)

			contextInfo := v.buildContext(lines, lineNum, hit)
			contextImpact := v.analyzeCountryContext(hit.key, contextInfo)
			if v.isTabularData(line, hit.raw) {
				contextImpact += 15
			}

			confidence += contextImpact
			if confidence > 100 {
				confidence = 100
			} else if confidence < 0 {
				confidence = 0
			}
			contextInfo.ConfidenceImpact = contextImpact

			// Matches scored to zero are false positives
			if confidence <= 0 {
				continue
			}

			profile, _ := natid.Lookup(hit.key)
			metadata := map[string]any{
				"country_key":       string(hit.key),
				"document_name":     profile.DocumentName,
				"shape_matched":     verdict.ShapeMatched,
				"checksum_valid":    verdict.ChecksumValid,
				"validation_checks": checks,
				"context_impact":    contextImpact,
				"source":            "preprocessed_content",
				"original_file":     originalPath,
			}
			if verdict.Failure != "" {
				metadata["failure"] = string(verdict.Failure)
			}

			matches = append(matches, detector.Match{
				Text:       hit.raw,
				LineNumber: lineNum + 1, // 1-based line numbering
				Type:       string(hit.key),
				Confidence: confidence,
				Filename:   originalPath,
				Validator:  "nationalid",
				Context:    contextInfo,
				Metadata:   metadata,
			})
		}
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{"match_count": len(matches), "line_count": len(lines)})
	}
	return matches, nil
}

// findCandidates runs every enabled country pattern over a line and
// resolves overlapping finds. When two countries claim overlapping text
// the longer token wins; ties go to registry order. That keeps a spaced
// DNI like "87654321 X" from also surfacing as an 8-digit BSN.
func (v *Validator) findCandidates(line string) []candidateHit {
	var hits []candidateHit
	for _, key := range v.countries {
		re, ok := v.searchPatterns[key]
		if !ok {
			continue
		}
		for _, loc := range re.FindAllStringIndex(line, -1) {
			hits = append(hits, candidateHit{
				key:   key,
				raw:   line[loc[0]:loc[1]],
				start: loc[0],
				end:   loc[1],
			})
		}
	}
	if len(hits) < 2 {
		return hits
	}

	// Longest token first so shorter overlapping reads are discarded.
	// sort.SliceStable preserves registry order between equal spans.
	sort.SliceStable(hits, func(i, j int) bool {
		return (hits[i].end - hits[i].start) > (hits[j].end - hits[j].start)
	})

	var kept []candidateHit
	for _, hit := range hits {
		overlaps := false
		for _, k := range kept {
			if hit.start < k.end && k.start < hit.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, hit)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].start < kept[j].start })
	return kept
}

// buildContext extracts a context window around a hit: up to 50
// characters each side on the same line, widened with the neighboring
// lines so labels above or below the number still count.
func (v *Validator) buildContext(lines []string, lineNum int, hit candidateHit) detector.ContextInfo {
	line := lines[lineNum]
	contextInfo := detector.ContextInfo{FullLine: line}

	start := hit.start - 50
	if start < 0 {
		start = 0
	}
	end := hit.end + 50
	if end > len(line) {
		end = len(line)
	}
	contextInfo.BeforeText = line[start:hit.start]
	contextInfo.AfterText = line[hit.end:end]

	if lineNum > 0 {
		contextInfo.BeforeText = tailOf(lines[lineNum-1], 50) + " " + contextInfo.BeforeText
	}
	if lineNum+1 < len(lines) {
		contextInfo.AfterText = contextInfo.AfterText + " " + headOf(lines[lineNum+1], 50)
	}
	return contextInfo
}

func tailOf(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func headOf(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// CalculateConfidence implements the detector.Validator interface. The
// match is judged against each enabled country in registry order and the
// first shape that accepts it supplies the verdict.
func (v *Validator) CalculateConfidence(match string) (float64, map[string]bool) {
	key := v.detectKey(match)
	if key == "" {
		return 0, map[string]bool{"shape_matched": false}
	}
	normalized := natid.Normalize(key, match)
	return v.scoreVerdict(normalized, natid.Validate(normalized, key))
}

// scoreVerdict converts an engine verdict into a base confidence score.
// A passing checksum is the dominant signal; a near-miss checksum is kept
// visible at low confidence so a permissive threshold can surface it.
func (v *Validator) scoreVerdict(normalized string, verdict natid.Verdict) (float64, map[string]bool) {
	checks := map[string]bool{
		"shape_matched":   verdict.ShapeMatched,
		"checksum_valid":  verdict.ChecksumValid,
		"subfields_valid": verdict.Failure != natid.FailureSubfieldInvalid,
		"not_test_data":   !v.isTestNumber(normalized),
	}

	var confidence float64
	switch {
	case verdict.OK():
		confidence = 85
	case verdict.Failure == natid.FailureSubfieldInvalid:
		// Checksum holds but an embedded field (birth date, region) does
		// not: plausible as a mistyped or fabricated record.
		confidence = 45
	case verdict.Failure == natid.FailureChecksumMismatch:
		confidence = 15
	default:
		return 0, checks
	}

	if !checks["not_test_data"] {
		confidence -= 30
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence, checks
}

// detectKey returns the first enabled country whose canonical shape
// accepts the match after normalization, or "" when none do.
func (v *Validator) detectKey(match string) natid.CountryKey {
	for _, key := range v.countries {
		profile, ok := natid.Lookup(key)
		if !ok {
			continue
		}
		if profile.MatchShape(natid.Normalize(key, match)) {
			return key
		}
	}
	return ""
}

// AnalyzeContext implements the detector.Validator interface
func (v *Validator) AnalyzeContext(match string, context detector.ContextInfo) float64 {
	return v.analyzeCountryContext(v.detectKey(match), context)
}

// analyzeCountryContext scores the surrounding text using the keyword
// lists for one country. Same-line keywords weigh more than keywords on
// neighboring lines; negative keywords always weigh against. The result
// is clamped to ±50 so context can tip a score but never fabricate one.
func (v *Validator) analyzeCountryContext(key natid.CountryKey, context detector.ContextInfo) float64 {
	score := 0.0
	fullLine := strings.ToLower(context.FullLine)
	surrounding := strings.ToLower(context.BeforeText + " " + context.AfterText)

	if key != "" {
		for _, keyword := range v.positiveKeywords[key] {
			if strings.Contains(fullLine, keyword) {
				score += 25
			} else if strings.Contains(surrounding, keyword) {
				score += 10
			}
		}
	}

	for _, keyword := range v.negativeKeywords {
		if strings.Contains(fullLine, keyword) {
			score -= 15
		} else if strings.Contains(surrounding, keyword) {
			score -= 8
		}
	}

	if score > 50 {
		score = 50
	} else if score < -50 {
		score = -50
	}
	return score
}

// isTestNumber reports whether a normalized candidate looks like
// placeholder data: a known sample value, one digit repeated through the
// whole number, or a straight ascending or descending run.
func (v *Validator) isTestNumber(normalized string) bool {
	digits := digitsOf(normalized)
	if len(digits) < 6 {
		return false
	}
	if v.knownTestNumbers[digits] {
		return true
	}
	return allSameDigit(digits) || isSequentialRun(digits)
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return len(digits) > 0
}

// isSequentialRun reports whether every adjacent digit pair steps by the
// same +1 or -1, wrapping 9 to 0.
func isSequentialRun(digits string) bool {
	if len(digits) < 2 {
		return false
	}
	step := (int(digits[1]-'0') - int(digits[0]-'0') + 10) % 10
	if step != 1 && step != 9 {
		return false
	}
	for i := 1; i < len(digits)-1; i++ {
		next := (int(digits[i+1]-'0') - int(digits[i]-'0') + 10) % 10
		if next != step {
			return false
		}
	}
	return true
}

// isTabularData checks whether a line looks like a delimited data row,
// which makes an embedded identity number more likely to be real.
func (v *Validator) isTabularData(line, match string) bool {
	if !strings.Contains(line, match) {
		return false
	}
	delimiters := 0
	for _, d := range []string{",", "\t", "|", ";"} {
		delimiters += strings.Count(line, d)
	}
	if delimiters >= 2 {
		return true
	}
	fields := strings.Fields(line)
	return len(fields) >= 4 && delimiters >= 1
}
