// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package natid validates national identity numbers across jurisdictions.
//
// Given a candidate token, the package determines whether its shape matches a
// registered country-specific document format and whether the embedded check
// digit or letter is mathematically consistent with the rest of the token.
// Every call is a pure function over an immutable registry built at package
// initialization; callers may validate from any number of goroutines without
// synchronization.
package natid

import "strings"

// CountryKey identifies a country/document-type pair in the registry.
type CountryKey string

// Registered country/document keys.
const (
	KeyMexicoCURP     CountryKey = "MX_CURP"
	KeyChinaRIC       CountryKey = "CN_RIC"
	KeyJapanMyNumber  CountryKey = "JP_MYNUMBER"
	KeyNetherlandsBSN CountryKey = "NL_BSN"
	KeySpainDNI       CountryKey = "ES_DNI"
	KeySpainNIE       CountryKey = "ES_NIE"
	KeyChileRUT       CountryKey = "CL_RUT"
)

// FailureKind classifies why a candidate did not fully validate. Failures are
// data, not errors: malformed or adversarial input is an expected condition.
type FailureKind string

const (
	// FailureNone marks a fully valid verdict.
	FailureNone FailureKind = ""

	// FailureNoMatchingFormat means no registered pattern (or an unknown
	// hinted key) matched the candidate.
	FailureNoMatchingFormat FailureKind = "NO_MATCHING_FORMAT"

	// FailureShapeMismatch means the hinted country's shape rejected the
	// candidate.
	FailureShapeMismatch FailureKind = "SHAPE_MISMATCH"

	// FailureChecksumMismatch means the shape matched but the computed
	// check digit/letter disagrees with the supplied one. Kept distinct
	// from FailureNoMatchingFormat: a near-miss is a lower-confidence
	// signal upstream, not noise.
	FailureChecksumMismatch FailureKind = "CHECKSUM_MISMATCH"

	// FailureSubfieldInvalid means the check digit verifies but an embedded
	// semantic sub-field (birth date, state or region code) is implausible.
	FailureSubfieldInvalid FailureKind = "SUBFIELD_INVALID"
)

// Verdict is the structured result of validating one candidate. It is created
// fresh per call and owned by the caller.
type Verdict struct {
	Candidate     string      `json:"candidate"`
	Key           CountryKey  `json:"country_key,omitempty"`
	ShapeMatched  bool        `json:"shape_matched"`
	ChecksumValid bool        `json:"checksum_valid"`
	Failure       FailureKind `json:"failure,omitempty"`
}

// OK reports whether the candidate passed shape, checksum, and any sub-field
// validation the jurisdiction defines.
func (v Verdict) OK() bool {
	return v.ShapeMatched && v.ChecksumValid && v.Failure == FailureNone
}

// DocumentInfo is the enumeration entry for one supported document type.
type DocumentInfo struct {
	Key          CountryKey `json:"key"`
	DocumentName string     `json:"document_name"`
}

// Validate checks one candidate against the registry. An empty hint tries all
// registered profiles in registration order and the first shape match wins; a
// non-empty hint restricts validation to that single profile. The call is
// synchronous, side-effect-free, and never panics on input.
func Validate(candidate string, hint CountryKey) Verdict {
	if hint != "" {
		p, ok := Lookup(hint)
		if !ok {
			return noMatchVerdict(candidate)
		}
		if !p.MatchShape(candidate) {
			return Verdict{
				Candidate: candidate,
				Key:       p.Key,
				Failure:   FailureShapeMismatch,
			}
		}
		return checksumVerdict(candidate, p)
	}

	for _, p := range profiles() {
		if p.MatchShape(candidate) {
			return checksumVerdict(candidate, p)
		}
	}
	return noMatchVerdict(candidate)
}

// ValidateAll validates candidates independently. The result preserves input
// order and has the same length as the input.
func ValidateAll(candidates []string) []Verdict {
	verdicts := make([]Verdict, len(candidates))
	for i, c := range candidates {
		verdicts[i] = Validate(c, "")
	}
	return verdicts
}

// SupportedDocuments enumerates the registered document types in registration
// order, for UI and configuration surfaces.
func SupportedDocuments() []DocumentInfo {
	ps := profiles()
	docs := make([]DocumentInfo, len(ps))
	for i, p := range ps {
		docs[i] = DocumentInfo{Key: p.Key, DocumentName: p.DocumentName}
	}
	return docs
}

// checksumVerdict runs the profile's checksum and sub-field checks on a
// candidate whose shape already matched.
func checksumVerdict(candidate string, p Profile) Verdict {
	v := Verdict{
		Candidate:    candidate,
		Key:          p.Key,
		ShapeMatched: true,
	}
	if !evalChecksum(p.Algorithm, candidate) {
		v.Failure = FailureChecksumMismatch
		return v
	}
	v.ChecksumValid = true
	if !evalSubfields(p.Algorithm, candidate) {
		// The arithmetic holds but the embedded date/region is
		// implausible; report distinctly rather than accept silently.
		v.Failure = FailureSubfieldInvalid
	}
	return v
}

func noMatchVerdict(candidate string) Verdict {
	return Verdict{
		Candidate: candidate,
		Failure:   FailureNoMatchingFormat,
	}
}

// Normalize maps a loosely formatted candidate to the canonical form the
// profile's shape expects: uppercased, with grouping separators removed where
// the jurisdiction's canonical writing has none. The Chilean RUT keeps its
// structural hyphen and thousands dots. Validate never normalizes on its own;
// callers that accept user- or OCR-formatted input apply this explicitly.
func Normalize(key CountryKey, candidate string) string {
	candidate = strings.ToUpper(strings.TrimSpace(candidate))
	if key == KeyChileRUT {
		return strings.ReplaceAll(candidate, " ", "")
	}
	for _, sep := range []string{" ", ".", "-"} {
		candidate = strings.ReplaceAll(candidate, sep, "")
	}
	return candidate
}

// ParseKey resolves a user-supplied country name to a registered key. It
// accepts full keys ("ES_DNI") and bare document names ("dni") in any case.
func ParseKey(name string) (CountryKey, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if _, ok := Lookup(CountryKey(n)); ok {
		return CountryKey(n), true
	}
	aliases := map[string]CountryKey{
		"CURP":     KeyMexicoCURP,
		"RIC":      KeyChinaRIC,
		"MYNUMBER": KeyJapanMyNumber,
		"BSN":      KeyNetherlandsBSN,
		"DNI":      KeySpainDNI,
		"NIE":      KeySpainNIE,
		"RUT":      KeyChileRUT,
	}
	key, ok := aliases[n]
	return key, ok
}
