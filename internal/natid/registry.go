// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package natid

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// AlgorithmID selects a checksum algorithm from the closed family in
// checksum.go. The set is small, fixed, and dispatched through a single
// switch rather than interface values.
type AlgorithmID uint8

const (
	// AlgorithmCURPMod10 is Mexico's positional weighted mod-10 over a
	// 37-rune alphabet, with birth-date and state sub-field validation.
	AlgorithmCURPMod10 AlgorithmID = iota

	// AlgorithmRICMod11 is China's weighted mod-11 over a fixed 17-weight
	// vector, with birth-date and province sub-field validation.
	AlgorithmRICMod11

	// AlgorithmMyNumberMod10 is Japan's digit-folding mod-10.
	AlgorithmMyNumberMod10

	// AlgorithmBSNElevenProof is the Dutch signed-weight 11-proof.
	AlgorithmBSNElevenProof

	// AlgorithmDNIMod23 is Spain's mod-23 letter lookup.
	AlgorithmDNIMod23

	// AlgorithmNIEMod23 is AlgorithmDNIMod23 with the X/Y/Z prefix
	// remapped to a leading digit.
	AlgorithmNIEMod23

	// AlgorithmRUTMod11 is Chile's weighted mod-11 with cyclic weights.
	AlgorithmRUTMod11
)

// Profile binds a country/document key to its shape pattern, checksum
// algorithm, and display metadata. Profiles are built once at package
// initialization and never mutated afterward.
type Profile struct {
	Key            CountryKey
	DocumentName   string
	Algorithm      AlgorithmID
	ExpectedLength int

	pattern string
	shape   *regexp.Regexp
}

// MatchShape reports whether the candidate matches the profile's anchored
// pattern. Go regexp evaluation holds no state between calls, so concurrent
// and repeated matching is safe and deterministic.
func (p Profile) MatchShape(candidate string) bool {
	return p.shape.MatchString(candidate)
}

// Pattern returns the profile's anchored shape pattern source.
func (p Profile) Pattern() string {
	return p.pattern
}

// registryTable is the process-wide constant registry. Registration order is
// the try-all order used by Validate without a hint.
type registryTable struct {
	rows  []Profile
	byKey map[CountryKey]int
}

var registry = mustBuildRegistry()

// Lookup returns the profile registered for key.
func Lookup(key CountryKey) (Profile, bool) {
	i, ok := registry.byKey[key]
	if !ok {
		return Profile{}, false
	}
	return registry.rows[i], true
}

// Profiles returns the registered profiles in registration order.
func Profiles() []Profile {
	out := make([]Profile, len(registry.rows))
	copy(out, registry.rows)
	return out
}

func profiles() []Profile {
	return registry.rows
}

// mustBuildRegistry compiles the registry rows and cross-checks every lookup
// table against its modulus space. A mismatch here is a build defect, so it
// panics before any validation call can be served. Adding a jurisdiction is
// one row in this table plus its algorithm in checksum.go.
func mustBuildRegistry() *registryTable {
	verifyTables()

	rows := []Profile{
		{
			Key:            KeyMexicoCURP,
			DocumentName:   "Mexican CURP",
			Algorithm:      AlgorithmCURPMod10,
			ExpectedLength: 18,
			pattern:        `^[A-Z]{4}\d{6}[HM][A-Z]{5}[0-9A-Z]\d$`,
		},
		{
			Key:            KeyChinaRIC,
			DocumentName:   "Chinese Resident Identity Card number",
			Algorithm:      AlgorithmRICMod11,
			ExpectedLength: 18,
			pattern:        `^\d{17}[0-9Xx]$`,
		},
		{
			Key:            KeyJapanMyNumber,
			DocumentName:   "Japanese My Number",
			Algorithm:      AlgorithmMyNumberMod10,
			ExpectedLength: 12,
			pattern:        `^\d{12}$`,
		},
		{
			Key:            KeyNetherlandsBSN,
			DocumentName:   "Dutch BSN",
			Algorithm:      AlgorithmBSNElevenProof,
			ExpectedLength: 9,
			// Both lengths are admitted here on purpose: the 8-digit
			// form is zero-padded by the checksum, and this pattern is
			// the only place that authorizes the short form.
			pattern: `^\d{8,9}$`,
		},
		{
			Key:            KeySpainDNI,
			DocumentName:   "Spanish DNI",
			Algorithm:      AlgorithmDNIMod23,
			ExpectedLength: 9,
			pattern:        `^\d{8}[A-HJ-NP-TV-Z]$`,
		},
		{
			Key:            KeySpainNIE,
			DocumentName:   "Spanish NIE",
			Algorithm:      AlgorithmNIEMod23,
			ExpectedLength: 9,
			pattern:        `^[XYZ]\d{7}[A-HJ-NP-TV-Z]$`,
		},
		{
			Key:            KeyChileRUT,
			DocumentName:   "Chilean RUT",
			Algorithm:      AlgorithmRUTMod11,
			ExpectedLength: 9,
			pattern:        `^(?:\d{1,2}\.\d{3}\.\d{3}|\d{7,8})-[0-9Kk]$`,
		},
	}

	t := &registryTable{byKey: make(map[CountryKey]int, len(rows))}
	for _, row := range rows {
		if row.Key == "" || row.DocumentName == "" || row.ExpectedLength <= 0 {
			panic(fmt.Sprintf("natid: incomplete registry row %q", row.Key))
		}
		if _, dup := t.byKey[row.Key]; dup {
			panic(fmt.Sprintf("natid: duplicate registry key %q", row.Key))
		}
		if _, known := algorithmNames[row.Algorithm]; !known {
			panic(fmt.Sprintf("natid: registry row %q references unregistered algorithm %d", row.Key, row.Algorithm))
		}
		row.shape = regexp.MustCompile(row.pattern)
		t.byKey[row.Key] = len(t.rows)
		t.rows = append(t.rows, row)
	}
	return t
}

// verifyTables asserts that every constant lookup table exactly spans its
// algorithm's modulus space, so no table index can be out of range at
// validation time.
func verifyTables() {
	if len(dniLetters) != dniModulus {
		panic(fmt.Sprintf("natid: DNI letter table has %d entries, want %d", len(dniLetters), dniModulus))
	}
	if len(ricCheckChars) != 11 {
		panic(fmt.Sprintf("natid: RIC check-char table has %d entries, want 11", len(ricCheckChars)))
	}
	if len(ricWeights) != 17 {
		panic(fmt.Sprintf("natid: RIC weight vector has %d entries, want 17", len(ricWeights)))
	}
	if n := utf8.RuneCountInString(curpAlphabet); n != 37 {
		panic(fmt.Sprintf("natid: CURP alphabet has %d runes, want 37", n))
	}
	if len(curpCharValues) != 37 {
		panic(fmt.Sprintf("natid: CURP value table has %d entries, want 37", len(curpCharValues)))
	}
}
