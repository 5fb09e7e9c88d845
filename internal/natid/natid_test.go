// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package natid

import (
	"testing"
)

func TestValidateWithoutHintFirstMatchWins(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		wantKey   CountryKey
	}{
		{"18 digits route to RIC", "110101199003078515", KeyChinaRIC},
		{"18 chars with letters route to CURP", "HEGG560427MVZRRL04", KeyMexicoCURP},
		{"12 digits route to My Number", "123456789012", KeyJapanMyNumber},
		{"9 digits route to BSN", "111222333", KeyNetherlandsBSN},
		{"8 digits route to BSN", "11122237", KeyNetherlandsBSN},
		{"8 digits plus letter route to DNI", "87654321X", KeySpainDNI},
		{"XYZ prefix routes to NIE", "Y7654321G", KeySpainNIE},
		{"hyphenated routes to RUT", "12345678-5", KeyChileRUT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.candidate, "")
			if v.Key != tt.wantKey {
				t.Errorf("Validate(%q) matched %q, want %q", tt.candidate, v.Key, tt.wantKey)
			}
			if !v.ShapeMatched {
				t.Errorf("Validate(%q) did not record the shape match", tt.candidate)
			}
		})
	}
}

func TestValidateVerdictInvariants(t *testing.T) {
	candidates := []string{
		"", "5", "X", "1234567", "87654321X", "87654321T", "110101199003078515",
		"11122233", "not an id at all", "  ", "12345678-5", "12345678-4",
		"HEGG560477MVZRRL04", "999999999999999999",
	}

	for _, c := range candidates {
		for _, hint := range []CountryKey{"", KeySpainDNI, KeyChileRUT, "XX_BOGUS"} {
			v := Validate(c, hint)
			if v.ChecksumValid && !v.ShapeMatched {
				t.Errorf("Validate(%q, %q): checksum valid without shape match", c, hint)
			}
			if v.Key == "" {
				if v.ShapeMatched || v.ChecksumValid {
					t.Errorf("Validate(%q, %q): empty key with %+v", c, hint, v)
				}
				if v.Failure != FailureNoMatchingFormat {
					t.Errorf("Validate(%q, %q): empty key with failure %q", c, hint, v.Failure)
				}
			}
			if v.OK() && v.Failure != FailureNone {
				t.Errorf("Validate(%q, %q): OK verdict carries failure %q", c, hint, v.Failure)
			}
			if v.Candidate != c {
				t.Errorf("Validate(%q, %q): verdict echoes %q", c, hint, v.Candidate)
			}
		}
	}
}

func TestValidateHintedMismatches(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		hint      CountryKey
		wantKey   CountryKey
		wantFail  FailureKind
	}{
		{"valid DNI hinted as RUT", "87654321X", KeyChileRUT, KeyChileRUT, FailureShapeMismatch},
		{"valid RUT hinted as DNI", "12345678-5", KeySpainDNI, KeySpainDNI, FailureShapeMismatch},
		{"empty string hinted", "", KeySpainDNI, KeySpainDNI, FailureShapeMismatch},
		{"whitespace only hinted", "   ", KeyChinaRIC, KeyChinaRIC, FailureShapeMismatch},
		{"unknown hint key", "87654321X", "XX_BOGUS", "", FailureNoMatchingFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.candidate, tt.hint)
			if v.Key != tt.wantKey {
				t.Errorf("Validate(%q, %q).Key = %q, want %q", tt.candidate, tt.hint, v.Key, tt.wantKey)
			}
			if v.Failure != tt.wantFail {
				t.Errorf("Validate(%q, %q).Failure = %q, want %q", tt.candidate, tt.hint, v.Failure, tt.wantFail)
			}
			if v.OK() {
				t.Errorf("Validate(%q, %q) unexpectedly valid", tt.candidate, tt.hint)
			}
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	candidates := []string{
		"110101199003078515", "87654321X", "87654321T", "12.345.678-5",
		"111222333", "HEGG560427MVZRRL04", "garbage", "",
	}
	for _, c := range candidates {
		for _, hint := range []CountryKey{"", KeySpainDNI} {
			first := Validate(c, hint)
			second := Validate(c, hint)
			if first != second {
				t.Errorf("Validate(%q, %q) not idempotent: %+v then %+v", c, hint, first, second)
			}
		}
	}
}

func TestValidateAllPreservesOrderAndLength(t *testing.T) {
	candidates := []string{
		"110101199003078515",
		"not an id",
		"87654321X",
		"11122233",
		"",
	}
	verdicts := ValidateAll(candidates)
	if len(verdicts) != len(candidates) {
		t.Fatalf("ValidateAll returned %d verdicts for %d candidates", len(verdicts), len(candidates))
	}
	for i, v := range verdicts {
		if v.Candidate != candidates[i] {
			t.Errorf("verdict %d is for %q, want %q", i, v.Candidate, candidates[i])
		}
	}
	if !verdicts[0].OK() || !verdicts[2].OK() {
		t.Errorf("expected verdicts 0 and 2 to be valid: %+v, %+v", verdicts[0], verdicts[2])
	}
	if verdicts[1].Failure != FailureNoMatchingFormat {
		t.Errorf("verdict 1 = %+v, want NO_MATCHING_FORMAT", verdicts[1])
	}
	if verdicts[3].Failure != FailureChecksumMismatch {
		t.Errorf("verdict 3 = %+v, want CHECKSUM_MISMATCH", verdicts[3])
	}
}

func TestValidateAllEmptyInput(t *testing.T) {
	if got := ValidateAll(nil); len(got) != 0 {
		t.Errorf("ValidateAll(nil) = %v, want empty", got)
	}
}

func TestSupportedDocuments(t *testing.T) {
	docs := SupportedDocuments()
	if len(docs) != 7 {
		t.Fatalf("SupportedDocuments returned %d entries, want 7", len(docs))
	}
	wantOrder := []CountryKey{
		KeyMexicoCURP, KeyChinaRIC, KeyJapanMyNumber, KeyNetherlandsBSN,
		KeySpainDNI, KeySpainNIE, KeyChileRUT,
	}
	for i, doc := range docs {
		if doc.Key != wantOrder[i] {
			t.Errorf("document %d is %q, want %q", i, doc.Key, wantOrder[i])
		}
		if doc.DocumentName == "" {
			t.Errorf("document %q has no name", doc.Key)
		}
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in     string
		want   CountryKey
		wantOK bool
	}{
		{"ES_DNI", KeySpainDNI, true},
		{"es_dni", KeySpainDNI, true},
		{"dni", KeySpainDNI, true},
		{" curp ", KeyMexicoCURP, true},
		{"MYNUMBER", KeyJapanMyNumber, true},
		{"rut", KeyChileRUT, true},
		{"ssn", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseKey(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseKey(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
