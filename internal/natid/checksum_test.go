// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package natid

import (
	"math/rand"
	"strings"
	"testing"
)

func TestRUTCheckChar(t *testing.T) {
	tests := []struct {
		body string
		want byte
	}{
		{"12345678", '5'}, // widely published reference value
		{"11111111", '1'},
		{"10000000", '8'},
		{"40000000", 'K'}, // sum mod 11 == 1 maps to K
		{"7654321", '6'},
	}

	for _, tt := range tests {
		if got := rutCheckChar(tt.body); got != tt.want {
			t.Errorf("rutCheckChar(%q) = %c, want %c", tt.body, got, tt.want)
		}
	}
}

func TestRUTValidation(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		wantOK    bool
		wantFail  FailureKind
	}{
		{"plain valid", "12345678-5", true, FailureNone},
		{"dotted valid", "12.345.678-5", true, FailureNone},
		{"derived check for 10000000", "10000000-8", true, FailureNone},
		{"K check digit", "40000000-K", true, FailureNone},
		{"lowercase k accepted", "40000000-k", true, FailureNone},
		{"wrong check digit", "12345678-4", false, FailureChecksumMismatch},
		{"K on a base that derives 8", "10000000-K", false, FailureChecksumMismatch},
		{"missing hyphen", "123456785", false, FailureShapeMismatch},
		{"dots without hyphen grouping", "12.34.5678-5", false, FailureShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.candidate, KeyChileRUT)
			if v.OK() != tt.wantOK {
				t.Errorf("Validate(%q).OK() = %v, want %v", tt.candidate, v.OK(), tt.wantOK)
			}
			if v.Failure != tt.wantFail {
				t.Errorf("Validate(%q).Failure = %q, want %q", tt.candidate, v.Failure, tt.wantFail)
			}
		})
	}
}

func TestRICCheckChar(t *testing.T) {
	// Both fixtures derive cleanly from the weight vector: the first sums
	// to 238 (mod 11 = 7, table char 5), the second to 244 (mod 11 = 2,
	// table char X).
	tests := []struct {
		payload string
		want    byte
	}{
		{"11010119900307851", '5'},
		{"11010119900307854", 'X'},
	}

	for _, tt := range tests {
		if got := ricCheckChar(tt.payload); got != tt.want {
			t.Errorf("ricCheckChar(%q) = %c, want %c", tt.payload, got, tt.want)
		}
	}
}

func TestRICValidation(t *testing.T) {
	// Month 13 in the first, nonexistent province 99 in the second; both
	// get a correct check char appended below so only the sub-field fails.
	badDate := "11010119991307851"
	badProvince := "99010119900307851"

	tests := []struct {
		name      string
		candidate string
		wantOK    bool
		wantFail  FailureKind
	}{
		{"valid digit check", "110101199003078515", true, FailureNone},
		{"valid X check", "11010119900307854X", true, FailureNone},
		{"lowercase x accepted", "11010119900307854x", true, FailureNone},
		{"wrong check char", "110101199003078514", false, FailureChecksumMismatch},
		{"month 13", badDate + string(ricCheckChar(badDate)), false, FailureSubfieldInvalid},
		{"unknown province", badProvince + string(ricCheckChar(badProvince)), false, FailureSubfieldInvalid},
		{"seventeen digits", "11010119900307851", false, FailureShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.candidate, KeyChinaRIC)
			if v.OK() != tt.wantOK {
				t.Errorf("Validate(%q).OK() = %v, want %v", tt.candidate, v.OK(), tt.wantOK)
			}
			if v.Failure != tt.wantFail {
				t.Errorf("Validate(%q).Failure = %q, want %q", tt.candidate, v.Failure, tt.wantFail)
			}
			if tt.wantFail == FailureSubfieldInvalid && !v.ChecksumValid {
				t.Errorf("Validate(%q) sub-field failure must keep ChecksumValid true", tt.candidate)
			}
		})
	}
}

func TestDNILetter(t *testing.T) {
	tests := []struct {
		number int
		want   byte
	}{
		{87654321, 'X'}, // 87654321 mod 23 == 10
		{17654321, 'G'}, // 17654321 mod 23 == 4
		{0, 'T'},
		{23, 'T'},
		{22, 'E'},
	}

	for _, tt := range tests {
		if got := dniLetter(tt.number); got != tt.want {
			t.Errorf("dniLetter(%d) = %c, want %c", tt.number, got, tt.want)
		}
	}
}

func TestDNIAndNIEValidation(t *testing.T) {
	tests := []struct {
		name      string
		key       CountryKey
		candidate string
		wantOK    bool
		wantFail  FailureKind
	}{
		{"DNI valid", KeySpainDNI, "87654321X", true, FailureNone},
		{"DNI leading zeros", KeySpainDNI, "00000023T", true, FailureNone},
		{"DNI wrong letter", KeySpainDNI, "87654321T", false, FailureChecksumMismatch},
		{"DNI excluded letter", KeySpainDNI, "87654321I", false, FailureShapeMismatch},
		{"NIE valid Y", KeySpainNIE, "Y7654321G", true, FailureNone},
		{"NIE valid X", KeySpainNIE, "X0000000T", true, FailureNone},
		{"NIE wrong letter", KeySpainNIE, "Y7654321X", false, FailureChecksumMismatch},
		{"NIE bad prefix", KeySpainNIE, "A7654321G", false, FailureShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.candidate, tt.key)
			if v.OK() != tt.wantOK {
				t.Errorf("Validate(%q, %s).OK() = %v, want %v", tt.candidate, tt.key, v.OK(), tt.wantOK)
			}
			if v.Failure != tt.wantFail {
				t.Errorf("Validate(%q, %s).Failure = %q, want %q", tt.candidate, tt.key, v.Failure, tt.wantFail)
			}
		})
	}
}

func TestBSNValidation(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		wantOK    bool
		wantFail  FailureKind
	}{
		{"nine digit valid", "111222333", true, FailureNone},
		{"eight digit padded valid", "11122237", true, FailureNone},
		{"eight digit not eleven proof", "11122233", false, FailureChecksumMismatch},
		{"nine digit not eleven proof", "111222334", false, FailureChecksumMismatch},
		// The signed sum of all zeros is zero, which the 11-proof
		// accepts; rejecting never-issued numbers is the scanner's
		// concern, not the arithmetic's.
		{"all zeros pass the arithmetic", "000000000", true, FailureNone},
		{"seven digits", "1112223", false, FailureShapeMismatch},
		{"ten digits", "1112223334", false, FailureShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.candidate, KeyNetherlandsBSN)
			if v.OK() != tt.wantOK {
				t.Errorf("Validate(%q).OK() = %v, want %v", tt.candidate, v.OK(), tt.wantOK)
			}
			if v.Failure != tt.wantFail {
				t.Errorf("Validate(%q).Failure = %q, want %q", tt.candidate, v.Failure, tt.wantFail)
			}
		})
	}
}

func TestMyNumberValidation(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		wantOK    bool
		wantFail  FailureKind
	}{
		{"valid", "123456789012", true, FailureNone},
		{"wrong check digit", "123456789013", false, FailureChecksumMismatch},
		{"eleven digits", "12345678901", false, FailureShapeMismatch},
		{"thirteen digits", "1234567890123", false, FailureShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.candidate, KeyJapanMyNumber)
			if v.OK() != tt.wantOK {
				t.Errorf("Validate(%q).OK() = %v, want %v", tt.candidate, v.OK(), tt.wantOK)
			}
			if v.Failure != tt.wantFail {
				t.Errorf("Validate(%q).Failure = %q, want %q", tt.candidate, v.Failure, tt.wantFail)
			}
		})
	}
}

func TestCURPValidation(t *testing.T) {
	badMonth := "HEGG561327MVZRRL0"
	badState := "HEGG560427MXXRRL0"
	futureYear := "HEGG560427MVZRRLA" // letter homoclave puts year 56 in the 2000s

	tests := []struct {
		name      string
		candidate string
		wantOK    bool
		wantFail  FailureKind
	}{
		{"valid with derived check", "HEGG560427MVZRRL04", true, FailureNone},
		{"wrong check digit", "HEGG560427MVZRRL05", false, FailureChecksumMismatch},
		{"month 13", withCURPCheck(t, badMonth), false, FailureSubfieldInvalid},
		{"unknown state code", withCURPCheck(t, badState), false, FailureSubfieldInvalid},
		{"birth date in the future", withCURPCheck(t, futureYear), false, FailureSubfieldInvalid},
		{"seventeen characters", "HEGG560427MVZRRL0", false, FailureShapeMismatch},
		{"lowercase rejected", "hegg560427mvzrrl04", false, FailureShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.candidate, KeyMexicoCURP)
			if v.OK() != tt.wantOK {
				t.Errorf("Validate(%q).OK() = %v, want %v", tt.candidate, v.OK(), tt.wantOK)
			}
			if v.Failure != tt.wantFail {
				t.Errorf("Validate(%q).Failure = %q, want %q", tt.candidate, v.Failure, tt.wantFail)
			}
		})
	}
}

func withCURPCheck(t *testing.T, base string) string {
	t.Helper()
	check, ok := curpCheckDigit(base)
	if !ok {
		t.Fatalf("curpCheckDigit(%q) rejected the base", base)
	}
	return base + string(check)
}

// TestCURPWeightTenBlindSpot documents the one arithmetic blind spot in the
// family: the CURP day-tens slot at index 8 carries weight 10, so any
// substitution there leaves the mod-10 sum unchanged. The sub-field check
// still catches the substitutions that break the embedded date.
func TestCURPWeightTenBlindSpot(t *testing.T) {
	// Day tens flipped 2 -> 7: day becomes 77.
	v := Validate("HEGG560477MVZRRL04", KeyMexicoCURP)
	if !v.ChecksumValid {
		t.Fatalf("weight-10 substitution must not change the checksum, got %+v", v)
	}
	if v.Failure != FailureSubfieldInvalid {
		t.Errorf("day 77 must fail the sub-field check, got %q", v.Failure)
	}

	// Day tens flipped 2 -> 0: day becomes 07, a plausible date, so the
	// substituted number validates fully.
	v = Validate("HEGG560407MVZRRL04", KeyMexicoCURP)
	if !v.OK() {
		t.Errorf("plausible weight-10 substitution should validate fully, got %+v", v)
	}
}

// TestSingleDigitFlipDetection asserts the transcription-error property: for
// every jurisdiction, substituting a single digit of a valid number must be
// caught by the checksum at a 90% rate or better. The CURP's weight-10
// position is excluded as the known blind spot covered by the test above.
func TestSingleDigitFlipDetection(t *testing.T) {
	blindSpots := map[CountryKey]map[int]bool{
		KeyMexicoCURP: {8: true},
	}

	rng := rand.New(rand.NewSource(7))
	for _, doc := range SupportedDocuments() {
		t.Run(string(doc.Key), func(t *testing.T) {
			flips, caught := 0, 0
			for n := 0; n < 50; n++ {
				candidate, err := GenerateValid(rng, doc.Key)
				if err != nil {
					t.Fatalf("GenerateValid(%s): %v", doc.Key, err)
				}
				for i := 0; i < len(candidate); i++ {
					if blindSpots[doc.Key][i] {
						continue
					}
					c := candidate[i]
					if c < '0' || c > '9' {
						continue
					}
					for d := byte('0'); d <= '9'; d++ {
						if d == c {
							continue
						}
						flipped := candidate[:i] + string(d) + candidate[i+1:]
						flips++
						if !Validate(flipped, doc.Key).ChecksumValid {
							caught++
						}
					}
				}
			}
			if flips == 0 {
				t.Fatalf("no digit positions flipped for %s", doc.Key)
			}
			rate := float64(caught) / float64(flips)
			if rate < 0.90 {
				t.Errorf("%s caught %d of %d single-digit flips (%.1f%%), want >= 90%%",
					doc.Key, caught, flips, rate*100)
			}
		})
	}
}

func TestChecksumIgnoresSurroundingText(t *testing.T) {
	// Anchored shapes must reject IDs embedded in longer strings.
	embedded := []string{
		"x87654321X",
		"87654321Xy",
		"id:110101199003078515",
		"111222333 ",
		" 111222333",
	}
	for _, candidate := range embedded {
		if v := Validate(candidate, ""); v.Failure != FailureNoMatchingFormat {
			t.Errorf("Validate(%q) = %+v, want NO_MATCHING_FORMAT", candidate, v)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		key  CountryKey
		in   string
		want string
	}{
		{KeyJapanMyNumber, "1234 5678 9012", "123456789012"},
		{KeySpainDNI, "87654321-x", "87654321X"},
		{KeyNetherlandsBSN, "111.222.333", "111222333"},
		{KeyChinaRIC, "11010119900307854x", "11010119900307854X"},
		{KeyChileRUT, "12.345.678-5", "12.345.678-5"},
		{KeyChileRUT, " 12345678-k ", "12345678-K"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.key, tt.in); got != tt.want {
			t.Errorf("Normalize(%s, %q) = %q, want %q", tt.key, tt.in, got, tt.want)
		}
	}
}

func TestAlgorithmNamesCoverFamily(t *testing.T) {
	for _, p := range Profiles() {
		if p.Algorithm.String() == "unregistered algorithm" {
			t.Errorf("profile %s has no algorithm name", p.Key)
		}
	}
	if !strings.Contains(AlgorithmDNIMod23.String(), "mod-23") {
		t.Errorf("unexpected DNI algorithm name %q", AlgorithmDNIMod23)
	}
}
