// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package natid

import (
	"strconv"
	"strings"
)

// Constant lookup tables. All are read-only after initialization and shared
// by every call; verifyTables in registry.go cross-checks each one against
// its modulus space at startup.
const (
	// dniLetters maps numericPart mod 23 to the DNI/NIE control letter.
	dniLetters = "TRWAGMYFPDXBNJZSQVHLCKE"
	dniModulus = 23

	// ricCheckChars maps the weighted sum mod 11 to the RIC check
	// character. The check may be a digit or the literal X.
	ricCheckChars = "10X98765432"

	// curpAlphabet assigns each CURP character its positional value:
	// the rune's index in this string. Ñ sits between N and O.
	curpAlphabet = "0123456789ABCDEFGHIJKLMNÑOPQRSTUVWXYZ"
)

// ricWeights are the per-position multipliers for the 17 payload digits of a
// Chinese resident identity card number.
var ricWeights = []int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}

// curpCharValues is curpAlphabet inverted for rune lookup. The alphabet
// contains Ñ, so indexing must be by rune position, not byte offset.
var curpCharValues = func() map[rune]int {
	m := make(map[rune]int)
	i := 0
	for _, r := range curpAlphabet {
		m[r] = i
		i++
	}
	return m
}()

// algorithmNames names each member of the closed algorithm family. The
// registry refuses rows whose algorithm is not listed here, so dispatch can
// never reach an unimplemented variant.
var algorithmNames = map[AlgorithmID]string{
	AlgorithmCURPMod10:      "positional weighted mod-10 over a 37-character alphabet",
	AlgorithmRICMod11:       "weighted mod-11 over a fixed 17-weight vector",
	AlgorithmMyNumberMod10:  "digit-folding mod-10",
	AlgorithmBSNElevenProof: "signed-weight 11-proof",
	AlgorithmDNIMod23:       "mod-23 control letter",
	AlgorithmNIEMod23:       "mod-23 control letter with prefix remap",
	AlgorithmRUTMod11:       "weighted mod-11 with cyclic weights 2-7",
}

// String returns a short human-readable description of the algorithm.
func (a AlgorithmID) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return "unregistered algorithm"
}

// evalChecksum dispatches a shape-matched candidate to its algorithm.
func evalChecksum(alg AlgorithmID, candidate string) bool {
	switch alg {
	case AlgorithmCURPMod10:
		return curpChecksumValid(candidate)
	case AlgorithmRICMod11:
		return ricChecksumValid(candidate)
	case AlgorithmMyNumberMod10:
		return myNumberChecksumValid(candidate)
	case AlgorithmBSNElevenProof:
		return bsnChecksumValid(candidate)
	case AlgorithmDNIMod23:
		return dniChecksumValid(candidate)
	case AlgorithmNIEMod23:
		return nieChecksumValid(candidate)
	case AlgorithmRUTMod11:
		return rutChecksumValid(candidate)
	}
	return false
}

// rutCheckChar derives the Chilean RUT verification character for a digit
// body: digits are weighted right to left with weights cycling 2 through 7,
// and 11 minus the sum mod 11 maps to 0 for 11, K for 10, or the digit
// itself.
func rutCheckChar(body string) byte {
	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch check := 11 - (sum % 11); check {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + check)
	}
}

// rutChecksumValid validates a RUT in either canonical writing, dotted
// (12.345.678-5) or plain (12345678-5). The dots and the hyphen before the
// verification character are structural, so only they are stripped here.
func rutChecksumValid(candidate string) bool {
	compact := strings.ReplaceAll(candidate, ".", "")
	body, check, ok := strings.Cut(compact, "-")
	if !ok || len(check) != 1 {
		return false
	}
	supplied := check[0]
	if supplied == 'k' {
		supplied = 'K'
	}
	return rutCheckChar(body) == supplied
}

// curpCheckDigit derives the CURP check digit for the 17-character base:
// each character's alphabet value is weighted by 18 minus its position, and
// the sum folds into a single digit mod 10.
func curpCheckDigit(base string) (byte, bool) {
	sum := 0
	i := 0
	for _, r := range base {
		value, ok := curpCharValues[r]
		if !ok {
			return 0, false
		}
		sum += value * (18 - i)
		i++
	}
	if i != 17 {
		return 0, false
	}
	return byte('0' + (10-sum%10)%10), true
}

func curpChecksumValid(candidate string) bool {
	check, ok := curpCheckDigit(candidate[:len(candidate)-1])
	if !ok {
		return false
	}
	return candidate[len(candidate)-1] == check
}

// ricCheckChar derives the RIC check character for the 17 payload digits.
func ricCheckChar(payload string) byte {
	sum := 0
	for i := 0; i < len(ricWeights); i++ {
		sum += int(payload[i]-'0') * ricWeights[i]
	}
	return ricCheckChars[sum%11]
}

func ricChecksumValid(candidate string) bool {
	supplied := candidate[17]
	if supplied == 'x' {
		supplied = 'X'
	}
	return ricCheckChar(candidate[:17]) == supplied
}

// dniLetter maps a DNI/NIE numeric part to its control letter.
func dniLetter(number int) byte {
	return dniLetters[number%dniModulus]
}

func dniChecksumValid(candidate string) bool {
	number, err := strconv.Atoi(candidate[:8])
	if err != nil {
		return false
	}
	return dniLetter(number) == candidate[8]
}

// nieChecksumValid remaps the NIE prefix letter X, Y, or Z to the digit 0,
// 1, or 2 and validates the resulting 8-digit number as a DNI.
func nieChecksumValid(candidate string) bool {
	var lead byte
	switch candidate[0] {
	case 'X':
		lead = '0'
	case 'Y':
		lead = '1'
	case 'Z':
		lead = '2'
	default:
		return false
	}
	number, err := strconv.Atoi(string(lead) + candidate[1:8])
	if err != nil {
		return false
	}
	return dniLetter(number) == candidate[8]
}

// bsnChecksumValid applies the Dutch 11-proof: digits weighted 9 down to 2,
// the final digit weighted -1, and the signed sum must be divisible by 11.
// An 8-digit candidate is zero-padded to 9; the short form is reachable only
// because the BSN shape pattern admits it explicitly.
func bsnChecksumValid(candidate string) bool {
	if len(candidate) == 8 {
		candidate = "0" + candidate
	}
	sum := 0
	for i := 0; i < 8; i++ {
		sum += int(candidate[i]-'0') * (9 - i)
	}
	sum -= int(candidate[8] - '0')
	return sum%11 == 0
}

// myNumberCheckDigit derives the Japanese My Number check digit for the 11
// payload digits: alternating weights 1 and 2 from the left, products of 10
// or more fold into the sum of their two digits, and the total folds into a
// single digit mod 10.
func myNumberCheckDigit(payload string) byte {
	sum := 0
	for i := 0; i < 11; i++ {
		product := int(payload[i] - '0')
		if i%2 == 1 {
			product *= 2
		}
		if product >= 10 {
			product = product/10 + product%10
		}
		sum += product
	}
	return byte('0' + (10-sum%10)%10)
}

func myNumberChecksumValid(candidate string) bool {
	return myNumberCheckDigit(candidate[:11]) == candidate[11]
}
