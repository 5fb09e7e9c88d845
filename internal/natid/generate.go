// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package natid

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	uppercaseLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	consonantLetters = "BCDFGHJKLMNPQRSTVWXYZ"
)

// GenerateValid synthesizes a random identity number that fully validates
// for the given country key: correct shape, correct check digit, and
// plausible sub-fields. Generation is deterministic for a given rng state,
// which makes it suitable for reproducible fixtures.
func GenerateValid(rng *rand.Rand, key CountryKey) (string, error) {
	switch key {
	case KeyMexicoCURP:
		return generateCURP(rng), nil
	case KeyChinaRIC:
		return generateRIC(rng), nil
	case KeyJapanMyNumber:
		return generateMyNumber(rng), nil
	case KeyNetherlandsBSN:
		return generateBSN(rng), nil
	case KeySpainDNI:
		return generateDNI(rng), nil
	case KeySpainNIE:
		return generateNIE(rng), nil
	case KeyChileRUT:
		return generateRUT(rng), nil
	}
	return "", fmt.Errorf("no generator for country key %q", key)
}

// GenerateCorrupted synthesizes an identity number whose shape matches the
// country's format but whose check character disagrees with the rest of the
// token. The check character is swapped for a different member of its own
// alphabet, so the result still passes the shape test and fails only the
// checksum comparison.
func GenerateCorrupted(rng *rand.Rand, key CountryKey) (string, error) {
	value, err := GenerateValid(rng, key)
	if err != nil {
		return "", err
	}
	alphabet := checkAlphabet(key)
	idx := strings.IndexByte(alphabet, value[len(value)-1])
	swapped := alphabet[(idx+1+rng.Intn(len(alphabet)-1))%len(alphabet)]
	return value[:len(value)-1] + string(swapped), nil
}

// checkAlphabet returns the set of characters the country's shape admits in
// the check position. GenerateValid output always ends in one of these.
func checkAlphabet(key CountryKey) string {
	switch key {
	case KeySpainDNI, KeySpainNIE:
		return dniLetters
	case KeyChinaRIC:
		return ricCheckChars
	case KeyChileRUT:
		return "0123456789K"
	}
	return "0123456789"
}

func generateCURP(rng *rand.Rand) string {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		b.WriteByte(uppercaseLetters[rng.Intn(len(uppercaseLetters))])
	}

	// The homoclave century rule couples two fields: a digit homoclave
	// puts the birth year in the 1900s, a letter in the 2000s.
	var year int
	var homoclave byte
	if rng.Intn(2) == 0 {
		year = 1940 + rng.Intn(60)
		homoclave = byte('0' + rng.Intn(10))
	} else {
		year = 2000 + rng.Intn(16)
		homoclave = uppercaseLetters[rng.Intn(len(uppercaseLetters))]
	}
	month := 1 + rng.Intn(12)
	day := 1 + rng.Intn(daysInMonth(year, month))
	fmt.Fprintf(&b, "%02d%02d%02d", year%100, month, day)

	if rng.Intn(2) == 0 {
		b.WriteByte('H')
	} else {
		b.WriteByte('M')
	}
	b.WriteString(curpStateList[rng.Intn(len(curpStateList))])
	for i := 0; i < 3; i++ {
		b.WriteByte(consonantLetters[rng.Intn(len(consonantLetters))])
	}
	b.WriteByte(homoclave)

	base := b.String()
	check, _ := curpCheckDigit(base)
	return base + string(check)
}

func generateRIC(rng *rand.Rand) string {
	var b strings.Builder
	b.WriteString(ricProvinceList[rng.Intn(len(ricProvinceList))])
	b.WriteString(randDigits(rng, 4))

	year := 1940 + rng.Intn(76)
	month := 1 + rng.Intn(12)
	day := 1 + rng.Intn(daysInMonth(year, month))
	fmt.Fprintf(&b, "%04d%02d%02d", year, month, day)

	b.WriteString(randDigits(rng, 3))
	payload := b.String()
	return payload + string(ricCheckChar(payload))
}

func generateMyNumber(rng *rand.Rand) string {
	payload := randDigits(rng, 11)
	return payload + string(myNumberCheckDigit(payload))
}

func generateBSN(rng *rand.Rand) string {
	// The 11-proof admits no check digit for remainders of 10, so draw
	// until the first eight digits leave a representable remainder.
	for {
		var digits [8]byte
		digits[0] = byte('1' + rng.Intn(9))
		for i := 1; i < 8; i++ {
			digits[i] = byte('0' + rng.Intn(10))
		}
		sum := 0
		for i := 0; i < 8; i++ {
			sum += int(digits[i]-'0') * (9 - i)
		}
		if rem := sum % 11; rem < 10 {
			return string(digits[:]) + string(byte('0'+rem))
		}
	}
}

func generateDNI(rng *rand.Rand) string {
	number := rng.Intn(100000000)
	return fmt.Sprintf("%08d%c", number, dniLetter(number))
}

func generateNIE(rng *rand.Rand) string {
	prefixes := "XYZ"
	i := rng.Intn(3)
	body := rng.Intn(10000000)
	full := i*10000000 + body
	return fmt.Sprintf("%c%07d%c", prefixes[i], body, dniLetter(full))
}

func generateRUT(rng *rand.Rand) string {
	body := 1000000 + rng.Intn(99000000)
	return fmt.Sprintf("%d-%c", body, rutCheckChar(fmt.Sprintf("%d", body)))
}

func randDigits(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rng.Intn(10))
	}
	return string(b)
}
