// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package natid

import "time"

// curpStateList holds the two-letter federal entity codes RENAPO embeds at
// positions 12-13 of a CURP, in official ordering. NE marks a person born
// abroad.
var curpStateList = []string{
	"AS", "BC", "BS", "CC", "CL", "CM", "CS", "CH", "DF", "DG", "GT",
	"GR", "HG", "JC", "MC", "MN", "MS", "NT", "NL", "OC", "PL", "QT",
	"QR", "SP", "SL", "SR", "TC", "TS", "TL", "VZ", "YN", "ZS", "NE",
}

// ricProvinceList holds the two-digit province/region prefixes issued for
// Chinese resident identity card numbers, including Taiwan, Hong Kong, and
// Macao codes used for returnee documents.
var ricProvinceList = []string{
	"11", "12", "13", "14", "15",
	"21", "22", "23",
	"31", "32", "33", "34", "35", "36", "37",
	"41", "42", "43", "44", "45", "46",
	"50", "51", "52", "53", "54",
	"61", "62", "63", "64", "65",
	"71", "81", "82", "83",
}

var (
	curpStateCodes   = membershipSet(curpStateList)
	ricProvinceCodes = membershipSet(ricProvinceList)
)

func membershipSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// evalSubfields runs the jurisdiction's embedded semantic checks on a
// candidate whose checksum already verified. Algorithms without sub-fields
// report true.
func evalSubfields(alg AlgorithmID, candidate string) bool {
	switch alg {
	case AlgorithmCURPMod10:
		return curpSubfieldsValid(candidate)
	case AlgorithmRICMod11:
		return ricSubfieldsValid(candidate)
	}
	return true
}

// curpSubfieldsValid checks the embedded birth date and federal entity code.
// The two-digit year resolves its century through the homoclave at position
// 17: a digit means the 1900s, a letter the 2000s.
func curpSubfieldsValid(candidate string) bool {
	year := atoi2(candidate[4:6])
	month := atoi2(candidate[6:8])
	day := atoi2(candidate[8:10])

	if candidate[16] >= '0' && candidate[16] <= '9' {
		year += 1900
	} else {
		year += 2000
	}
	if !plausibleBirthDate(year, month, day) {
		return false
	}
	return curpStateCodes[candidate[11:13]]
}

// ricSubfieldsValid checks the embedded YYYYMMDD birth date and the province
// prefix.
func ricSubfieldsValid(candidate string) bool {
	year := atoi2(candidate[6:8])*100 + atoi2(candidate[8:10])
	month := atoi2(candidate[10:12])
	day := atoi2(candidate[12:14])

	if !plausibleBirthDate(year, month, day) {
		return false
	}
	return ricProvinceCodes[candidate[0:2]]
}

// plausibleBirthDate reports whether the components form a real calendar
// date that could belong to a living document holder: between 1900 and the
// current year, with leap years honored.
func plausibleBirthDate(year, month, day int) bool {
	if year < 1900 || year > time.Now().Year() {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysInMonth(year, month)
}

func daysInMonth(year, month int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 31
	}
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// atoi2 converts a two-digit ASCII substring whose digits the shape pattern
// already guaranteed.
func atoi2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
