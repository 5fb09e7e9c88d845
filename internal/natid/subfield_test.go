// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package natid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlausibleBirthDate(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		day   int
		want  bool
	}{
		{"ordinary date", 1990, 3, 7, true},
		{"first day of range", 1900, 1, 1, true},
		{"year before 1900", 1899, 12, 31, false},
		{"future year", 2199, 1, 1, false},
		{"month zero", 1990, 0, 15, false},
		{"month 13", 1990, 13, 1, false},
		{"day zero", 1990, 6, 0, false},
		{"thirty-one in April", 1990, 4, 31, false},
		{"thirty in April", 1990, 4, 30, true},
		{"Feb 29 leap year", 1992, 2, 29, true},
		{"Feb 29 non-leap", 1993, 2, 28, true},
		{"Feb 29 non-leap rejected", 1993, 2, 29, false},
		{"Feb 29 century non-leap", 1900, 2, 29, false},
		{"Feb 29 quadricentennial", 2000, 2, 29, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plausibleBirthDate(tt.year, tt.month, tt.day))
		})
	}
}

func TestCURPCenturyResolution(t *testing.T) {
	// Same embedded date 56-04-27; the homoclave decides the century. A digit
	// at position 17 places the holder in 1956, a letter in 2056, which is in
	// the future and therefore implausible.
	base := "HEGG560427MVZRRL"

	digitHomoclave := withCURPCheck(t, base+"0")
	require.True(t, curpSubfieldsValid(digitHomoclave),
		"digit homoclave should resolve 56 to 1956")

	letterHomoclave := withCURPCheck(t, base+"A")
	assert.False(t, curpSubfieldsValid(letterHomoclave),
		"letter homoclave should resolve 56 to 2056, a future date")
}

func TestCURPStateCodes(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"Veracruz", "VZ", true},
		{"Mexico City legacy", "DF", true},
		{"born abroad", "NE", true},
		{"unassigned pair", "XX", false},
		{"lowercase not in table", "vz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, curpStateCodes[tt.code])
		})
	}
}

func TestRICProvinceCodes(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		valid  bool
	}{
		{"Beijing", "11", true},
		{"Xinjiang", "65", true},
		{"Taiwan returnee", "71", true},
		{"Hong Kong returnee", "81", true},
		{"Macao returnee", "83", true},
		{"gap between regions", "17", false},
		{"beyond issued range", "99", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ricProvinceCodes[tt.prefix])
		})
	}
}

func TestRICSubfieldPositions(t *testing.T) {
	// A checksum-correct candidate with a day of 31 in June; only the date
	// check should reject it.
	junePayload := "11010119900631851"
	require.False(t, ricSubfieldsValid(junePayload+string(ricCheckChar(junePayload))),
		"June 31 should not be a plausible birth date")

	marchPayload := "11010119900307851"
	assert.True(t, ricSubfieldsValid(marchPayload+string(ricCheckChar(marchPayload))))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, daysInMonth(1990, 1))
	assert.Equal(t, 28, daysInMonth(1990, 2))
	assert.Equal(t, 29, daysInMonth(1996, 2))
	assert.Equal(t, 30, daysInMonth(1990, 11))
	assert.Equal(t, 31, daysInMonth(1990, 12))
}
