// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nationalid

import "natid-scan/internal/help"

// GetCheckInfo returns standardized information about the national ID check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "NATIONAL_ID",
		ShortDescription: "Detects national identity numbers from supported countries",
		DetailedDescription: `The National ID check detects government-issued identity numbers from Mexico (CURP), China (Resident Identity Card), Japan (My Number), the Netherlands (BSN), Spain (DNI and NIE), and Chile (RUT).

Each candidate is matched against the country's canonical shape, then verified with the country's own check-digit algorithm. Numbers that fail their checksum are reported at low confidence; numbers whose checksum holds but whose embedded fields (birth date, region code) are implausible are reported at medium confidence.

Surrounding context is analyzed to improve accuracy: document-specific keywords raise confidence, test-data indicators lower it.`,

		Patterns: []string{
			"Mexico CURP: 18 characters, e.g. HEGG560427MVZRRL04",
			"China RIC: 18 digits with optional X verifier, e.g. 110101199003078515",
			"Japan My Number: 12 digits, optionally grouped, e.g. 1234 5678 9012",
			"Netherlands BSN: 8 or 9 digits, e.g. 111222333",
			"Spain DNI: 8 digits and a letter, e.g. 87654321X",
			"Spain NIE: X/Y/Z, 7 digits and a letter, e.g. Y7654321G",
			"Chile RUT: dotted or plain body with verifier, e.g. 12.345.678-5",
		},

		SupportedFormats: []string{
			"Clave Única de Registro de Población (MX_CURP)",
			"Resident Identity Card number (CN_RIC)",
			"Individual Number / My Number (JP_MYNUMBER)",
			"Burgerservicenummer (NL_BSN)",
			"Documento Nacional de Identidad (ES_DNI)",
			"Número de Identidad de Extranjero (ES_NIE)",
			"Rol Único Tributario (CL_RUT)",
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Checksum", Description: "Country check-digit algorithm must verify", Weight: 40},
			{Name: "Shape", Description: "Must match the country's canonical format", Weight: 30},
			{Name: "Subfields", Description: "Embedded birth date and region must be plausible", Weight: 15},
			{Name: "Test Data", Description: "Must not be repeated, sequential, or published demo data", Weight: 30},
			{Name: "Context", Description: "Surrounding keywords adjust the final score", Weight: 25},
		},

		PositiveKeywords: v.flattenPositiveKeywords(),
		NegativeKeywords: v.negativeKeywords,

		Examples: []string{
			"natid-scan --file customer-records.txt --confidence high,medium",
			"natid-scan --dir exports/ --countries ES_DNI,ES_NIE --format json",
			"natid-scan --value 12.345.678-5 --country CL_RUT",
		},
	}
}

// flattenPositiveKeywords merges the per-country keyword lists in
// registry order for display.
func (v *Validator) flattenPositiveKeywords() []string {
	var out []string
	for _, key := range v.countries {
		out = append(out, v.positiveKeywords[key]...)
	}
	return out
}
