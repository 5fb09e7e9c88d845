// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

import "testing"

func TestSecureStringRoundTrip(t *testing.T) {
	ss := NewSecureString("110101199003078515")
	if got := ss.String(); got != "110101199003078515" {
		t.Errorf("String() = %q", got)
	}
	if got := ss.Masked(); got != "**************8515" {
		t.Errorf("Masked() = %q", got)
	}
}

func TestSecureStringClear(t *testing.T) {
	ss := NewSecureString("87654321X")
	ss.Clear()
	if got := ss.String(); got != "" {
		t.Errorf("String() after Clear = %q, want empty", got)
	}
	if got := ss.Masked(); got != "" {
		t.Errorf("Masked() after Clear = %q, want empty", got)
	}
	// Clearing twice must not panic.
	ss.Clear()
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123456789012", "********9012"},
		{"12345678-5", "******78-5"},
		{"1234", "****"},
		{"12", "**"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
