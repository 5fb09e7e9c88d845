// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

// SecureString holds a matched identity number in a mutable buffer so it can
// be scrubbed once reporting no longer needs it.
//
// Limitations: the garbage collector may move or copy memory, and every
// String call produces an immutable copy that Clear cannot reach. Clearing
// narrows the exposure window; it is not cryptographic-strength protection.
type SecureString struct {
	data []byte
}

// NewSecureString copies s into a mutable byte slice.
func NewSecureString(s string) *SecureString {
	data := make([]byte, len(s))
	copy(data, s)
	return &SecureString{data: data}
}

// String returns the held value. Each call creates an immutable copy that
// Clear cannot zero, so prefer Masked for display surfaces.
func (ss *SecureString) String() string {
	return string(ss.data)
}

// Masked renders the value with all but the last four characters replaced by
// asterisks, the form reports use by default for national identity numbers.
func (ss *SecureString) Masked() string {
	return Mask(string(ss.data))
}

// Clear overwrites the buffer with zeros and releases it.
func (ss *SecureString) Clear() {
	if ss.data != nil {
		for i := range ss.data {
			ss.data[i] = 0
		}
		ss.data = nil
	}
}

// Mask replaces all but the last four characters of value with asterisks.
// Short values mask entirely rather than reveal most of the number.
func Mask(value string) string {
	const visible = 4
	if len(value) <= visible {
		return repeatStar(len(value))
	}
	return repeatStar(len(value)-visible) + value[len(value)-visible:]
}

func repeatStar(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '*'
	}
	return string(b)
}
