// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"strings"

	"natid-scan/internal/detector"
	"natid-scan/internal/natid"
	"natid-scan/internal/observability"
	"natid-scan/internal/validators/nationalid"
)

// BuildValidatorSet constructs the scanning validators restricted to the
// given countries. Pass nil to enable every registered country.
func BuildValidatorSet(countries []natid.CountryKey, observer *observability.StandardObserver) map[string]detector.Validator {
	v := nationalid.NewValidatorForCountries(countries)
	if observer != nil {
		v.SetObserver(observer)
	}
	return map[string]detector.Validator{
		"NATIONAL_ID": v,
	}
}

// ParseCountriesToRun resolves country names and aliases into registry
// keys. An empty slice or the word "all" selects every registered
// country. The result is in registry order regardless of input order,
// and a name that resolves to nothing is an error rather than a silent
// no-op, so a typo in --countries cannot quietly scan the wrong set.
func ParseCountriesToRun(countries []string) ([]natid.CountryKey, error) {
	all := make([]natid.CountryKey, 0, len(natid.Profiles()))
	for _, p := range natid.Profiles() {
		all = append(all, p.Key)
	}

	selected := make(map[natid.CountryKey]bool)
	explicit := false
	for _, raw := range countries {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, "all") {
			return all, nil
		}
		key, ok := natid.ParseKey(name)
		if !ok {
			return nil, fmt.Errorf("unknown country: %q", name)
		}
		selected[key] = true
		explicit = true
	}

	if !explicit {
		return all, nil
	}

	keys := make([]natid.CountryKey, 0, len(selected))
	for _, key := range all {
		if selected[key] {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
