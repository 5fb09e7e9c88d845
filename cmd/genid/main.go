// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// natid-genid emits synthetic national identity numbers for test fixtures
// and demos. Output is deterministic for a given seed. Corrupted values
// keep a valid shape but carry a wrong check character, so they exercise
// the checksum-mismatch path of downstream consumers.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"natid-scan/internal/natid"
)

type fixture struct {
	Country string `json:"country"`
	Value   string `json:"value"`
	Valid   bool   `json:"valid"`
}

func main() {
	var (
		countries = flag.String("countries", "", "Comma-separated country keys to generate (default: all supported)")
		count     = flag.Int("count", 10, "Number of values to generate per country")
		seed      = flag.Int64("seed", 1, "RNG seed; the same seed reproduces the same fixtures")
		format    = flag.String("format", "plain", "Output format: plain, json")
		corrupt   = flag.Bool("corrupt", false, "Emit values with a deliberately wrong check character")
		list      = flag.Bool("list-countries", false, "List supported country keys and exit")
	)
	flag.Parse()

	if *list {
		listCountries()
		return
	}

	if *count < 1 {
		fmt.Println("Error: --count must be at least 1")
		os.Exit(1)
	}

	keys, err := resolveCountries(*countries)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	fixtures, err := generate(rng, keys, *count, *corrupt)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "plain":
		emitPlain(fixtures)
	case "json":
		if err := emitJSON(fixtures); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Error: Unknown format '%s'\n", *format)
		fmt.Println("Valid formats: plain, json")
		os.Exit(1)
	}
}

func listCountries() {
	fmt.Println("Supported country keys:")
	for _, doc := range natid.SupportedDocuments() {
		fmt.Printf("  %-12s %s\n", doc.Key, doc.DocumentName)
	}
}

// resolveCountries parses a comma-separated country list into registered
// keys, preserving the caller's order. An empty list means every supported
// country in registration order.
func resolveCountries(spec string) ([]natid.CountryKey, error) {
	if strings.TrimSpace(spec) == "" {
		docs := natid.SupportedDocuments()
		keys := make([]natid.CountryKey, len(docs))
		for i, doc := range docs {
			keys[i] = doc.Key
		}
		return keys, nil
	}

	var keys []natid.CountryKey
	seen := make(map[natid.CountryKey]bool)
	for _, part := range strings.Split(spec, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		key, ok := natid.ParseKey(name)
		if !ok {
			return nil, fmt.Errorf("unknown country %q (use --list-countries)", name)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no countries selected")
	}
	return keys, nil
}

func generate(rng *rand.Rand, keys []natid.CountryKey, count int, corrupt bool) ([]fixture, error) {
	fixtures := make([]fixture, 0, len(keys)*count)
	for _, key := range keys {
		for i := 0; i < count; i++ {
			var value string
			var err error
			if corrupt {
				value, err = natid.GenerateCorrupted(rng, key)
			} else {
				value, err = natid.GenerateValid(rng, key)
			}
			if err != nil {
				return nil, err
			}
			fixtures = append(fixtures, fixture{
				Country: string(key),
				Value:   value,
				Valid:   !corrupt,
			})
		}
	}
	return fixtures, nil
}

// emitPlain writes one value per line, grouped under a comment header per
// country. The output doubles as a scan input file: headers are plain text
// the scanner ignores.
func emitPlain(fixtures []fixture) {
	current := ""
	for _, f := range fixtures {
		if f.Country != current {
			if current != "" {
				fmt.Println()
			}
			current = f.Country
			fmt.Printf("# %s\n", f.Country)
		}
		fmt.Println(f.Value)
	}
}

func emitJSON(fixtures []fixture) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(fixtures)
}
