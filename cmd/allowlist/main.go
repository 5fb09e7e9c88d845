// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// natid-allowlist manages the allowlist file used by natid-scan. It
// covers maintenance actions the scanner itself does not expose, such
// as purging expired rules.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"natid-scan/internal/allowlist"
	"natid-scan/internal/natid"
	"natid-scan/internal/security"
)

func main() {
	var (
		allowlistFile = flag.String("allowlist-file", "", "Path to allowlist configuration file (default: standard location)")
		action        = flag.String("action", "", "Action to perform: list, add, remove, cleanup")
		id            = flag.String("id", "", "Allowlist rule ID (for remove action)")
		value         = flag.String("value", "", "Identity number value (for add action)")
		country       = flag.String("country", "", "Country code such as ES_DNI (for add action)")
		reason        = flag.String("reason", "", "Reason for allowlisting (for add action)")
		expiresDays   = flag.Int("expires", 0, "Days until the rule expires, 0 = never (for add action)")
	)
	flag.Parse()

	if *action == "" {
		fmt.Println("Error: --action is required")
		fmt.Println("Usage: natid-allowlist --action <list|add|remove|cleanup> [options]")
		os.Exit(1)
	}

	manager := allowlist.NewManager(*allowlistFile)

	switch *action {
	case "list":
		listRules(manager)
	case "add":
		if *value == "" || *country == "" {
			fmt.Println("Error: --value and --country are required for add action")
			os.Exit(1)
		}
		addRule(manager, *value, *country, *reason, *expiresDays)
	case "remove":
		if *id == "" {
			fmt.Println("Error: --id is required for remove action")
			os.Exit(1)
		}
		removeRule(manager, *id)
	case "cleanup":
		cleanupExpired(manager)
	default:
		fmt.Printf("Error: Unknown action '%s'\n", *action)
		fmt.Println("Valid actions: list, add, remove, cleanup")
		os.Exit(1)
	}
}

func listRules(manager *allowlist.Manager) {
	rules := manager.ListRules()
	if len(rules) == 0 {
		fmt.Println("No allowlist rules found.")
		return
	}

	fmt.Printf("Found %d allowlist rules:\n\n", len(rules))
	for _, rule := range rules {
		fmt.Printf("ID: %s\n", rule.ID)
		fmt.Printf("Country: %s\n", rule.Country)
		fmt.Printf("Value Hash: %s\n", rule.ValueHash)
		fmt.Printf("Reason: %s\n", rule.Reason)
		fmt.Printf("Enabled: %v\n", rule.Enabled)
		if rule.CreatedBy != "" {
			fmt.Printf("Created By: %s\n", rule.CreatedBy)
		}
		fmt.Printf("Created At: %s\n", rule.CreatedAt.Format("2006-01-02 15:04:05"))
		if rule.ExpiresAt != nil {
			fmt.Printf("Expires At: %s\n", rule.ExpiresAt.Format("2006-01-02 15:04:05"))
		}
		if rule.FilePattern != "" {
			fmt.Printf("File Pattern: %s\n", rule.FilePattern)
		}
		fmt.Println("---")
	}
}

func addRule(manager *allowlist.Manager, value, country, reason string, expiresDays int) {
	key, ok := natid.ParseKey(country)
	if !ok {
		fmt.Printf("Error: Unknown country %q\n", country)
		os.Exit(1)
	}

	var expiresAt *time.Time
	if expiresDays > 0 {
		t := time.Now().AddDate(0, 0, expiresDays)
		expiresAt = &t
	}

	createdBy := os.Getenv("USER")
	if createdBy == "" {
		createdBy = "natid-allowlist"
	}

	rule, err := manager.AddValue(string(key), value, reason, createdBy, expiresAt)
	if err != nil {
		fmt.Printf("Error adding allowlist rule: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added allowlist rule %s for %s value %s (stored as hash only)\n",
		rule.ID, key, security.Mask(value))
}

func removeRule(manager *allowlist.Manager, id string) {
	if err := manager.RemoveRule(id); err != nil {
		fmt.Printf("Error removing allowlist rule: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully removed allowlist rule: %s\n", id)
}

func cleanupExpired(manager *allowlist.Manager) {
	removed := manager.CleanupExpired()
	fmt.Printf("Cleaned up %d expired allowlist rules\n", removed)
}
