// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// CheckInfo contains standardized information about a check
type CheckInfo struct {
	Name                string             // Name of the check (e.g., "NATIONAL_ID")
	ShortDescription    string             // Short description for the checks list
	DetailedDescription string             // Detailed description of what the check does
	Patterns            []string           // Patterns the check looks for
	SupportedFormats    []string           // Formats or types supported by the check
	ConfidenceFactors   []ConfidenceFactor // Factors affecting confidence
	PositiveKeywords    []string           // Keywords that increase confidence
	NegativeKeywords    []string           // Keywords that decrease confidence
	ConfigurationInfo   string             // Information about how to configure the check
	Examples            []string           // Usage examples
}

// ConfidenceFactor represents a factor that affects confidence scoring
type ConfidenceFactor struct {
	Name        string  // Name of the factor
	Description string  // Description of the factor
	Weight      float64 // Weight of the factor in the confidence score (percentage)
}

// Provider defines the interface for help content providers
type Provider interface {
	GetCheckInfo() CheckInfo
}

// System manages help content for the application
type System struct {
	providers map[string]Provider
	noColor   bool
	colors    map[string]*color.Color
}

// NewSystem creates a new help system
func NewSystem(noColor bool) *System {
	// Disable colors if requested
	if noColor {
		color.NoColor = true
	}

	return &System{
		providers: make(map[string]Provider),
		noColor:   noColor,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"subtitle": color.New(color.FgCyan, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"positive": color.New(color.FgGreen),
			"negative": color.New(color.FgRed),
			"warning":  color.New(color.FgYellow),
			"example":  color.New(color.FgMagenta),
		},
	}
}

// RegisterProvider adds a help provider to the system
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetCheckInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.colors["title"].Println("natid-scan - National Identity Number Scanner")
	fmt.Println("=============================================")
	fmt.Println()
	h.colors["header"].Println("USAGE:")
	fmt.Println("  natid-scan --file <path> [options]")
	fmt.Println("  natid-scan --dir <path> [--recursive] [options]")
	fmt.Println("  natid-scan --value <candidate> --country <code>  # Validate one value")
	fmt.Println()

	h.colors["header"].Println("OPTIONS:")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --file\t<path>\tPath to the input file to scan (glob patterns supported)")
	fmt.Fprintln(w, "  --dir\t<path>\tPath to a directory to scan")
	fmt.Fprintln(w, "  --recursive\t\tRecursively scan directories")
	fmt.Fprintln(w, "  --value\t<candidate>\tValidate a single candidate value and exit")
	fmt.Fprintln(w, "  --country\t<code>\tCountry for --value validation (e.g. ES_DNI, CL_RUT)")
	fmt.Fprintln(w, "  --countries\t<codes>\tCountries to scan for: MX_CURP,CN_RIC,JP_MYNUMBER,NL_BSN,ES_DNI,ES_NIE,CL_RUT,all (default: all)")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "  --list-profiles\t\tList available profiles in config file")
	fmt.Fprintln(w, "  --format\t<format>\tOutput format: text, json, yaml, csv (default: text)")
	fmt.Fprintln(w, "  --confidence\t<levels>\tConfidence levels to display: high,medium,low,all (default: all)")
	fmt.Fprintln(w, "  --output\t<path>\tPath to output file (if not specified, output to stdout)")
	fmt.Fprintln(w, "  --verbose\t\tDisplay detailed information for each finding")
	fmt.Fprintln(w, "  --debug\t\tEnable debug logging to show preprocessing and validation flow")
	fmt.Fprintln(w, "  --observability\t<level>\tObservability level: off, metrics, debug (default: off)")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --show-match\t\tDisplay the actual matched text in findings (otherwise shows [REDACTED])")
	fmt.Fprintln(w, "  --enable-preprocessors\t\tEnable text extraction from rich documents (PDF, images) (default: true)")
	fmt.Fprintln(w, "  --workers\t<n>\tNumber of parallel scan workers (default: automatic)")
	fmt.Fprintln(w, "  --allowlist-file\t<path>\tPath to allowlist configuration file (default: .natid-scan-allowlist.yaml)")
	fmt.Fprintln(w, "  --allowlist-add\t<value>\tAdd a value to the allowlist (requires --country)")
	fmt.Fprintln(w, "  --allowlist-reason\t<text>\tReason recorded with --allowlist-add")
	fmt.Fprintln(w, "  --allowlist-expires\t<days>\tDays until an added allowlist rule expires (default: never)")
	fmt.Fprintln(w, "  --allowlist-list\t\tList allowlist rules and exit")
	fmt.Fprintln(w, "  --allowlist-remove\t<rule-id>\tRemove an allowlist rule by ID")
	fmt.Fprintln(w, "  --list-countries\t\tList supported countries and exit")
	fmt.Fprintln(w, "  --list-formats\t\tList available output formats and exit")
	fmt.Fprintln(w, "  --quiet\t\tSuppress progress output (useful for scripts and CI/CD)")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help\t\tShow this help message")
	fmt.Fprintln(w, "  --help checks\t\tList all available checks")
	fmt.Fprintln(w, "  --help <check>\t\tShow detailed help for a specific check")
	w.Flush()

	fmt.Println()
	h.colors["header"].Println("EXAMPLES:")
	fmt.Println("  Basic Usage:")
	h.colors["example"].Println("    natid-scan --file export.csv")
	h.colors["example"].Println("    natid-scan --file export.csv --confidence high,medium --verbose")
	fmt.Println("  Restricting Countries:")
	h.colors["example"].Println("    natid-scan --dir data/ --recursive --countries ES_DNI,ES_NIE")
	h.colors["example"].Println("    natid-scan --value 12.345.678-5 --country CL_RUT")
	fmt.Println("  Configuration and Profiles:")
	h.colors["example"].Println("    natid-scan --file . --config natid.yaml --profile production")
	h.colors["example"].Println("    natid-scan --list-profiles --config natid.yaml")
	fmt.Println("  Allowlisting Fixtures:")
	h.colors["example"].Println("    natid-scan --allowlist-add 99999999R --country ES_DNI --allowlist-reason \"published specimen\"")

	fmt.Println()
	h.colors["header"].Println("CONFIGURATION:")
	fmt.Println("  Default config: ~/.config/natid-scan/config.yaml")
	fmt.Println("  Project config: natid-scan.yaml or .natid-scan.yaml (in current directory)")
	fmt.Println("  Environment: NATIDSCAN_CONFIG_DIR - Override config directory")
}

// ShowChecksHelp displays information about all available checks
func (h *System) ShowChecksHelp() {
	h.colors["title"].Println("Available Checks")
	fmt.Println("================")
	fmt.Println()
	fmt.Println("The following checks are available:")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  CHECK\tDESCRIPTION")
	h.colors["header"].Fprintln(w, "  -----\t-----------")

	var checkNames []string
	for _, provider := range h.providers {
		info := provider.GetCheckInfo()
		checkNames = append(checkNames, info.Name)
	}
	sort.Strings(checkNames)

	for _, checkName := range checkNames {
		provider := h.providers[strings.ToLower(checkName)]
		info := provider.GetCheckInfo()
		fmt.Fprintf(w, "  ")
		h.colors["emphasis"].Fprintf(w, "%s", info.Name)
		fmt.Fprintf(w, "\t%s\n", info.ShortDescription)
	}
	w.Flush()

	fmt.Println()
	fmt.Println("For detailed information about a specific check, use:")
	h.colors["example"].Println("  natid-scan --help <check>")
	if len(checkNames) > 0 {
		fmt.Println()
		fmt.Println("Example:")
		h.colors["example"].Printf("  natid-scan --help %s\n", checkNames[0])
	}
}

// ShowCheckHelp displays detailed help for a specific check
func (h *System) ShowCheckHelp(checkName string) bool {
	provider, exists := h.providers[strings.ToLower(checkName)]
	if !exists {
		h.colors["negative"].Printf("Error: Check '%s' not found.\n", checkName)
		fmt.Println("Use 'natid-scan --help checks' to see a list of available checks.")
		return false
	}

	info := provider.GetCheckInfo()

	h.colors["title"].Printf("%s Check\n", info.Name)
	fmt.Println(strings.Repeat("=", len(info.Name)+6))
	fmt.Println()
	fmt.Println(info.DetailedDescription)
	fmt.Println()

	if len(info.Patterns) > 0 {
		h.colors["header"].Println("PATTERNS DETECTED:")
		for _, pattern := range info.Patterns {
			fmt.Print("  - ")
			h.colors["item"].Println(pattern)
		}
		fmt.Println()
	}

	if len(info.SupportedFormats) > 0 {
		h.colors["header"].Println("SUPPORTED DOCUMENTS:")
		for _, format := range info.SupportedFormats {
			fmt.Print("  - ")
			h.colors["item"].Println(format)
		}
		fmt.Println()
	}

	h.colors["header"].Println("CONFIDENCE SCORING:")

	// Group factors by category
	categories := make(map[string][]ConfidenceFactor)
	for _, factor := range info.ConfidenceFactors {
		name := strings.ToLower(factor.Name)
		category := "Other"
		switch {
		case strings.Contains(name, "checksum") ||
			strings.Contains(name, "shape") ||
			strings.Contains(name, "format") ||
			strings.Contains(name, "subfield"):
			category = "Format Validation"
		case strings.Contains(name, "test") ||
			strings.Contains(name, "sequential") ||
			strings.Contains(name, "repeated"):
			category = "Pattern Analysis"
		case strings.Contains(name, "context") ||
			strings.Contains(name, "keyword"):
			category = "Contextual Analysis"
		}
		categories[category] = append(categories[category], factor)
	}

	categoryOrder := []string{"Format Validation", "Pattern Analysis", "Contextual Analysis", "Other"}

	for i, category := range categoryOrder {
		factors, ok := categories[category]
		if !ok || len(factors) == 0 {
			continue
		}

		categoryWeight := 0.0
		for _, factor := range factors {
			categoryWeight += factor.Weight
		}

		h.colors["emphasis"].Printf("%d. %s ", i+1, category)
		fmt.Printf("(%.0f%% of base score):\n", categoryWeight)
		for _, factor := range factors {
			fmt.Printf("   - ")
			h.colors["item"].Printf("%s ", factor.Name)
			fmt.Printf("(%.0f%%): %s\n", factor.Weight, factor.Description)
		}
		fmt.Println()
	}

	if len(info.PositiveKeywords) > 0 || len(info.NegativeKeywords) > 0 {
		h.colors["subtitle"].Println("Contextual Analysis (up to +50% or -50% adjustment):")

		if len(info.PositiveKeywords) > 0 {
			fmt.Print("   - Supporting keywords (+25% same line, +10% nearby): ")
			h.colors["positive"].Printf("%s",
				strings.Join(info.PositiveKeywords[:min(5, len(info.PositiveKeywords))], ", "))
			if len(info.PositiveKeywords) > 5 {
				fmt.Println("\n     and others...")
			} else {
				fmt.Println()
			}
		}

		if len(info.NegativeKeywords) > 0 {
			fmt.Print("   - Contradicting keywords (-15% same line, -8% nearby): ")
			h.colors["negative"].Printf("%s",
				strings.Join(info.NegativeKeywords[:min(5, len(info.NegativeKeywords))], ", "))
			if len(info.NegativeKeywords) > 5 {
				fmt.Println("\n     and others...")
			} else {
				fmt.Println()
			}
		}
		fmt.Println()
	}

	h.colors["header"].Println("Confidence Levels:")
	fmt.Print("- ")
	h.colors["negative"].Print("HIGH")
	fmt.Println(" (80-100%): Very likely a real identity number")
	fmt.Print("- ")
	h.colors["warning"].Print("MEDIUM")
	fmt.Println(" (50-79%): Possibly an identity number")
	fmt.Print("- ")
	h.colors["positive"].Print("LOW")
	fmt.Println(" (0-49%): Likely test data or a false positive")
	fmt.Println()

	if info.ConfigurationInfo != "" {
		h.colors["header"].Println("CONFIGURATION:")
		fmt.Println(info.ConfigurationInfo)
		fmt.Println()
	}

	if len(info.Examples) > 0 {
		h.colors["header"].Println("EXAMPLES:")
		for _, example := range info.Examples {
			fmt.Print("  ")
			h.colors["example"].Println(example)
		}
	}

	return true
}
