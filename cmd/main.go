// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"natid-scan/internal/allowlist"
	"natid-scan/internal/config"
	"natid-scan/internal/core"
	"natid-scan/internal/detector"
	"natid-scan/internal/help"
	"natid-scan/internal/natid"
	"natid-scan/internal/observability"
	"natid-scan/internal/parallel"
	"natid-scan/internal/security"
	"natid-scan/internal/validators/nationalid"
	"natid-scan/internal/version"

	"natid-scan/internal/formatters"
	_ "natid-scan/internal/formatters/csv"
	_ "natid-scan/internal/formatters/json"
	_ "natid-scan/internal/formatters/text"
	_ "natid-scan/internal/formatters/yaml"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	// If config file is not specified, try to find one in standard locations
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	// Load configuration (will use defaults if file not found)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// configFlags holds command line flag values
type configFlags struct {
	outputFormat        string
	confidenceLevels    string
	countries           string
	observability       string
	allowlistFile       string
	verbose             bool
	debug               bool
	noColor             bool
	recursive           bool
	enablePreprocessors bool
	workers             int
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format              string
	confidenceLevels    string
	countries           string
	observability       string
	allowlistFile       string
	verbose             bool
	debug               bool
	noColor             bool
	recursive           bool
	enablePreprocessors bool
	workers             int
	excludePatterns     []string
}

// resolveConfiguration resolves final configuration values from config file, profile, and command line flags
func resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{}

	// Format
	final.format = "text" // default fallback
	if cfg != nil && cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}
	if activeProfile != nil && activeProfile.Format != "" {
		final.format = activeProfile.Format
	}
	if isFlagSet("format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}

	// Confidence levels
	final.confidenceLevels = "all" // default fallback
	if cfg != nil && cfg.Defaults.ConfidenceLevels != "" {
		final.confidenceLevels = cfg.Defaults.ConfidenceLevels
	}
	if activeProfile != nil && activeProfile.ConfidenceLevels != "" {
		final.confidenceLevels = activeProfile.ConfidenceLevels
	}
	if isFlagSet("confidence") && flags.confidenceLevels != "" {
		final.confidenceLevels = flags.confidenceLevels
	}

	// Countries to scan for
	final.countries = "all" // default fallback
	if cfg != nil && cfg.Defaults.Countries != "" {
		final.countries = cfg.Defaults.Countries
	}
	if activeProfile != nil && activeProfile.Countries != "" {
		final.countries = activeProfile.Countries
	}
	if isFlagSet("countries") && flags.countries != "" {
		final.countries = flags.countries
	}

	// Observability level
	final.observability = "off" // default fallback
	if cfg != nil && cfg.Defaults.Observability != "" {
		final.observability = cfg.Defaults.Observability
	}
	if isFlagSet("observability") && flags.observability != "" {
		final.observability = flags.observability
	}

	// Allowlist file
	final.allowlistFile = "" // default fallback (standard location)
	if cfg != nil && cfg.Defaults.Allowlist != "" {
		final.allowlistFile = cfg.Defaults.Allowlist
	}
	if activeProfile != nil && activeProfile.Allowlist != "" {
		final.allowlistFile = activeProfile.Allowlist
	}
	if isFlagSet("allowlist-file") && flags.allowlistFile != "" {
		final.allowlistFile = flags.allowlistFile
	}

	// Verbose
	final.verbose = false // default fallback
	if cfg != nil {
		final.verbose = cfg.Defaults.Verbose
	}
	if activeProfile != nil {
		final.verbose = activeProfile.Verbose
	}
	if isFlagSet("verbose") {
		final.verbose = flags.verbose
	}

	// Debug
	final.debug = false // default fallback
	if cfg != nil {
		final.debug = cfg.Defaults.Debug
	}
	if activeProfile != nil {
		final.debug = activeProfile.Debug
	}
	if isFlagSet("debug") {
		final.debug = flags.debug
	}

	// No color
	final.noColor = false // default fallback
	if cfg != nil {
		final.noColor = cfg.Defaults.NoColor
	}
	if activeProfile != nil {
		final.noColor = activeProfile.NoColor
	}
	if isFlagSet("no-color") {
		final.noColor = flags.noColor
	}

	// Recursive
	final.recursive = false // default fallback
	if cfg != nil {
		final.recursive = cfg.Defaults.Recursive
	}
	if activeProfile != nil {
		final.recursive = activeProfile.Recursive
	}
	if isFlagSet("recursive") {
		final.recursive = flags.recursive
	}

	// Enable preprocessors
	final.enablePreprocessors = true // default fallback
	if cfg != nil {
		final.enablePreprocessors = cfg.Defaults.EnablePreprocessors
	}
	if activeProfile != nil {
		final.enablePreprocessors = activeProfile.EnablePreprocessors
	}
	if isFlagSet("enable-preprocessors") {
		final.enablePreprocessors = flags.enablePreprocessors
	}

	// Worker count
	final.workers = 0 // default fallback (automatic)
	if cfg != nil && cfg.Defaults.Workers > 0 {
		final.workers = cfg.Defaults.Workers
	}
	if activeProfile != nil && activeProfile.Workers > 0 {
		final.workers = activeProfile.Workers
	}
	if isFlagSet("workers") && flags.workers > 0 {
		final.workers = flags.workers
	}

	// Exclude patterns
	if cfg != nil {
		final.excludePatterns = cfg.Defaults.ExcludePatterns
	}
	if activeProfile != nil && len(activeProfile.ExcludePatterns) > 0 {
		final.excludePatterns = activeProfile.ExcludePatterns
	}

	return final
}

// handleProfiles lists or resolves configuration profiles
func handleProfiles(cfg *config.Config, listProfiles bool, profileName, configFile string) *config.Profile {
	// List profiles if requested
	if listProfiles {
		profiles := cfg.ListProfiles()
		if len(profiles) == 0 {
			fmt.Println("No profiles defined in configuration file.")
		} else {
			fmt.Println("Available profiles:")
			for _, name := range profiles {
				profile := cfg.GetProfile(name)
				if profile != nil && profile.Description != "" {
					fmt.Printf("  - %s: %s\n", name, profile.Description)
				} else {
					fmt.Printf("  - %s\n", name)
				}
			}
		}
		os.Exit(0)
	}

	// Apply profile settings if specified
	var activeProfile *config.Profile
	if profileName != "" {
		if cfg == nil {
			fmt.Fprintf(os.Stderr, "Error: Cannot use profile '%s' - no configuration loaded\n", profileName)
			os.Exit(1)
		}
		activeProfile = cfg.GetProfile(profileName)
		if activeProfile == nil {
			fmt.Fprintf(os.Stderr, "Error: Profile '%s' not found in config file\n", profileName)
			fmt.Fprintf(os.Stderr, "Check available profiles with --list-profiles\n")
			os.Exit(1)
		}
	}
	return activeProfile
}

func main() {
	// A project-local .env can carry NATIDSCAN_* overrides; a missing
	// file is not an error.
	_ = godotenv.Load()

	// Parse command line flags
	inputFile := flag.String("file", "", "Path to the input file or glob pattern (e.g., *.csv)")
	inputDir := flag.String("dir", "", "Path to a directory to scan")
	singleValue := flag.String("value", "", "Validate a single candidate value and exit")
	valueCountry := flag.String("country", "", "Country for --value validation or --allowlist-add (e.g. ES_DNI)")
	countriesToRun := flag.String("countries", "", "Countries to scan for: MX_CURP, CN_RIC, JP_MYNUMBER, NL_BSN, ES_DNI, ES_NIE, CL_RUT, or combinations like 'ES_DNI,CL_RUT'")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	profileName := flag.String("profile", "", "Profile name to use from config file")
	listProfiles := flag.Bool("list-profiles", false, "List available profiles in config file")
	outputFormat := flag.String("format", "", "Output format: text, json, yaml, csv (default: text)")
	confidenceLevels := flag.String("confidence", "", "Confidence levels to display: high, medium, low, or combinations like 'high,medium'")
	verbose := flag.Bool("verbose", false, "Display detailed information for each finding")
	debug := flag.Bool("debug", false, "Enable debug logging to show preprocessing and validation flow")
	outputFile := flag.String("output", "", "Path to output file (if not specified, output to stdout)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	showHelp := flag.Bool("help", false, "Show help information")
	showVersion := flag.Bool("version", false, "Show version information")
	showMatch := flag.Bool("show-match", false, "Display the actual matched text in findings")
	showAllowlisted := flag.Bool("show-allowlisted", false, "Include allowlisted findings in output with rule details (marked as [ALLOW] in text format)")
	recursive := flag.Bool("recursive", false, "Recursively scan directories")
	enablePreprocessors := flag.Bool("enable-preprocessors", true, "Enable text extraction from rich documents (PDF, images) (default: true, use --enable-preprocessors=false to disable)")
	observabilityLevel := flag.String("observability", "", "Observability level: off, metrics, debug")
	workers := flag.Int("workers", 0, "Number of parallel scan workers (default: automatic)")
	quiet := flag.Bool("quiet", false, "Suppress progress output (useful for scripts and CI/CD)")

	// Allowlist management flags
	allowlistFile := flag.String("allowlist-file", "", "Path to allowlist configuration file (default: standard location)")
	allowlistAdd := flag.String("allowlist-add", "", "Add a value to the allowlist (requires --country)")
	allowlistReason := flag.String("allowlist-reason", "", "Reason recorded with --allowlist-add")
	allowlistExpires := flag.Int("allowlist-expires", 0, "Days until an added allowlist rule expires (0 = never)")
	allowlistRemove := flag.String("allowlist-remove", "", "Remove an allowlist rule by ID")
	allowlistList := flag.Bool("allowlist-list", false, "List allowlist rules and exit")

	// Listing flags
	listCountries := flag.Bool("list-countries", false, "List supported countries and exit")
	listFormats := flag.Bool("list-formats", false, "List available output formats and exit")

	flag.Parse()

	// Handle version command
	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// Auto-detect non-interactive environment
	isInteractive := isTerminal(os.Stderr)
	if !isInteractive || *quiet || os.Getenv("CI") != "" {
		*noColor = true
	}

	// Create debug observer early for configuration logging
	var mainDebugObs *observability.DebugObserver
	if *debug {
		mainDebugObs = observability.NewDebugObserver(os.Stderr)
		mainDebugObs.LogDetail("main", fmt.Sprintf("Command line arguments: %v", os.Args))
	}

	// Load configuration
	cfg := loadConfiguration(*configFile)

	// Handle profile operations
	activeProfile := handleProfiles(cfg, *listProfiles, *profileName, *configFile)

	// Resolve final configuration values
	finalConfig := resolveConfiguration(cfg, activeProfile, &configFlags{
		outputFormat:        *outputFormat,
		confidenceLevels:    *confidenceLevels,
		countries:           *countriesToRun,
		observability:       *observabilityLevel,
		allowlistFile:       *allowlistFile,
		verbose:             *verbose,
		debug:               *debug,
		noColor:             *noColor,
		recursive:           *recursive,
		enablePreprocessors: *enablePreprocessors,
		workers:             *workers,
	})

	// Check if NATIDSCAN_DEBUG environment variable is set
	if os.Getenv("NATIDSCAN_DEBUG") != "" {
		finalConfig.debug = true
	}

	// Handle help commands
	if *showHelp {
		helpSystem := help.NewSystem(finalConfig.noColor)
		helpSystem.RegisterProvider(nationalid.NewValidator())

		args := flag.Args()
		if len(args) == 0 {
			helpSystem.ShowGeneralHelp()
			return
		} else if len(args) == 1 {
			if strings.ToLower(args[0]) == "checks" {
				helpSystem.ShowChecksHelp()
				return
			}
			if helpSystem.ShowCheckHelp(args[0]) {
				return
			}
			os.Exit(1)
		} else {
			fmt.Println("Error: Too many arguments for help command")
			fmt.Println("Use 'natid-scan --help', 'natid-scan --help checks', or 'natid-scan --help <check>'")
			os.Exit(1)
		}
	}

	// Handle listing commands
	if *listCountries {
		printSupportedCountries()
		return
	}
	if *listFormats {
		printSupportedFormats()
		return
	}

	// Handle allowlist management commands
	if *allowlistAdd != "" || *allowlistRemove != "" || *allowlistList {
		runAllowlistCommand(finalConfig.allowlistFile, *allowlistAdd, *valueCountry,
			*allowlistReason, *allowlistExpires, *allowlistRemove, *allowlistList)
		return
	}

	// Handle single-value validation mode
	if *singleValue != "" {
		runSingleValue(*singleValue, *valueCountry, finalConfig.format, *quiet)
		return
	}

	// Handle file arguments (files/directories)
	var inputPaths []string
	if *inputFile != "" {
		inputPaths = append(inputPaths, *inputFile)
	}
	if *inputDir != "" {
		inputPaths = append(inputPaths, *inputDir)
	}

	// Add any additional arguments as file paths (for shell-expanded globs)
	if args := flag.Args(); len(args) > 0 {
		if mainDebugObs != nil {
			mainDebugObs.LogDetail("main", fmt.Sprintf("Found %d additional arguments: %v", len(args), args))
		}
		inputPaths = append(inputPaths, args...)
	}

	if len(inputPaths) == 0 {
		fmt.Fprintf(os.Stderr, "Error: Input file or directory is required\n")
		fmt.Fprintf(os.Stderr, "Specify a file or directory path to scan, or use --help for usage\n")
		os.Exit(1)
	}

	// Get list of files to process (supports glob patterns like *.csv)
	var filesToProcess []string
	var totalSkipped int

	for _, inputPath := range inputPaths {
		// Validate and sanitize the input path
		cleanPath := filepath.Clean(inputPath)
		abs, err := filepath.Abs(cleanPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Invalid input path: %s\n", inputPath)
			continue
		}
		// Path traversal attempts are skipped, not scanned
		if strings.Contains(inputPath, "..") || strings.Contains(cleanPath, "..") {
			totalSkipped++
			continue
		}
		cleanPath = abs

		result, err := getFilesToProcess(cleanPath, finalConfig.recursive, finalConfig.excludePatterns)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			continue
		}

		if mainDebugObs != nil {
			mainDebugObs.LogDetail("main", fmt.Sprintf("Found %d files from %s", len(result.FilesToProcess), inputPath))
		}

		filesToProcess = append(filesToProcess, result.FilesToProcess...)

		for _, skipped := range result.SkippedFiles {
			totalSkipped++
			if !skipped.Silent {
				fmt.Fprintf(os.Stderr, "Warning: Skipping %s: %s\n", skipped.Path, skipped.Reason)
			}
		}
	}

	if len(filesToProcess) == 0 {
		fmt.Println("No files to process")
		os.Exit(0)
	}

	// Build the scanner shared by all workers
	scanner, err := core.NewScanner(core.ScanConfig{
		Countries:           splitList(finalConfig.countries),
		ConfidenceLevels:    finalConfig.confidenceLevels,
		Debug:               finalConfig.debug,
		EnablePreprocessors: finalConfig.enablePreprocessors,
		Observability:       finalConfig.observability,
		AllowlistManager:    allowlist.NewManager(finalConfig.allowlistFile),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Use --list-countries to see supported country codes\n")
		os.Exit(1)
	}

	// Filter out files no preprocessor can handle
	var supportedFiles []string
	skippedUnsupported := 0
	for _, filePath := range filesToProcess {
		if scanner.CanProcess(filePath) {
			supportedFiles = append(supportedFiles, filePath)
		} else {
			skippedUnsupported++
		}
	}

	suppressProgress := finalConfig.debug || *quiet || !isInteractive

	if !suppressProgress {
		fmt.Fprintf(os.Stderr, "Starting scan of %d files...\n", len(supportedFiles))
		if totalSkipped+skippedUnsupported > 0 {
			fmt.Fprintf(os.Stderr, "Filtered out %d unsupported files\n", totalSkipped+skippedUnsupported)
		}
	}

	// Progress bar function with ETA
	progressStart := time.Now()
	updateProgress := func(current, total int) {
		if suppressProgress {
			return
		}
		percent := float64(current) / float64(total) * 100
		barWidth := 40
		filledWidth := int(float64(barWidth) * float64(current) / float64(total))
		bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", barWidth-filledWidth)

		var etaStr string
		if current > 0 {
			elapsed := time.Since(progressStart)
			avgTime := elapsed / time.Duration(current)
			remaining := time.Duration(total-current) * avgTime
			etaStr = fmt.Sprintf(" ETA: %s", remaining.Round(time.Second))
		}

		fmt.Fprintf(os.Stderr, "\r[%s] %d/%d files (%.1f%%)%s", bar, current, total, percent, etaStr)
		if current == total {
			fmt.Fprintf(os.Stderr, "\n")
		}
	}

	var scanResult *core.ScanResult
	var stats *parallel.ProcessingStats

	if len(supportedFiles) > 0 {
		processor := parallel.NewProcessor(scanner, finalConfig.workers)

		if mainDebugObs != nil {
			mainDebugObs.LogDetail("main", fmt.Sprintf("Scanning with %d workers", processor.Workers()))
		}

		var progressCallback parallel.ProgressCallback
		if !suppressProgress {
			updateProgress(0, len(supportedFiles))
			progressCallback = func(completed, total int, currentFile string) {
				updateProgress(completed, total)
			}
		}

		scanResult, stats, err = processor.ProcessFilesWithProgress(context.Background(), supportedFiles, progressCallback)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Scan aborted: %v\n", err)
			os.Exit(1)
		}

		// Per-file failures are non-fatal; report them and keep the results
		for _, failure := range stats.Failures {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", failure.Err)
		}

		if finalConfig.debug {
			fmt.Fprintf(os.Stderr, "[DEBUG] Parallel processing: %d files, %d matches, %d workers, %dms\n",
				stats.ProcessedFiles, stats.TotalMatches, stats.WorkerCount, stats.TotalDuration.Milliseconds())
		}
	} else {
		scanResult = &core.ScanResult{}
		stats = &parallel.ProcessingStats{}
	}

	elapsed := time.Since(progressStart)
	if !suppressProgress {
		if stats.FailedFiles > 0 {
			fmt.Fprintf(os.Stderr, "Scan complete: %d files processed, %d failed in %s\n",
				stats.ProcessedFiles, stats.FailedFiles, elapsed.Round(time.Millisecond))
		} else {
			fmt.Fprintf(os.Stderr, "Scan complete: %d files processed in %s\n",
				stats.ProcessedFiles, elapsed.Round(time.Millisecond))
		}
	}

	if scanResult.AllowlistedCount > 0 && !*quiet {
		if *showAllowlisted {
			fmt.Fprintf(os.Stderr, "%d findings matched allowlist rules (shown below with [ALLOW] label)\n",
				scanResult.AllowlistedCount)
		} else {
			fmt.Fprintf(os.Stderr, "%d findings matched allowlist rules (use --show-allowlisted to see them)\n",
				scanResult.AllowlistedCount)
		}
	}

	// Get the appropriate formatter with error handling
	formatter, exists := formatters.Get(finalConfig.format)
	if !exists {
		fmt.Fprintf(os.Stderr, "Error: Unsupported output format '%s'\n", finalConfig.format)
		fmt.Fprintf(os.Stderr, "Use one of: %s\n", strings.Join(formatters.List(), ", "))
		os.Exit(1)
	}

	formatterOptions := formatters.FormatterOptions{
		ConfidenceLevel: core.ParseConfidenceLevels(finalConfig.confidenceLevels),
		Verbose:         finalConfig.verbose,
		NoColor:         finalConfig.noColor,
		ShowMatch:       *showMatch,
	}

	var allowlistedForOutput []detector.AllowlistedMatch
	if *showAllowlisted {
		allowlistedForOutput = scanResult.AllowlistedMatches
	}

	result, err := formatter.Format(scanResult.Matches, allowlistedForOutput, formatterOptions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting results: %v\n", err)
		os.Exit(1)
	}

	// Clear sensitive data from memory
	for i := range scanResult.Matches {
		scanResult.Matches[i].Clear()
	}
	runtime.GC()

	// Output results
	if *outputFile != "" {
		if err := writeOutputFile(*outputFile, result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(result)
	}

	os.Exit(0)
}

// printSupportedCountries lists the registered document profiles
func printSupportedCountries() {
	fmt.Println("Supported countries:")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  KEY\tDOCUMENT\tALGORITHM\tLENGTH")
	fmt.Fprintln(w, "  ---\t--------\t---------\t------")
	for _, profile := range natid.Profiles() {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%d\n",
			profile.Key, profile.DocumentName, profile.Algorithm, profile.ExpectedLength)
	}
	w.Flush()
}

// printSupportedFormats lists the registered output formatters
func printSupportedFormats() {
	fmt.Println("Available output formats:")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  FORMAT\tEXTENSION\tDESCRIPTION")
	fmt.Fprintln(w, "  ------\t---------\t-----------")
	for _, info := range formatters.GetSupportedFormats() {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", info.Name, info.Extension, info.Description)
	}
	w.Flush()
}

// runAllowlistCommand handles the allowlist management flags
func runAllowlistCommand(allowlistPath, addValue, country, reason string, expiresDays int, removeID string, list bool) {
	manager := allowlist.NewManager(allowlistPath)

	if addValue != "" {
		if country == "" {
			fmt.Fprintf(os.Stderr, "Error: --allowlist-add requires --country\n")
			fmt.Fprintf(os.Stderr, "Use --list-countries to see supported country codes\n")
			os.Exit(1)
		}
		key, ok := natid.ParseKey(country)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: Unknown country %q\n", country)
			fmt.Fprintf(os.Stderr, "Use --list-countries to see supported country codes\n")
			os.Exit(1)
		}

		var expiresAt *time.Time
		if expiresDays > 0 {
			t := time.Now().AddDate(0, 0, expiresDays)
			expiresAt = &t
		}

		createdBy := os.Getenv("USER")
		if createdBy == "" {
			createdBy = "cli"
		}

		rule, err := manager.AddValue(string(key), addValue, reason, createdBy, expiresAt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added allowlist rule %s for %s value %s (stored as hash only)\n",
			rule.ID, key, security.Mask(addValue))
		return
	}

	if removeID != "" {
		if err := manager.RemoveRule(removeID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed allowlist rule %s\n", removeID)
		return
	}

	if list {
		rules := manager.ListRules()
		if len(rules) == 0 {
			fmt.Println("No allowlist rules configured.")
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOUNTRY\tENABLED\tCREATED BY\tEXPIRES\tREASON")
		for _, rule := range rules {
			expires := "-"
			if rule.ExpiresAt != nil {
				expires = rule.ExpiresAt.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\t%s\t%s\n",
				rule.ID, rule.Country, rule.Enabled, rule.CreatedBy, expires, rule.Reason)
		}
		w.Flush()
	}
}

// runSingleValue validates one candidate and exits with 0 when it is
// fully valid, 1 otherwise.
func runSingleValue(value, country, format string, quiet bool) {
	var verdict natid.Verdict
	if country != "" {
		key, ok := natid.ParseKey(country)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: Unknown country %q\n", country)
			fmt.Fprintf(os.Stderr, "Use --list-countries to see supported country codes\n")
			os.Exit(1)
		}
		verdict = natid.Validate(natid.Normalize(key, value), key)
	} else {
		// No hint: try each profile with its own normalization. A shape
		// match with a failed checksum is more informative than no match,
		// so the best partial verdict wins when nothing fully validates.
		verdict = natid.Validate(value, "")
		for _, profile := range natid.Profiles() {
			v := natid.Validate(natid.Normalize(profile.Key, value), profile.Key)
			if v.OK() {
				verdict = v
				break
			}
			if v.ShapeMatched && !verdict.ShapeMatched {
				verdict = v
			}
		}
	}

	if !quiet {
		if format == "json" {
			data, err := json.MarshalIndent(verdict, "", "  ")
			if err == nil {
				fmt.Println(string(data))
			}
		} else if verdict.OK() {
			document := string(verdict.Key)
			if profile, ok := natid.Lookup(verdict.Key); ok {
				document = fmt.Sprintf("%s (%s)", profile.DocumentName, profile.Key)
			}
			fmt.Printf("VALID: %s is a well-formed %s\n", value, document)
		} else {
			failure := string(verdict.Failure)
			if failure == "" {
				failure = string(natid.FailureNoMatchingFormat)
			}
			fmt.Printf("INVALID: %s (%s)\n", value, failure)
		}
	}

	if verdict.OK() {
		os.Exit(0)
	}
	os.Exit(1)
}

// writeOutputFile writes formatted results to a file with restrictive
// permissions, creating parent directories as needed.
func writeOutputFile(outputPath, content string) error {
	cleanOutputPath := filepath.Clean(outputPath)
	abs, err := filepath.Abs(cleanOutputPath)
	if err != nil {
		return fmt.Errorf("invalid output file path: %s", outputPath)
	}
	// Check for path traversal attempts
	if strings.Contains(outputPath, "..") || strings.Contains(cleanOutputPath, "..") {
		return fmt.Errorf("path traversal not allowed in output path: %s", outputPath)
	}
	cleanOutputPath = abs

	outputDir := filepath.Dir(cleanOutputPath)
	if err := os.MkdirAll(outputDir, 0700); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	// Scan reports can contain sensitive values; owner-only permissions
	if err := os.WriteFile(cleanOutputPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("error writing to output file: %w", err)
	}
	return nil
}

// splitList converts a comma-separated flag value into trimmed entries
func splitList(value string) []string {
	var out []string
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

// ProcessingResult holds the result of file processing discovery
type ProcessingResult struct {
	FilesToProcess []string
	SkippedFiles   []SkippedFile
}

// SkippedFile represents a file that was skipped during processing
type SkippedFile struct {
	Path   string
	Reason string
	Silent bool // true = don't show to user, false = show as warning
}

// maxFileSize bounds how large a file the scanner will read.
const maxFileSize = 100 * 1024 * 1024

// isArchiveOrMediaType checks if a file extension belongs to a bulk
// format that is skipped silently when oversized
func isArchiveOrMediaType(ext string) bool {
	archiveOrMediaTypes := map[string]bool{
		".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
		".mp3": true, ".wav": true, ".flac": true,
		".dmg": true, ".iso": true, ".img": true,
		".zip": true, ".tar": true, ".gz": true, ".7z": true,
	}
	return archiveOrMediaTypes[ext]
}

// matchesExcludePattern reports whether the file's basename matches any
// configured exclude pattern
func matchesExcludePattern(path string, excludePatterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range excludePatterns {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// getFilesToProcess returns a list of files to process based on the input path.
// Supports glob patterns like *.csv, files, and directories.
func getFilesToProcess(inputPath string, recursive bool, excludePatterns []string) (*ProcessingResult, error) {
	result := &ProcessingResult{
		FilesToProcess: []string{},
		SkippedFiles:   []SkippedFile{},
	}

	// Validate input path before any file operations
	if strings.Contains(inputPath, "..") {
		return nil, fmt.Errorf("path traversal not allowed: %s", inputPath)
	}

	// Check if the path exists as-is first; a literal filename wins over
	// glob interpretation even when it contains glob characters
	if info, err := os.Stat(inputPath); err == nil {
		if info.Mode().IsRegular() {
			appendRegularFile(result, inputPath, info.Size(), excludePatterns)
			return result, nil
		}
		if info.IsDir() {
			return walkDirectory(result, inputPath, recursive, excludePatterns)
		}
		return nil, fmt.Errorf("path is neither a regular file nor a directory")
	} else if strings.ContainsAny(inputPath, "*?") || (strings.Contains(inputPath, "[") && strings.Contains(inputPath, "]")) {
		// Expand home directory if present
		expandedPath := inputPath
		if strings.HasPrefix(inputPath, "~/") {
			if homeDir, err := os.UserHomeDir(); err == nil {
				expandedPath = filepath.Join(homeDir, inputPath[2:])
			}
		}

		matches, err := filepath.Glob(expandedPath)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern: %s", inputPath)
		}

		for _, match := range matches {
			cleanMatch := filepath.Clean(match)
			if strings.Contains(cleanMatch, "..") {
				continue
			}
			info, err := os.Stat(cleanMatch)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			appendRegularFile(result, cleanMatch, info.Size(), excludePatterns)
		}
		return result, nil
	}

	return nil, fmt.Errorf("path does not exist or is not accessible: %s", inputPath)
}

// appendRegularFile applies the size and exclusion gates before adding a
// file to the processing list
func appendRegularFile(result *ProcessingResult, path string, size int64, excludePatterns []string) {
	if matchesExcludePattern(path, excludePatterns) {
		result.SkippedFiles = append(result.SkippedFiles, SkippedFile{
			Path:   path,
			Reason: "matches exclude pattern",
			Silent: true,
		})
		return
	}
	if size > maxFileSize {
		ext := strings.ToLower(filepath.Ext(path))
		result.SkippedFiles = append(result.SkippedFiles, SkippedFile{
			Path:   path,
			Reason: fmt.Sprintf("file too large (max size: %dMB)", maxFileSize/(1024*1024)),
			Silent: isArchiveOrMediaType(ext),
		})
		return
	}
	result.FilesToProcess = append(result.FilesToProcess, path)
}

// walkDirectory collects regular files under dirPath, honoring the
// recursive flag and exclude patterns
func walkDirectory(result *ProcessingResult, dirPath string, recursive bool, excludePatterns []string) (*ProcessingResult, error) {
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		cleanWalkPath := filepath.Clean(path)
		if strings.Contains(path, "..") || strings.Contains(cleanWalkPath, "..") {
			return nil
		}

		// Handle errors accessing a path
		if err != nil {
			result.SkippedFiles = append(result.SkippedFiles, SkippedFile{
				Path:   path,
				Reason: err.Error(),
				Silent: false,
			})
			return nil // Continue walking despite the error
		}

		// Skip subdirectories if not recursive
		if !recursive && info.IsDir() && path != dirPath {
			return filepath.SkipDir
		}

		if info.Mode().IsRegular() {
			appendRegularFile(result, cleanWalkPath, info.Size(), excludePatterns)
		}
		return nil
	})

	// Only return an error if we couldn't even start the walk
	if err != nil {
		return nil, fmt.Errorf("error accessing directory: %w", err)
	}
	return result, nil
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isTerminal checks whether the file descriptor is attached to a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
