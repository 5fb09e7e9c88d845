// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"natid-scan/internal/observability"
)

// maxTextFileSize caps how much of a text file is read. Identity numbers
// in files larger than this are beyond what a single scan should chew on.
const maxTextFileSize = 50 * 1024 * 1024

// PlainTextPreprocessor handles plain text files by passing their content
// through, so text files run the same pipeline as extracted formats.
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{
		// Plain text files
		".txt", ".text", ".log", ".md", ".markdown", ".rst",
		// Configuration files
		".yaml", ".yml", ".json", ".xml", ".toml", ".ini", ".conf", ".cfg",
		// Data files
		".csv", ".tsv", ".jsonl", ".ndjson",
		// Source and script files that often embed fixture data
		".py", ".js", ".ts", ".java", ".go", ".rb", ".php", ".sql",
		".sh", ".bash", ".ps1", ".bat",
		// Markup
		".html", ".htm",
		// Other text formats
		".env", ".gitignore",
	}
}

// CanProcess checks if this preprocessor can handle the given file
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	if hasExtension(filePath, ptp.GetSupportedExtensions()) {
		return true
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != "" {
		return false
	}

	// Known extensionless text files
	basename := strings.ToLower(filepath.Base(filePath))
	for _, name := range []string{"readme", "license", "changelog", "makefile", "dockerfile", "notes"} {
		if basename == name {
			return true
		}
	}

	// Unknown extensionless file: sniff the content
	return ptp.isTextFile(filePath)
}

// Process extracts text content from the file
func (ptp *PlainTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if ptp.observer != nil {
		finishTiming = ptp.observer.StartTiming("plaintext_preprocessor", "process_file", filePath)
		if ptp.observer.DebugObserver != nil {
			finishStep = ptp.observer.DebugObserver.StartStep("plaintext_preprocessor", "process_file", filePath)
		}
	}

	content, err := ptp.readTextFile(filePath)
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		if finishStep != nil {
			finishStep(false, fmt.Sprintf("Failed to read text file: %v", err))
		}
		return &ProcessedContent{
			OriginalPath:  filePath,
			Filename:      filepath.Base(filePath),
			ProcessorType: "plaintext",
			Success:       false,
			Error:         err,
		}, err
	}

	result := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          content,
		Format:        "Plain Text",
		WordCount:     len(strings.Fields(content)),
		CharCount:     len(content),
		LineCount:     strings.Count(content, "\n") + 1,
		ProcessorType: "plaintext",
		Success:       true,
		Metadata:      make(map[string]interface{}),
	}

	if ext := strings.ToLower(filepath.Ext(filePath)); ext != "" {
		result.Metadata["file_extension"] = ext
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"word_count": result.WordCount,
			"char_count": result.CharCount,
			"line_count": result.LineCount,
		})
	}
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("Extracted %d lines", result.LineCount))
	}
	return result, nil
}

// readTextFile reads the file, rejecting binary content and enforcing the
// size cap.
func (ptp *PlainTextPreprocessor) readTextFile(filePath string) (string, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return "", err
	}
	if info.Size() > maxTextFileSize {
		return "", fmt.Errorf("file too large for text scanning: %d bytes", info.Size())
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	if isBinaryData(data) {
		return "", fmt.Errorf("file appears to be binary")
	}
	return string(data), nil
}

// isTextFile sniffs the start of an extensionless file.
func (ptp *PlainTextPreprocessor) isTextFile(filePath string) bool {
	f, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return false
	}
	return !isBinaryData(buf[:n])
}

// isBinaryData reports whether data looks like binary rather than text.
// NUL bytes are the strongest signal; badly broken UTF-8 is the second.
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) > 8192 {
		sample = sample[:8192]
	}

	invalid := 0
	for i := 0; i < len(sample); {
		if sample[i] == 0 {
			return true
		}
		r, size := utf8.DecodeRune(sample[i:])
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		i += size
	}
	return invalid > len(sample)/10
}
