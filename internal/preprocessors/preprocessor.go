// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package preprocessors extracts scannable text from the file formats the
// scanner accepts. Each preprocessor turns one format into plain text so
// the validators only ever see line-oriented content.
package preprocessors

import (
	"path/filepath"
	"strings"

	"natid-scan/internal/observability"
)

// ProcessedContent represents content that has been processed by a preprocessor
type ProcessedContent struct {
	// Original file information
	OriginalPath string
	Filename     string

	// Extracted content
	Text string

	// Content metadata
	Format    string
	PageCount int
	WordCount int
	CharCount int
	LineCount int

	// Processing information
	ProcessorType string
	Success       bool
	Error         error

	// Additional format-specific metadata
	Metadata map[string]interface{}
}

// Preprocessor interface defines methods for preprocessing files
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts content from the file
	Process(filePath string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager manages all available preprocessors
type PreprocessorManager struct {
	preprocessors []Preprocessor
}

// NewPreprocessorManager creates a new preprocessor manager
func NewPreprocessorManager() *PreprocessorManager {
	return &PreprocessorManager{
		preprocessors: make([]Preprocessor, 0),
	}
}

// RegisterDefaultPreprocessors registers the standard preprocessor set in
// routing order. PDF and image handling run before the plain text
// fallback so their extensions are not misread as text.
func RegisterDefaultPreprocessors(pm *PreprocessorManager, observer *observability.StandardObserver) {
	for _, p := range []Preprocessor{
		NewPDFPreprocessor(),
		NewImagePreprocessor(),
		NewPlainTextPreprocessor(),
	} {
		p.SetObserver(observer)
		pm.RegisterPreprocessor(p)
	}
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// CanProcessFile reports whether any registered preprocessor accepts the file.
func (pm *PreprocessorManager) CanProcessFile(filePath string) bool {
	return pm.GetPreprocessor(filePath) != nil
}

// ProcessFile processes a file with the first preprocessor that accepts it.
// When several accept, later ones act as fallbacks for extraction failures.
func (pm *PreprocessorManager) ProcessFile(filePath string) (*ProcessedContent, error) {
	var available []Preprocessor
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			available = append(available, p)
		}
	}

	if len(available) == 0 {
		return &ProcessedContent{
			OriginalPath:  filePath,
			Filename:      filepath.Base(filePath),
			ProcessorType: "none",
			Success:       false,
		}, nil
	}

	var lastError error
	for _, preprocessor := range available {
		result, err := preprocessor.Process(filePath)
		if err == nil && result != nil && result.Success {
			return result, nil
		}
		lastError = err
	}

	return &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		ProcessorType: "failed",
		Success:       false,
		Error:         lastError,
	}, lastError
}

// GetAvailablePreprocessors returns all registered preprocessors
func (pm *PreprocessorManager) GetAvailablePreprocessors() []Preprocessor {
	return pm.preprocessors
}

// hasExtension reports whether the file's extension appears in the list.
func hasExtension(filePath string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supported := range extensions {
		if ext == supported {
			return true
		}
	}
	return false
}
