// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"natid-scan/internal/observability"
)

// ImagePreprocessor extracts EXIF metadata from photos. Scanned ID cards
// and camera uploads routinely carry identity numbers in description,
// comment, and copyright tags.
type ImagePreprocessor struct {
	observer *observability.StandardObserver
}

// NewImagePreprocessor creates a new image preprocessor
func NewImagePreprocessor() *ImagePreprocessor {
	return &ImagePreprocessor{}
}

// SetObserver sets the observability component
func (ip *ImagePreprocessor) SetObserver(observer *observability.StandardObserver) {
	ip.observer = observer
}

// GetName returns the name of this preprocessor
func (ip *ImagePreprocessor) GetName() string {
	return "Image Metadata Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ip *ImagePreprocessor) GetSupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".tif", ".tiff"}
}

// CanProcess checks if this preprocessor can handle the given file
func (ip *ImagePreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, ip.GetSupportedExtensions())
}

// tagWalker collects every EXIF tag as a printable string.
type tagWalker struct {
	tags map[string]string
}

func (w *tagWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag != nil {
		w.tags[string(name)] = tag.String()
	}
	return nil
}

// Process extracts EXIF metadata as "tag: value" lines
func (ip *ImagePreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	if ip.observer != nil {
		finishTiming = ip.observer.StartTiming("image_preprocessor", "process_file", filePath)
	}

	tags, err := ip.extractTags(filePath)
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		return &ProcessedContent{
			OriginalPath:  filePath,
			Filename:      filepath.Base(filePath),
			ProcessorType: "image",
			Success:       false,
			Error:         err,
		}, err
	}

	text := renderTags(tags)
	result := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          text,
		Format:        "Image Metadata",
		WordCount:     len(strings.Fields(text)),
		CharCount:     len(text),
		LineCount:     strings.Count(text, "\n") + 1,
		ProcessorType: "image",
		Success:       true,
		Metadata: map[string]interface{}{
			"tag_count": len(tags),
		},
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{"tag_count": len(tags)})
	}
	return result, nil
}

// extractTags decodes the EXIF block and walks every tag.
func (ip *ImagePreprocessor) extractTags(filePath string) (map[string]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("no EXIF data found: %w", err)
	}

	walker := &tagWalker{tags: make(map[string]string)}
	if err := x.Walk(walker); err != nil {
		return nil, fmt.Errorf("error walking EXIF tags: %w", err)
	}
	return walker.tags, nil
}

// renderTags renders tags as sorted "name: value" lines so output is
// deterministic and label keywords land next to their values.
func renderTags(tags map[string]string) string {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		value := strings.Trim(tags[name], `"`)
		if strings.TrimSpace(value) == "" {
			continue
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
