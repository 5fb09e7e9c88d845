// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"natid-scan/internal/observability"
)

// maxPDFPages caps how many pages are extracted from a single document.
const maxPDFPages = 50

// PDFPreprocessor extracts text from PDF documents, including AcroForm
// field values, which is where identity numbers typically live in
// government and HR paperwork.
type PDFPreprocessor struct {
	observer  *observability.StandardObserver
	pdfConfig *model.Configuration
}

// NewPDFPreprocessor creates a new PDF preprocessor
func NewPDFPreprocessor() *PDFPreprocessor {
	config := model.NewDefaultConfiguration()
	config.ValidationMode = model.ValidationRelaxed
	return &PDFPreprocessor{pdfConfig: config}
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "PDF Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, pp.GetSupportedExtensions())
}

// Process extracts text content from the PDF
func (pp *PDFPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("pdf_preprocessor", "process_file", filePath)
		if pp.observer.DebugObserver != nil {
			finishStep = pp.observer.DebugObserver.StartStep("pdf_preprocessor", "process_file", filePath)
		}
	}

	fail := func(err error) (*ProcessedContent, error) {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		if finishStep != nil {
			finishStep(false, err.Error())
		}
		return &ProcessedContent{
			OriginalPath:  filePath,
			Filename:      filepath.Base(filePath),
			ProcessorType: "pdf",
			Success:       false,
			Error:         err,
		}, err
	}

	// Structural validation first, so a corrupt document fails with a
	// clear error instead of a panic deep in text extraction.
	if err := api.ValidateFile(filePath, pp.pdfConfig); err != nil {
		return fail(fmt.Errorf("PDF validation failed: %w", err))
	}

	text, pageCount, err := pp.extractText(filePath)
	if err != nil {
		return fail(fmt.Errorf("PDF text extraction failed: %w", err))
	}

	result := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          text,
		Format:        "PDF",
		PageCount:     pageCount,
		WordCount:     len(strings.Fields(text)),
		CharCount:     len(text),
		LineCount:     strings.Count(text, "\n") + 1,
		ProcessorType: "pdf",
		Success:       true,
		Metadata:      make(map[string]interface{}),
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"page_count": pageCount,
			"char_count": result.CharCount,
		})
	}
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("Extracted %d pages", pageCount))
	}
	return result, nil
}

// extractText pulls page text and form field values from the document.
func (pp *PDFPreprocessor) extractText(filePath string) (string, int, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	extractPages := pageCount
	if extractPages > maxPDFPages {
		extractPages = maxPDFPages
	}

	var buf bytes.Buffer
	for i := 1; i <= extractPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := extractPageText(p)
		if err != nil {
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(pageText)
	}

	// Form fields carry labeled values, exactly the shape the validators
	// score highest.
	if formData := extractFormData(r); formData != "" {
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(formData)
	}

	return cleanExtractedText(buf.String()), pageCount, nil
}

// extractPageText uses row-based extraction for reading order, falling
// back to plain extraction when row data is unavailable.
func extractPageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sortedRows := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sortedRows = append(sortedRows, row)
		}
	}
	sort.Slice(sortedRows, func(i, j int) bool {
		return averageY(sortedRows[i].Content) < averageY(sortedRows[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sortedRows {
		rowText := joinRowText(row.Content)
		if strings.TrimSpace(rowText) != "" {
			buf.WriteString(rowText)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

func averageY(elements []pdf.Text) float64 {
	if len(elements) == 0 {
		return 0
	}
	var total float64
	for _, element := range elements {
		total += element.Y
	}
	return total / float64(len(elements))
}

// joinRowText rebuilds one visual row left to right, inserting a space
// wherever the horizontal gap between glyph runs is wide enough to have
// been one.
func joinRowText(elements []pdf.Text) string {
	sorted := make([]pdf.Text, len(elements))
	copy(sorted, elements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var buf bytes.Buffer
	for i, element := range sorted {
		buf.WriteString(element.S)
		if i == len(sorted)-1 {
			continue
		}
		gap := sorted[i+1].X - (element.X + element.W)
		fontSize := element.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if gap > fontSize*0.2 {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}

// extractFormData walks the AcroForm field array and renders each field
// as a "name: value" line.
func extractFormData(r *pdf.Reader) string {
	root := r.Trailer().Key("Root")
	if root.IsNull() {
		return ""
	}
	acroForm := root.Key("AcroForm")
	if acroForm.IsNull() {
		return ""
	}
	fields := acroForm.Key("Fields")
	if fields.IsNull() || fields.Kind() != pdf.Array {
		return ""
	}

	var buf bytes.Buffer
	for i := 0; i < fields.Len(); i++ {
		field := fields.Index(i)
		if field.IsNull() || field.Kind() != pdf.Dict {
			continue
		}
		name, value := formFieldNameValue(field)
		if name != "" && value != "" {
			buf.WriteString(fmt.Sprintf("%s: %s\n", name, value))
		}
	}
	return buf.String()
}

func formFieldNameValue(field pdf.Value) (string, string) {
	var name, value string

	if t := field.Key("T"); !t.IsNull() && t.Kind() == pdf.String {
		name = t.Text()
	}
	if v := field.Key("V"); !v.IsNull() {
		switch v.Kind() {
		case pdf.String:
			value = v.Text()
		case pdf.Name:
			value = v.Name()
		}
	}
	if value == "" {
		if dv := field.Key("DV"); !dv.IsNull() && dv.Kind() == pdf.String {
			value = dv.Text()
		}
	}
	return name, value
}

// cleanExtractedText trims each line and collapses runs of spaces while
// preserving line structure, so labels and values stay on the same line.
func cleanExtractedText(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.ReplaceAll(line, "\t", " ")
		for strings.Contains(line, "  ") {
			line = strings.ReplaceAll(line, "  ", " ")
		}
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
