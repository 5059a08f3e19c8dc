// Package decode turns uploaded statement files into raw text lines or
// tabular rows. It performs no business validation: the extractor decides
// what is and is not a transaction.
package decode

import (
	"fmt"
	"path/filepath"
	"strings"

	"cardtrack/internal/core"
)

// Format is a supported upload format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// Content is the decoder output: either free text lines (PDF, OCR) or
// tabular rows (CSV). Exactly one of Lines/Rows is populated.
type Content struct {
	Lines  []string
	Rows   [][]string
	Header []string // column names when the CSV had a header row, else nil
}

// Decoder decodes uploaded files. OCRLanguages configures text recognition
// for image uploads (defaults to Spanish plus English).
type Decoder struct {
	OCRLanguages []string
}

// New creates a Decoder with the given OCR languages.
func New(ocrLanguages ...string) *Decoder {
	if len(ocrLanguages) == 0 {
		ocrLanguages = []string{"spa", "eng"}
	}
	return &Decoder{OCRLanguages: ocrLanguages}
}

// DetectFormat resolves the upload format from the file name extension,
// falling back to the declared MIME type. Anything outside pdf/csv/png/jpeg
// fails with core.ErrUnsupportedFormat.
func DetectFormat(filename, mimeType string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return FormatPDF, nil
	case "csv":
		return FormatCSV, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	}

	switch strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0])) {
	case "application/pdf":
		return FormatPDF, nil
	case "text/csv", "application/csv":
		return FormatCSV, nil
	case "image/png":
		return FormatPNG, nil
	case "image/jpeg":
		return FormatJPEG, nil
	}

	return "", fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, filename)
}

// Decode extracts the content of an uploaded file.
func (d *Decoder) Decode(filename, mimeType string, data []byte) (*Content, error) {
	format, err := DetectFormat(filename, mimeType)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatPDF:
		return decodePDF(data)
	case FormatCSV:
		return decodeCSV(data)
	case FormatPNG, FormatJPEG:
		return d.decodeImage(data)
	}
	return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, filename)
}

// splitLines breaks extracted text into trimmed, non-empty lines.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
