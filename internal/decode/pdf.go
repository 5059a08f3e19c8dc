package decode

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// decodePDF extracts text preserving reading order: pages top to bottom,
// rows top to bottom within a page. Multi-column layouts degrade to
// reading order, which the extractor's tolerant matching absorbs.
func decodePDF(data []byte) (*Content, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var lines []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			// A single unreadable page should not sink the whole upload.
			continue
		}
		for _, row := range rows {
			line := joinRowText(row)
			if line != "" {
				lines = append(lines, line)
			}
		}
	}

	return &Content{Lines: lines}, nil
}

// joinRowText concatenates the text fragments of one visual row, inserting
// a space whenever the horizontal gap between fragments indicates a word
// boundary the PDF content stream did not encode.
func joinRowText(row *pdf.Row) string {
	var sb strings.Builder
	var lastEnd float64
	for i, text := range row.Content {
		if i > 0 && text.X > lastEnd+1 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text.S)
		lastEnd = text.X + text.W
	}
	return strings.TrimSpace(sb.String())
}
