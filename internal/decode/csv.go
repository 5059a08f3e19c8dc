package decode

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode"
)

// decodeCSV reads tabular rows, auto-detecting the delimiter (comma or
// semicolon) and whether the first row is a header.
func decodeCSV(data []byte) (*Content, error) {
	delimiter := detectDelimiter(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	for i := range records {
		for j := range records[i] {
			records[i][j] = strings.TrimSpace(records[i][j])
		}
	}

	content := &Content{}
	if len(records) > 0 && looksLikeHeader(records[0]) {
		content.Header = records[0]
		records = records[1:]
	}
	content.Rows = records
	return content, nil
}

// detectDelimiter picks semicolon when the first line carries more
// semicolons than commas; decimal commas inside amounts would otherwise
// win a plain count.
func detectDelimiter(data []byte) rune {
	firstLine := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		firstLine = data[:idx]
	}
	if bytes.Count(firstLine, []byte{';'}) > bytes.Count(firstLine, []byte{','}) {
		return ';'
	}
	return ','
}

// looksLikeHeader reports whether a row reads as column names: no cell
// contains a digit, so dates and amounts rule it out.
func looksLikeHeader(row []string) bool {
	nonEmpty := 0
	for _, cell := range row {
		if cell == "" {
			continue
		}
		nonEmpty++
		for _, r := range cell {
			if unicode.IsDigit(r) {
				return false
			}
		}
	}
	return nonEmpty > 0
}
