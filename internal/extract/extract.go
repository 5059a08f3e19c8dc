// Package extract parses decoded statement content into candidate
// transactions. Lines that do not carry both a parseable date and amount
// are skipped silently: statement text is full of headers, footers and
// subtotals that are not transactions.
package extract

import (
	"strings"
	"time"

	"cardtrack/internal/core"
	"cardtrack/internal/decode"
)

// Metadata is statement-level information read from the document header.
// All fields are optional; zero values mean the document did not carry them.
type Metadata struct {
	BalancePesos    core.Money
	BalanceDollars  core.Money
	PendingPesos    core.Money
	PendingDollars  core.Money
	StatementDate   core.Date
	ClosingDate     core.Date
	DueDate         core.Date
	Month           int
	Year            int
}

// Extraction is the parser output for one uploaded file.
type Extraction struct {
	Transactions []core.Transaction
	Meta         Metadata
}

// Extractor turns decoded content into transactions. ReferenceYear
// resolves dates written without a year (common in CSV exports).
type Extractor struct {
	ReferenceYear int
}

// New creates an Extractor anchored to the current year.
func New() *Extractor {
	return &Extractor{ReferenceYear: time.Now().Year()}
}

// FromContent parses every line or row of the decoded file. Duplicate
// looking entries (same date, merchant and amount) are kept: card
// statements legitimately contain repeated charges.
func (e *Extractor) FromContent(content *decode.Content) *Extraction {
	result := &Extraction{}

	if len(content.Rows) > 0 {
		layout := resolveColumns(content.Header)
		for _, row := range content.Rows {
			if tx, ok := e.FromRow(row, layout); ok {
				result.Transactions = append(result.Transactions, tx)
			}
		}
		return result
	}

	result.Meta = extractMetadata(content.Lines)
	for _, line := range content.Lines {
		if tx, ok := e.FromLine(line); ok {
			result.Transactions = append(result.Transactions, tx)
		}
	}
	return result
}

// collapseSpaces trims and squeezes runs of whitespace to single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
