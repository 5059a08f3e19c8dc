package services

import (
	"context"
	"fmt"
	"log/slog"

	"cardtrack/internal/categorize"
	"cardtrack/internal/core"
	"cardtrack/internal/decode"
	"cardtrack/internal/extract"
)

// IngestService runs the upload pipeline: decode, extract, categorize,
// persist in one transaction, then announce the batch.
type IngestService struct {
	decoder    *decode.Decoder
	extractor  *extract.Extractor
	statements StatementStore
	categories CategoryStore
	events     EventPublisher
}

func NewIngestService(decoder *decode.Decoder, extractor *extract.Extractor, statements StatementStore, categories CategoryStore, events EventPublisher) *IngestService {
	return &IngestService{
		decoder:    decoder,
		extractor:  extractor,
		statements: statements,
		categories: categories,
		events:     events,
	}
}

// IngestResult summarizes one processed upload.
type IngestResult struct {
	Statement            *core.Statement `json:"statement"`
	Filename             string          `json:"filename"`
	TransactionsImported int             `json:"transactions_imported"`
	TotalAmount          float64         `json:"total_amount"`
}

// Ingest processes one uploaded statement file for an owner. Nothing is
// persisted until extraction has produced at least one transaction; a
// batch with zero transactions fails with core.ErrEmptyBatch.
func (s *IngestService) Ingest(ctx context.Context, ownerID int64, filename, mimeType string, data []byte, dolarRate float64) (*IngestResult, error) {
	if dolarRate <= 0 {
		return nil, &core.ValidationError{Field: "dolar_rate", Message: "dolar_rate must be greater than zero"}
	}

	content, err := s.decoder.Decode(filename, mimeType, data)
	if err != nil {
		return nil, err
	}

	extraction := s.extractor.FromContent(content)
	if len(extraction.Transactions) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, core.ErrEmptyBatch)
	}

	if err := s.categories.SeedDefaultCategories(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	cats, err := s.categories.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	matcher := categorize.NewMatcher(cats)

	var total core.Money
	txns := extraction.Transactions
	for i := range txns {
		txns[i].OwnerID = ownerID
		if id := matcher.Match(txns[i].Merchant); id != 0 {
			txns[i].CategoryID = &id
		}
		total = total.Add(txns[i].Amount)
	}

	month, year := batchPeriod(extraction.Meta, txns)
	statement := &core.Statement{
		OwnerID:       ownerID,
		Filename:      filename,
		Month:         month,
		Year:          year,
		DolarRate:     dolarRate,
		StatementDate: extraction.Meta.StatementDate,
		ClosingDate:   extraction.Meta.ClosingDate,
		DueDate:       extraction.Meta.DueDate,
	}
	if err := statement.Validate(); err != nil {
		return nil, err
	}

	if err := s.statements.CreateStatementWithTransactions(ctx, statement, txns); err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishStatementIngested(ctx, statement.ID, ownerID); err != nil {
			// the statement is already committed, the export can catch up later
			slog.ErrorContext(ctx, "Failed to publish statement ingested event",
				"statement_id", statement.ID, "error", err)
		}
	}

	return &IngestResult{
		Statement:            statement,
		Filename:             filename,
		TransactionsImported: len(txns),
		TotalAmount:          total.Float64(),
	}, nil
}

// batchPeriod picks the statement month/year for a batch: explicit header
// metadata wins, otherwise the most common transaction month, most recent
// on a tie.
func batchPeriod(meta extract.Metadata, txns []core.Transaction) (int, int) {
	if meta.Month != 0 && meta.Year != 0 {
		return meta.Month, meta.Year
	}

	counts := make(map[core.MonthYear]int)
	for _, t := range txns {
		counts[core.MonthYear{Month: t.Date.Month(), Year: t.Date.Year()}]++
	}

	var best core.MonthYear
	bestCount := 0
	for my, n := range counts {
		if n > bestCount || (n == bestCount && laterPeriod(my, best)) {
			best = my
			bestCount = n
		}
	}
	return best.Month, best.Year
}

func laterPeriod(a, b core.MonthYear) bool {
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	return a.Month > b.Month
}
