package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"cardtrack/internal/amqp"
	"cardtrack/internal/core"
	applog "cardtrack/internal/log"
	"cardtrack/internal/sheets/memory"
	"cardtrack/internal/storage"
)

type fakeReader struct {
	statement *core.Statement
	txns      []core.Transaction
	err       error
}

func (f *fakeReader) GetStatement(ctx context.Context, ownerID, id int64) (*core.Statement, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.statement == nil || f.statement.ID != id || f.statement.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	st := *f.statement
	return &st, nil
}

func (f *fakeReader) ListTransactions(ctx context.Context, ownerID int64, filter storage.TransactionFilter) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.txns {
		if t.OwnerID == ownerID && t.StatementID == filter.StatementID {
			out = append(out, t)
		}
	}
	return out, nil
}

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func TestHandleStatementIngested(t *testing.T) {
	reader := &fakeReader{
		statement: &core.Statement{ID: 7, OwnerID: 1, Filename: "resumen.pdf", Month: 3, Year: 2024},
		txns: []core.Transaction{
			{ID: 10, OwnerID: 1, StatementID: 7, Merchant: "COTO", Amount: core.Money{Cents: 150000}, Date: core.NewDate(2024, 3, 1)},
			{ID: 11, OwnerID: 1, StatementID: 7, Merchant: "NETFLIX", Amount: core.Money{Cents: 1099}, IsDollar: true, Date: core.NewDate(2024, 3, 5)},
		},
	}
	writer := memory.New()
	w := New(nil, reader, reader, writer, 5*time.Second, testLogger())

	msg := amqp.NewStatementIngestedMessage(7, 1)
	if err := w.HandleStatementIngested(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exports := writer.Exports()
	if len(exports) != 1 {
		t.Fatalf("exported %d statements, want 1", len(exports))
	}
	if exports[0].Statement.ID != 7 || len(exports[0].Transactions) != 2 {
		t.Fatalf("export = %+v", exports[0])
	}
}

func TestHandleStatementIngestedDropsMissingStatement(t *testing.T) {
	writer := memory.New()
	reader := &fakeReader{}
	w := New(nil, reader, reader, writer, 5*time.Second, testLogger())

	// deleted before export: the event must be acked, not requeued
	msg := amqp.NewStatementIngestedMessage(99, 1)
	if err := w.HandleStatementIngested(context.Background(), msg); err != nil {
		t.Fatalf("missing statement must not error: %v", err)
	}
	if len(writer.Exports()) != 0 {
		t.Fatal("nothing may be exported")
	}
}

func TestHandleStatementIngestedPropagatesStoreError(t *testing.T) {
	reader := &fakeReader{err: errors.New("db down")}
	w := New(nil, reader, reader, memory.New(), 5*time.Second, testLogger())

	msg := amqp.NewStatementIngestedMessage(7, 1)
	if err := w.HandleStatementIngested(context.Background(), msg); err == nil {
		t.Fatal("expected error for failed statement load")
	}
}
