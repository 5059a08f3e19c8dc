// Package worker exports ingested statements to the configured sheet in
// response to AMQP events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardtrack/internal/amqp"
	"cardtrack/internal/core"
	applog "cardtrack/internal/log"
	"cardtrack/internal/sheets"
	"cardtrack/internal/storage"
)

// Consumer delivers statement ingested events. *amqp.Client satisfies it.
type Consumer interface {
	ConsumeStatementIngested(ctx context.Context, handler func(*amqp.StatementIngestedMessage) error) error
}

// StatementReader is the slice of the repository the worker reads
// statements through.
type StatementReader interface {
	GetStatement(ctx context.Context, ownerID, id int64) (*core.Statement, error)
}

// TransactionReader lists the transactions of a statement.
type TransactionReader interface {
	ListTransactions(ctx context.Context, ownerID int64, filter storage.TransactionFilter) ([]core.Transaction, error)
}

type Worker struct {
	consumer     Consumer
	statements   StatementReader
	transactions TransactionReader
	writer       sheets.StatementWriter
	timeout      time.Duration
	logger       *applog.Logger
}

func New(consumer Consumer, statements StatementReader, transactions TransactionReader, writer sheets.StatementWriter, timeout time.Duration, logger *applog.Logger) *Worker {
	return &Worker{
		consumer:     consumer,
		statements:   statements,
		transactions: transactions,
		writer:       writer,
		timeout:      timeout,
		logger:       logger,
	}
}

// Run consumes events until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	return w.consumer.ConsumeStatementIngested(ctx, func(msg *amqp.StatementIngestedMessage) error {
		return w.HandleStatementIngested(ctx, msg)
	})
}

// HandleStatementIngested exports one statement. A statement deleted
// before export is dropped, not requeued.
func (w *Worker) HandleStatementIngested(ctx context.Context, msg *amqp.StatementIngestedMessage) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	st, err := w.statements.GetStatement(ctx, msg.OwnerID, msg.StatementID)
	if errors.Is(err, core.ErrNotFound) {
		w.logger.WarnContext(ctx, "Statement gone before export, dropping event",
			"statement_id", msg.StatementID, "batch_id", msg.BatchID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load statement %d: %w", msg.StatementID, err)
	}

	txns, err := w.transactions.ListTransactions(ctx, msg.OwnerID, storage.TransactionFilter{StatementID: msg.StatementID})
	if err != nil {
		return fmt.Errorf("load transactions for statement %d: %w", msg.StatementID, err)
	}

	ref, err := w.writer.AppendStatement(ctx, st, txns)
	if err != nil {
		return fmt.Errorf("export statement %d: %w", msg.StatementID, err)
	}

	w.logger.InfoContext(ctx, "Statement exported",
		"statement_id", st.ID,
		"owner_id", st.OwnerID,
		"transactions", len(txns),
		"ref", ref)
	return nil
}
