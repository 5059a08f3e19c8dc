// Package memory is an in-memory StatementWriter used in tests and when
// no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"cardtrack/internal/core"
	ports "cardtrack/internal/sheets"
)

type Export struct {
	Statement    core.Statement
	Transactions []core.Transaction
}

type Writer struct {
	mu      sync.Mutex
	exports []Export
}

var _ ports.StatementWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

func (w *Writer) AppendStatement(ctx context.Context, st *core.Statement, txns []core.Transaction) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.exports = append(w.exports, Export{Statement: *st, Transactions: txns})
	return fmt.Sprintf("memory:%d", len(w.exports)), nil
}

// Exports returns a copy of everything written so far.
func (w *Writer) Exports() []Export {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Export, len(w.exports))
	copy(out, w.exports)
	return out
}
