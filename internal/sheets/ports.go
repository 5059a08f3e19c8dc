// Package sheets defines the outbound export ports. Adapters live in
// subpackages; the worker only sees these interfaces.
package sheets

import (
	"context"

	"cardtrack/internal/core"
)

// StatementWriter appends an ingested statement and its transactions to
// the export destination, returning a reference to the written range.
type StatementWriter interface {
	AppendStatement(ctx context.Context, st *core.Statement, txns []core.Transaction) (rowRef string, err error)
}
