// Package services orchestrates the ingestion pipeline and the analytics
// engine on top of the storage and messaging layers.
package services

import (
	"context"

	"cardtrack/internal/core"
	"cardtrack/internal/storage"
)

// StatementStore is the statement persistence surface the services need.
// *storage.SQLiteRepository satisfies it; tests use fakes.
type StatementStore interface {
	CreateStatementWithTransactions(ctx context.Context, st *core.Statement, txns []core.Transaction) error
	ListStatements(ctx context.Context, ownerID int64) ([]core.Statement, error)
	GetStatement(ctx context.Context, ownerID, id int64) (*core.Statement, error)
	LatestStatement(ctx context.Context, ownerID int64) (*core.Statement, error)
	DeleteStatement(ctx context.Context, ownerID, id int64) error
	LatestDates(ctx context.Context, ownerID int64) (core.LatestDates, error)
	AvailablePeriods(ctx context.Context, ownerID int64) (core.AvailablePeriods, error)
}

// TransactionStore is the transaction persistence surface.
type TransactionStore interface {
	ListTransactions(ctx context.Context, ownerID int64, filter storage.TransactionFilter) ([]core.Transaction, error)
	ListTransactionsForPeriods(ctx context.Context, ownerID int64, periods []core.MonthYear, year int, isDollar *bool) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, ownerID, id int64) (*core.Transaction, error)
	UpdateTransactionCategory(ctx context.Context, ownerID, id int64, categoryID *int64) (*core.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID, id int64) error
}

// CategoryStore is the category persistence surface.
type CategoryStore interface {
	SeedDefaultCategories(ctx context.Context, ownerID int64) error
	ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error)
	GetCategory(ctx context.Context, ownerID, id int64) (*core.Category, error)
	CreateCategory(ctx context.Context, c *core.Category) error
	UpdateCategory(ctx context.Context, c *core.Category) error
	DeleteCategory(ctx context.Context, ownerID, id int64) error
}

// EventPublisher announces committed statement batches to the export
// worker. A nil publisher disables events without failing ingestion.
type EventPublisher interface {
	PublishStatementIngested(ctx context.Context, statementID, ownerID int64) error
}
