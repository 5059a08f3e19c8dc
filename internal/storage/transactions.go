package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cardtrack/internal/core"
)

// TransactionFilter narrows transaction list queries. Zero values mean
// the dimension is not filtered.
type TransactionFilter struct {
	Limit       int
	Offset      int
	IsDollar    *bool
	CategoryID  *int64
	Search      string
	Month       int
	Year        int
	StatementID int64
}

const transactionSelect = `
	SELECT t.id, t.owner_id, t.statement_id, t.category_id, t.merchant,
	       t.amount_cents, t.is_dollar, t.date, t.description, t.created_at,
	       c.id, c.name, c.icon, c.color, c.is_default,
	       s.id, s.filename, s.month, s.year, s.dolar_rate
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id
	JOIN statements s ON s.id = t.statement_id`

// ListTransactions returns the owner's transactions matching the filter,
// newest first, with category and statement attached.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID int64, filter TransactionFilter) ([]core.Transaction, error) {
	where := []string{"t.owner_id = ?"}
	args := []any{ownerID}

	if filter.IsDollar != nil {
		where = append(where, "t.is_dollar = ?")
		args = append(args, *filter.IsDollar)
	}
	if filter.CategoryID != nil {
		where = append(where, "t.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.Search != "" {
		where = append(where, "t.merchant LIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Month != 0 {
		where = append(where, "s.month = ?")
		args = append(args, filter.Month)
	}
	if filter.Year != 0 {
		where = append(where, "s.year = ?")
		args = append(args, filter.Year)
	}
	if filter.StatementID != 0 {
		where = append(where, "t.statement_id = ?")
		args = append(args, filter.StatementID)
	}

	query := transactionSelect + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY t.date DESC, t.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	return r.queryTransactions(ctx, query, args...)
}

// ListTransactionsForPeriods returns transactions belonging to statements
// of the given periods (or the whole year when year is set), for the
// analytics engine. Category and statement are attached.
func (r *SQLiteRepository) ListTransactionsForPeriods(ctx context.Context, ownerID int64, periods []core.MonthYear, year int, isDollar *bool) ([]core.Transaction, error) {
	where := []string{"t.owner_id = ?"}
	args := []any{ownerID}

	switch {
	case len(periods) > 0:
		clauses := make([]string, len(periods))
		for i, p := range periods {
			clauses[i] = "(s.month = ? AND s.year = ?)"
			args = append(args, p.Month, p.Year)
		}
		where = append(where, "("+strings.Join(clauses, " OR ")+")")
	case year != 0:
		where = append(where, "s.year = ?")
		args = append(args, year)
	}

	if isDollar != nil {
		where = append(where, "t.is_dollar = ?")
		args = append(args, *isDollar)
	}

	query := transactionSelect + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY t.date, t.id"
	return r.queryTransactions(ctx, query, args...)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID, id int64) (*core.Transaction, error) {
	txns, err := r.queryTransactions(ctx, transactionSelect+" WHERE t.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, core.ErrNotFound
	}
	if txns[0].OwnerID != ownerID {
		return nil, core.ErrForbidden
	}
	return &txns[0], nil
}

// UpdateTransactionCategory reassigns one transaction to a category.
// A nil categoryID clears the assignment.
func (r *SQLiteRepository) UpdateTransactionCategory(ctx context.Context, ownerID, id int64, categoryID *int64) (*core.Transaction, error) {
	if _, err := r.GetTransaction(ctx, ownerID, id); err != nil {
		return nil, err
	}
	if categoryID != nil {
		if _, err := r.GetCategory(ctx, ownerID, *categoryID); err != nil {
			return nil, err
		}
	}

	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET category_id = ? WHERE id = ?", categoryID, id,
	); err != nil {
		return nil, fmt.Errorf("update transaction category: %w", err)
	}

	return r.GetTransaction(ctx, ownerID, id)
}

// DeleteTransaction removes one transaction and refreshes its statement
// totals in the same transaction.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	target, err := r.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return err
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM transactions WHERE id = ?", id,
		); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		if err := recomputeStatementTotals(ctx, tx, target.StatementID); err != nil {
			return err
		}

		slog.InfoContext(ctx, "Transaction deleted",
			"owner_id", ownerID, "transaction_id", id, "statement_id", target.StatementID)
		return nil
	})
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var date, createdAt sql.NullTime
	var description sql.NullString

	var catID sql.NullInt64
	var catName, catIcon, catColor sql.NullString
	var catDefault sql.NullBool

	var st core.Statement

	if err := row.Scan(
		&t.ID, &t.OwnerID, &t.StatementID, &t.CategoryID, &t.Merchant,
		&t.Amount.Cents, &t.IsDollar, &date, &description, &createdAt,
		&catID, &catName, &catIcon, &catColor, &catDefault,
		&st.ID, &st.Filename, &st.Month, &st.Year, &st.DolarRate,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan transaction: %w", err)
	}

	t.Date = scanDate(date)
	t.Description = description.String
	t.CreatedAt = createdAt.Time
	if catID.Valid {
		t.Category = &core.Category{
			ID:        catID.Int64,
			OwnerID:   t.OwnerID,
			Name:      catName.String,
			Icon:      catIcon.String,
			Color:     catColor.String,
			IsDefault: catDefault.Bool,
		}
	}
	st.OwnerID = t.OwnerID
	t.Statement = &st
	return t, nil
}
