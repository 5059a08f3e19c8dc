package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"cardtrack/internal/core"
)

const statementColumns = `id, owner_id, filename, month, year, total_pesos_cents,
	total_dollars_cents, transaction_count, dolar_rate, statement_date,
	closing_date, due_date, created_at`

// CreateStatementWithTransactions is the atomic ingest write: it creates
// or reuses the owner's statement for the batch month/year, inserts every
// transaction against it and recomputes the aggregate totals. Any failure
// rolls the whole batch back, leaving no partial statement.
func (r *SQLiteRepository) CreateStatementWithTransactions(ctx context.Context, st *core.Statement, txns []core.Transaction) error {
	if len(txns) == 0 {
		return core.ErrEmptyBatch
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var existingID int64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM statements WHERE owner_id = ? AND month = ? AND year = ?",
			st.OwnerID, st.Month, st.Year,
		).Scan(&existingID)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.ExecContext(ctx,
				`INSERT INTO statements (owner_id, filename, month, year, dolar_rate,
				 statement_date, closing_date, due_date)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				st.OwnerID, st.Filename, st.Month, st.Year, st.DolarRate,
				dateParam(st.StatementDate), dateParam(st.ClosingDate), dateParam(st.DueDate))
			if err != nil {
				return fmt.Errorf("create statement: %w", err)
			}
			st.ID, err = res.LastInsertId()
			if err != nil {
				return fmt.Errorf("statement insert id: %w", err)
			}
		case err != nil:
			return fmt.Errorf("find statement: %w", err)
		default:
			st.ID = existingID
			if _, err := tx.ExecContext(ctx,
				`UPDATE statements SET filename = ?, dolar_rate = ?,
				 statement_date = COALESCE(?, statement_date),
				 closing_date = COALESCE(?, closing_date),
				 due_date = COALESCE(?, due_date)
				 WHERE id = ?`,
				st.Filename, st.DolarRate,
				dateParam(st.StatementDate), dateParam(st.ClosingDate), dateParam(st.DueDate),
				st.ID,
			); err != nil {
				return fmt.Errorf("update statement: %w", err)
			}
		}

		for i := range txns {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO transactions (owner_id, statement_id, category_id,
				 merchant, amount_cents, is_dollar, date, description)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				st.OwnerID, st.ID, txns[i].CategoryID, txns[i].Merchant,
				txns[i].Amount.Cents, txns[i].IsDollar, txns[i].Date.String(),
				txns[i].Description,
			); err != nil {
				return fmt.Errorf("insert transaction %d: %w", i, err)
			}
		}

		if err := recomputeStatementTotals(ctx, tx, st.ID); err != nil {
			return err
		}

		return tx.QueryRowContext(ctx,
			`SELECT total_pesos_cents, total_dollars_cents, transaction_count
			 FROM statements WHERE id = ?`, st.ID,
		).Scan(&st.TotalPesos.Cents, &st.TotalDollars.Cents, &st.TransactionCount)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Statement ingested",
		"owner_id", st.OwnerID,
		"statement_id", st.ID,
		"month", st.Month,
		"year", st.Year,
		"transactions", len(txns))
	return nil
}

// recomputeStatementTotals refreshes the derived sums from the persisted
// transactions so totals always reflect a consistent snapshot.
func recomputeStatementTotals(ctx context.Context, tx *sql.Tx, statementID int64) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE statements SET
		 total_pesos_cents = (SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE statement_id = ? AND is_dollar = 0),
		 total_dollars_cents = (SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE statement_id = ? AND is_dollar = 1),
		 transaction_count = (SELECT COUNT(*) FROM transactions WHERE statement_id = ?)
		 WHERE id = ?`,
		statementID, statementID, statementID, statementID,
	); err != nil {
		return fmt.Errorf("recompute statement totals: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListStatements(ctx context.Context, ownerID int64) ([]core.Statement, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+statementColumns+" FROM statements WHERE owner_id = ? ORDER BY year DESC, month DESC",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	var statements []core.Statement
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		statements = append(statements, st)
	}
	return statements, rows.Err()
}

func (r *SQLiteRepository) GetStatement(ctx context.Context, ownerID, id int64) (*core.Statement, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+statementColumns+" FROM statements WHERE id = ?", id)

	st, err := scanStatement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if st.OwnerID != ownerID {
		return nil, core.ErrForbidden
	}
	return &st, nil
}

// LatestStatement returns the owner's most recent statement by period,
// or ErrNotFound when the owner has none.
func (r *SQLiteRepository) LatestStatement(ctx context.Context, ownerID int64) (*core.Statement, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+statementColumns+" FROM statements WHERE owner_id = ? ORDER BY year DESC, month DESC LIMIT 1",
		ownerID)

	st, err := scanStatement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// DeleteStatement removes a statement and exactly its transactions.
func (r *SQLiteRepository) DeleteStatement(ctx context.Context, ownerID, id int64) error {
	if _, err := r.GetStatement(ctx, ownerID, id); err != nil {
		return err
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM transactions WHERE statement_id = ?", id,
		); err != nil {
			return fmt.Errorf("delete statement transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM statements WHERE id = ?", id,
		); err != nil {
			return fmt.Errorf("delete statement: %w", err)
		}

		slog.InfoContext(ctx, "Statement deleted", "owner_id", ownerID, "statement_id", id)
		return nil
	})
}

// LatestDates returns the most recent known closing and due dates across
// the owner's statements. Both dates are empty when none are recorded.
func (r *SQLiteRepository) LatestDates(ctx context.Context, ownerID int64) (core.LatestDates, error) {
	var latest core.LatestDates

	st, err := r.LatestStatement(ctx, ownerID)
	if errors.Is(err, core.ErrNotFound) {
		return latest, nil
	}
	if err != nil {
		return latest, err
	}

	latest.Month = st.Month
	latest.Year = st.Year
	latest.ClosingDate = st.ClosingDate
	latest.DueDate = st.DueDate

	// fall back to older statements when the latest lacks a date
	if latest.ClosingDate.IsEmpty() {
		latest.ClosingDate, err = r.latestRecordedDate(ctx, ownerID, "closing_date")
		if err != nil {
			return latest, err
		}
	}
	if latest.DueDate.IsEmpty() {
		latest.DueDate, err = r.latestRecordedDate(ctx, ownerID, "due_date")
		if err != nil {
			return latest, err
		}
	}
	return latest, nil
}

func (r *SQLiteRepository) latestRecordedDate(ctx context.Context, ownerID int64, column string) (core.Date, error) {
	var nt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		"SELECT "+column+" FROM statements WHERE owner_id = ? AND "+column+" IS NOT NULL ORDER BY year DESC, month DESC LIMIT 1",
		ownerID,
	).Scan(&nt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Date{}, nil
	}
	if err != nil {
		return core.Date{}, fmt.Errorf("latest %s: %w", column, err)
	}
	return scanDate(nt), nil
}

// AvailablePeriods returns the distinct statement periods for filter
// choices, most recent first.
func (r *SQLiteRepository) AvailablePeriods(ctx context.Context, ownerID int64) (core.AvailablePeriods, error) {
	periods := core.AvailablePeriods{Months: []core.MonthYear{}, Years: []int{}}

	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT month, year FROM statements WHERE owner_id = ? ORDER BY year DESC, month DESC",
		ownerID)
	if err != nil {
		return periods, fmt.Errorf("available periods: %w", err)
	}
	defer rows.Close()

	seenYears := make(map[int]bool)
	for rows.Next() {
		var my core.MonthYear
		if err := rows.Scan(&my.Month, &my.Year); err != nil {
			return periods, fmt.Errorf("scan period: %w", err)
		}
		periods.Months = append(periods.Months, my)
		if !seenYears[my.Year] {
			seenYears[my.Year] = true
			periods.Years = append(periods.Years, my.Year)
		}
	}
	return periods, rows.Err()
}

func scanStatement(row rowScanner) (core.Statement, error) {
	var st core.Statement
	var statementDate, closingDate, dueDate, createdAt sql.NullTime
	if err := row.Scan(
		&st.ID, &st.OwnerID, &st.Filename, &st.Month, &st.Year,
		&st.TotalPesos.Cents, &st.TotalDollars.Cents, &st.TransactionCount,
		&st.DolarRate, &statementDate, &closingDate, &dueDate, &createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return st, err
		}
		return st, fmt.Errorf("scan statement: %w", err)
	}
	st.StatementDate = scanDate(statementDate)
	st.ClosingDate = scanDate(closingDate)
	st.DueDate = scanDate(dueDate)
	st.CreatedAt = createdAt.Time
	return st, nil
}
