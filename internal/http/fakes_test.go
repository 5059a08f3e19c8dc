package http

import (
	"context"

	"cardtrack/internal/core"
	"cardtrack/internal/storage"
)

// fakeStore is a minimal in-memory implementation of the store
// interfaces, just enough to drive the handlers.
type fakeStore struct {
	categories []core.Category
	statements []core.Statement
	txns       []core.Transaction
	nextID     int64
}

func newTestStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (s *fakeStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// --- StatementStore ---

func (s *fakeStore) CreateStatementWithTransactions(ctx context.Context, st *core.Statement, txns []core.Transaction) error {
	if len(txns) == 0 {
		return core.ErrEmptyBatch
	}
	st.ID = s.id()
	for _, t := range txns {
		t.ID = s.id()
		t.StatementID = st.ID
		if t.IsDollar {
			st.TotalDollars = st.TotalDollars.Add(t.Amount)
		} else {
			st.TotalPesos = st.TotalPesos.Add(t.Amount)
		}
		s.txns = append(s.txns, t)
	}
	st.TransactionCount = len(txns)
	s.statements = append(s.statements, *st)
	return nil
}

func (s *fakeStore) ListStatements(ctx context.Context, ownerID int64) ([]core.Statement, error) {
	var out []core.Statement
	for _, st := range s.statements {
		if st.OwnerID == ownerID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *fakeStore) GetStatement(ctx context.Context, ownerID, id int64) (*core.Statement, error) {
	for i := range s.statements {
		if s.statements[i].ID == id {
			if s.statements[i].OwnerID != ownerID {
				return nil, core.ErrForbidden
			}
			st := s.statements[i]
			return &st, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *fakeStore) LatestStatement(ctx context.Context, ownerID int64) (*core.Statement, error) {
	var best *core.Statement
	for i := range s.statements {
		st := &s.statements[i]
		if st.OwnerID != ownerID {
			continue
		}
		if best == nil || st.Year > best.Year || (st.Year == best.Year && st.Month > best.Month) {
			best = st
		}
	}
	if best == nil {
		return nil, core.ErrNotFound
	}
	st := *best
	return &st, nil
}

func (s *fakeStore) DeleteStatement(ctx context.Context, ownerID, id int64) error {
	if _, err := s.GetStatement(ctx, ownerID, id); err != nil {
		return err
	}
	var kept []core.Statement
	for _, st := range s.statements {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	s.statements = kept
	var txns []core.Transaction
	for _, t := range s.txns {
		if t.StatementID != id {
			txns = append(txns, t)
		}
	}
	s.txns = txns
	return nil
}

func (s *fakeStore) LatestDates(ctx context.Context, ownerID int64) (core.LatestDates, error) {
	st, err := s.LatestStatement(ctx, ownerID)
	if err != nil {
		return core.LatestDates{}, nil
	}
	return core.LatestDates{
		ClosingDate: st.ClosingDate,
		DueDate:     st.DueDate,
		Month:       st.Month,
		Year:        st.Year,
	}, nil
}

func (s *fakeStore) AvailablePeriods(ctx context.Context, ownerID int64) (core.AvailablePeriods, error) {
	periods := core.AvailablePeriods{Months: []core.MonthYear{}, Years: []int{}}
	seen := make(map[int]bool)
	for _, st := range s.statements {
		if st.OwnerID != ownerID {
			continue
		}
		periods.Months = append(periods.Months, core.MonthYear{Month: st.Month, Year: st.Year})
		if !seen[st.Year] {
			seen[st.Year] = true
			periods.Years = append(periods.Years, st.Year)
		}
	}
	return periods, nil
}

// --- TransactionStore ---

func (s *fakeStore) ListTransactions(ctx context.Context, ownerID int64, filter storage.TransactionFilter) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range s.txns {
		if t.OwnerID != ownerID {
			continue
		}
		if filter.StatementID != 0 && t.StatementID != filter.StatementID {
			continue
		}
		if filter.IsDollar != nil && t.IsDollar != *filter.IsDollar {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeStore) ListTransactionsForPeriods(ctx context.Context, ownerID int64, periods []core.MonthYear, year int, isDollar *bool) ([]core.Transaction, error) {
	return s.ListTransactions(ctx, ownerID, storage.TransactionFilter{IsDollar: isDollar})
}

func (s *fakeStore) GetTransaction(ctx context.Context, ownerID, id int64) (*core.Transaction, error) {
	for i := range s.txns {
		if s.txns[i].ID == id {
			if s.txns[i].OwnerID != ownerID {
				return nil, core.ErrForbidden
			}
			t := s.txns[i]
			return &t, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *fakeStore) UpdateTransactionCategory(ctx context.Context, ownerID, id int64, categoryID *int64) (*core.Transaction, error) {
	for i := range s.txns {
		if s.txns[i].ID == id {
			if s.txns[i].OwnerID != ownerID {
				return nil, core.ErrForbidden
			}
			s.txns[i].CategoryID = categoryID
			t := s.txns[i]
			return &t, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *fakeStore) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	for i := range s.txns {
		if s.txns[i].ID == id {
			if s.txns[i].OwnerID != ownerID {
				return core.ErrForbidden
			}
			s.txns = append(s.txns[:i], s.txns[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

// --- CategoryStore ---

func (s *fakeStore) SeedDefaultCategories(ctx context.Context, ownerID int64) error {
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			return nil
		}
	}
	for _, c := range core.DefaultCategories {
		c.ID = s.id()
		c.OwnerID = ownerID
		s.categories = append(s.categories, c)
	}
	return nil
}

func (s *fakeStore) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	var out []core.Category
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) GetCategory(ctx context.Context, ownerID, id int64) (*core.Category, error) {
	for i := range s.categories {
		if s.categories[i].ID == id {
			if s.categories[i].OwnerID != ownerID {
				return nil, core.ErrForbidden
			}
			c := s.categories[i]
			return &c, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *fakeStore) CreateCategory(ctx context.Context, c *core.Category) error {
	c.ID = s.id()
	s.categories = append(s.categories, *c)
	return nil
}

func (s *fakeStore) UpdateCategory(ctx context.Context, c *core.Category) error {
	for i := range s.categories {
		if s.categories[i].ID == c.ID {
			s.categories[i] = *c
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *fakeStore) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	for i := range s.categories {
		if s.categories[i].ID == id {
			if s.categories[i].OwnerID != ownerID {
				return core.ErrForbidden
			}
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}
