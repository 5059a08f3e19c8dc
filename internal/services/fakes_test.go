package services

import (
	"context"
	"errors"

	"cardtrack/internal/core"
	"cardtrack/internal/storage"
)

// fakeStore is an in-memory stand-in for the SQLite repository. It
// resolves category and statement references the way the joined list
// queries do.
type fakeStore struct {
	categories []core.Category
	statements []core.Statement
	txns       []core.Transaction
	nextID     int64

	createErr error
}

func newFakeStore() *fakeStore {
	s := &fakeStore{nextID: 1}
	for _, c := range core.DefaultCategories {
		c.ID = s.nextID
		s.nextID++
		s.categories = append(s.categories, c)
	}
	return s
}

func (s *fakeStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeStore) categoryByID(id int64) *core.Category {
	for i := range s.categories {
		if s.categories[i].ID == id {
			c := s.categories[i]
			return &c
		}
	}
	return nil
}

func (s *fakeStore) categoryID(name string) int64 {
	for _, c := range s.categories {
		if c.Name == name {
			return c.ID
		}
	}
	return 0
}

// --- StatementStore ---

func (s *fakeStore) CreateStatementWithTransactions(ctx context.Context, st *core.Statement, txns []core.Transaction) error {
	if s.createErr != nil {
		return s.createErr
	}
	if len(txns) == 0 {
		return core.ErrEmptyBatch
	}

	for i := range s.statements {
		existing := &s.statements[i]
		if existing.OwnerID == st.OwnerID && existing.Month == st.Month && existing.Year == st.Year {
			st.ID = existing.ID
			existing.DolarRate = st.DolarRate
			existing.Filename = st.Filename
			break
		}
	}
	if st.ID == 0 {
		st.ID = s.id()
		s.statements = append(s.statements, *st)
	}

	for _, t := range txns {
		t.ID = s.id()
		t.StatementID = st.ID
		t.Statement = s.statementByID(st.ID)
		if t.CategoryID != nil {
			t.Category = s.categoryByID(*t.CategoryID)
		}
		s.txns = append(s.txns, t)
	}

	st.TotalPesos, st.TotalDollars, st.TransactionCount = s.totals(st.ID)
	for i := range s.statements {
		if s.statements[i].ID == st.ID {
			s.statements[i] = *st
		}
	}
	return nil
}

func (s *fakeStore) totals(statementID int64) (core.Money, core.Money, int) {
	var pesos, dollars core.Money
	count := 0
	for _, t := range s.txns {
		if t.StatementID != statementID {
			continue
		}
		count++
		if t.IsDollar {
			dollars = dollars.Add(t.Amount)
		} else {
			pesos = pesos.Add(t.Amount)
		}
	}
	return pesos, dollars, count
}

func (s *fakeStore) statementByID(id int64) *core.Statement {
	for i := range s.statements {
		if s.statements[i].ID == id {
			st := s.statements[i]
			return &st
		}
	}
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
	st := s.statementByID(id)
	if st == nil {
		return nil, core.ErrNotFound
	}
	if st.OwnerID != ownerID {
		return nil, core.ErrForbidden
	}
	return st, nil
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
	var txns []core.Transaction
	for _, t := range s.txns {
		if t.StatementID != id {
			txns = append(txns, t)
		}
	}
	s.txns = txns
	var statements []core.Statement
	for _, st := range s.statements {
		if st.ID != id {
			statements = append(statements, st)
		}
	}
	s.statements = statements
	return nil
}

func (s *fakeStore) LatestDates(ctx context.Context, ownerID int64) (core.LatestDates, error) {
	st, err := s.LatestStatement(ctx, ownerID)
	if errors.Is(err, core.ErrNotFound) {
		return core.LatestDates{}, nil
	}
	if err != nil {
		return core.LatestDates{}, err
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
		if filter.IsDollar != nil && t.IsDollar != *filter.IsDollar {
			continue
		}
		if filter.StatementID != 0 && t.StatementID != filter.StatementID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeStore) ListTransactionsForPeriods(ctx context.Context, ownerID int64, periods []core.MonthYear, year int, isDollar *bool) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range s.txns {
		if t.OwnerID != ownerID || t.Statement == nil {
			continue
		}
		if isDollar != nil && t.IsDollar != *isDollar {
			continue
		}
		if len(periods) > 0 {
			matched := false
			for _, p := range periods {
				if t.Statement.Month == p.Month && t.Statement.Year == p.Year {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		} else if year != 0 && t.Statement.Year != year {
			continue
		}
		out = append(out, t)
	}
	return out, nil
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
			if categoryID != nil {
				s.txns[i].Category = s.categoryByID(*categoryID)
			} else {
				s.txns[i].Category = nil
			}
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
	return nil
}

func (s *fakeStore) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *fakeStore) GetCategory(ctx context.Context, ownerID, id int64) (*core.Category, error) {
	c := s.categoryByID(id)
	if c == nil {
		return nil, core.ErrNotFound
	}
	return c, nil
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
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

// fakePublisher records published statement ids.
type fakePublisher struct {
	published []int64
	err       error
}

func (p *fakePublisher) PublishStatementIngested(ctx context.Context, statementID, ownerID int64) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, statementID)
	return nil
}
