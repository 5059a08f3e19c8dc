package http

import (
	"encoding/json"
	"net/http"

	"cardtrack/internal/core"
	"cardtrack/internal/storage"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, ownerID int64) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	txns, err := s.svcs.Transactions.ListTransactions(r.Context(), ownerID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txns == nil {
		txns = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

// handleTransactionsByStatement lists the transactions of one statement.
// Ownership of the statement is checked first so a foreign id yields 403
// instead of an empty list.
func (s *Server) handleTransactionsByStatement(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.svcs.Statements.GetStatement(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}

	filter := storage.TransactionFilter{StatementID: id}
	if filter.IsDollar, err = queryBoolPtr(r, "is_dollar"); err != nil {
		writeError(w, r, err)
		return
	}

	txns, err := s.svcs.Transactions.ListTransactions(r.Context(), ownerID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txns == nil {
		txns = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) handleUpdateTransactionCategory(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		CategoryID *int64 `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, &core.ValidationError{Field: "category_id", Message: "invalid request body"})
		return
	}

	txn, err := s.svcs.Transactions.UpdateTransactionCategory(r.Context(), ownerID, id, body.CategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svcs.Transactions.DeleteTransaction(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	var filter storage.TransactionFilter
	var err error

	if filter.Limit, err = queryInt(r, "limit", defaultPageSize); err != nil {
		return filter, err
	}
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		return filter, &core.ValidationError{Field: "limit", Message: "limit must be between 1 and 500"}
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		return filter, err
	}
	if filter.Offset < 0 {
		return filter, &core.ValidationError{Field: "offset", Message: "offset must be non-negative"}
	}
	if filter.IsDollar, err = queryBoolPtr(r, "is_dollar"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = queryInt64Ptr(r, "category_id"); err != nil {
		return filter, err
	}
	if filter.Month, err = queryInt(r, "month", 0); err != nil {
		return filter, err
	}
	if filter.Month != 0 && (filter.Month < 1 || filter.Month > 12) {
		return filter, &core.ValidationError{Field: "month", Message: "month must be between 1 and 12"}
	}
	if filter.Year, err = queryInt(r, "year", 0); err != nil {
		return filter, err
	}
	filter.Search = sanitizeInput(r.URL.Query().Get("search"))

	return filter, nil
}
