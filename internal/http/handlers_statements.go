package http

import (
	"net/http"

	"cardtrack/internal/core"
	"cardtrack/internal/storage"
)

func (s *Server) handleListStatements(w http.ResponseWriter, r *http.Request, ownerID int64) {
	sts, err := s.svcs.Statements.ListStatements(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sts == nil {
		sts = []core.Statement{}
	}
	writeJSON(w, http.StatusOK, sts)
}

// handleGetStatement returns one statement together with its
// transactions.
func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.svcs.Statements.GetStatement(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	txns, err := s.svcs.Transactions.ListTransactions(r.Context(), ownerID, storage.TransactionFilter{StatementID: id})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txns == nil {
		txns = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, statementDetail{Statement: st, Transactions: txns})
}

type statementDetail struct {
	*core.Statement
	Transactions []core.Transaction `json:"transactions"`
}

// handleDeleteStatement removes a statement together with all its
// transactions.
func (s *Server) handleDeleteStatement(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svcs.Statements.DeleteStatement(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLatestDates(w http.ResponseWriter, r *http.Request, ownerID int64) {
	dates, err := s.svcs.Statements.LatestDates(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dates)
}

func (s *Server) handleAvailablePeriods(w http.ResponseWriter, r *http.Request, ownerID int64) {
	periods, err := s.svcs.Statements.AvailablePeriods(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, periods)
}
