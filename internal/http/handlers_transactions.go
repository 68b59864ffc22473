package http

import (
	"net/http"

	"spendfy/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, p core.Principal) {
	var in core.TransactionInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.svc.Transactions.Create(r.Context(), p, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTransactionResponse(tx))
}

// handleListTransactions accepts accountId, categoryId, type, from and to
// query parameters.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, p core.Principal) {
	filter, err := ParseTransactionFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	txs, err := s.svc.Transactions.List(r.Context(), p, filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(txs, newTransactionResponse))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, p core.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.svc.Transactions.Get(r.Context(), p, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, p core.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in core.TransactionInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.svc.Transactions.Update(r.Context(), p, id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, p core.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Transactions.Delete(r.Context(), p, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
