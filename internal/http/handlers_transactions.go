package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"budgetik/internal/core"
	"budgetik/internal/ledger"
)

type daysResponse struct {
	Account core.Account      `json:"account"`
	Period  ledger.Period     `json:"period"`
	Days    []ledger.DayGroup `json:"days"`
}

type deleteMatchingResponse struct {
	Removed core.Transaction `json:"removed"`
	Matches int              `json:"matches"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	account, err := accountParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	period := periodParam(r)
	days, err := s.ledger.Days(r.Context(), account, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, daysResponse{Account: account, Period: period, Days: days})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeJSON(w, r, &tx); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.ledger.Add(r.Context(), sanitizeTransaction(tx))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeJSON(w, r, &tx); err != nil {
		writeError(w, r, err)
		return
	}
	tx.ID = chi.URLParam(r, "id")
	tx = sanitizeTransaction(tx)
	if err := s.ledger.Update(r.Context(), tx); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	account, err := concreteAccountParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.Delete(r.Context(), account, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteMatching removes a record stored without an id by its fields.
func (s *Server) handleDeleteMatching(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeJSON(w, r, &tx); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.ledger.DeleteLegacy(r.Context(), sanitizeTransaction(tx))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteMatchingResponse{Removed: res.Removed, Matches: res.Matches})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	account, err := accountParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.ledger.Report(r.Context(), account, periodParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.ledger.Balances(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	kind := core.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = core.KindOutcome
	}
	suggestions, err := s.ledger.Suggestions(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "categories": suggestions})
}
