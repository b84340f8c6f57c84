package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"budgetik/internal/core"
)

type createJarRequest struct {
	OwnerID string `json:"ownerId"`
	core.JarDraft
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleListJars(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	if owner == "" {
		writeError(w, r, badRequest("owner is required"))
		return
	}
	summary, err := s.savings.List(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCreateJar(w http.ResponseWriter, r *http.Request) {
	var req createJarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Name = sanitizeInput(req.Name)
	req.Description = sanitizeInput(req.Description)
	jar, err := s.savings.Create(r.Context(), sanitizeInput(req.OwnerID), req.JarDraft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jar)
}

func (s *Server) handleUpdateJar(w http.ResponseWriter, r *http.Request) {
	var patch core.JarPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	jar, err := s.savings.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jar)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	jar, err := s.savings.Deposit(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jar)
}

func (s *Server) handleDeleteJar(w http.ResponseWriter, r *http.Request) {
	if err := s.savings.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
