package http

import (
	"net/http"

	"financas/internal/core"
)

type transactionTypeRequest struct {
	Name        string `json:"name"`
	Nature      string `json:"nature"`
	Description string `json:"description"`
}

func (s *Server) handleCreateTransactionType(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req transactionTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t := core.TransactionType{
		UserID:      userID,
		Name:        req.Name,
		Nature:      core.Nature(req.Nature),
		Description: req.Description,
	}
	if err := t.Validate(); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.storage.CreateTransactionType(r.Context(), t)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionTypeView(created))
}

func (s *Server) handleListTransactionTypes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	types, err := s.storage.ListTransactionTypes(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]transactionTypeView, 0, len(types))
	for _, t := range types {
		views = append(views, toTransactionTypeView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUpdateTransactionType(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req transactionTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t := core.TransactionType{
		ID:          id,
		UserID:      userID,
		Name:        req.Name,
		Nature:      core.Nature(req.Nature),
		Description: req.Description,
	}
	if err := t.Validate(); err != nil {
		writeError(w, err)
		return
	}
	if err := s.storage.UpdateTransactionType(r.Context(), t); err != nil {
		writeError(w, err)
		return
	}
	// Statement lines carry the type's name and sign, so cached months
	// of every account using it are stale now.
	s.statements.InvalidateTransactionType(r.Context(), userID, id)
	writeJSON(w, http.StatusOK, toTransactionTypeView(t))
}

func (s *Server) handleDeleteTransactionType(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.storage.DeleteTransactionType(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
