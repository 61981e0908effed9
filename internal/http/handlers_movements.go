package http

import (
	"net/http"

	"financas/internal/core"
)

type movementRequest struct {
	AccountID         int64  `json:"account_id"`
	TransactionTypeID int64  `json:"transaction_type_id"`
	Date              string `json:"date"`
	Amount            string `json:"amount"`
	Description       string `json:"description"`
}

func movementFromRequest(w http.ResponseWriter, r *http.Request, userID int64) (core.AccountMovement, bool) {
	var req movementRequest
	if !decodeBody(w, r, &req) {
		return core.AccountMovement{}, false
	}
	date, ok := parseDateField(w, "date", req.Date)
	if !ok {
		return core.AccountMovement{}, false
	}
	amount, ok := parseMoneyField(w, "amount", req.Amount)
	if !ok {
		return core.AccountMovement{}, false
	}
	return core.AccountMovement{
		UserID:            userID,
		AccountID:         req.AccountID,
		TransactionTypeID: req.TransactionTypeID,
		Date:              date,
		Amount:            amount,
		Description:       req.Description,
	}, true
}

func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	m, ok := movementFromRequest(w, r, userID)
	if !ok {
		return
	}

	created, err := s.movements.CreateMovement(r.Context(), m)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMovementView(created))
}

func (s *Server) handleListMovements(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	accountID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	movements, err := s.storage.ListAccountMovements(r.Context(), userID, accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]movementView, 0, len(movements))
	for _, m := range movements {
		views = append(views, toMovementView(m))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUpdateMovement(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, ok := movementFromRequest(w, r, userID)
	if !ok {
		return
	}
	m.ID = id

	// The movement's account never changes on update; resolve it from
	// the stored row so validation and invalidation see the right one.
	existing, err := s.storage.GetAccountMovement(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	m.AccountID = existing.AccountID

	if err := s.movements.UpdateMovement(r.Context(), m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovementView(m))
}

func (s *Server) handleDeleteMovement(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.movements.DeleteMovement(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
