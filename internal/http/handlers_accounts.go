package http

import (
	"net/http"

	"financas/internal/core"
)

type accountRequest struct {
	BankName       string `json:"bank_name"`
	Agency         string `json:"agency"`
	Number         string `json:"number"`
	Type           string `json:"type"`
	OpeningBalance string `json:"opening_balance"`
	CreditLimit    string `json:"credit_limit"`
	Description    string `json:"description"`
}

func (s *Server) accountFromRequest(w http.ResponseWriter, r *http.Request, userID int64) (core.Account, bool) {
	var req accountRequest
	if !decodeBody(w, r, &req) {
		return core.Account{}, false
	}

	account := core.Account{
		UserID:      userID,
		BankName:    req.BankName,
		Agency:      req.Agency,
		Number:      req.Number,
		Type:        core.AccountType(req.Type),
		Description: req.Description,
	}
	if req.OpeningBalance != "" {
		m, ok := parseMoneyField(w, "opening_balance", req.OpeningBalance)
		if !ok {
			return core.Account{}, false
		}
		account.OpeningBalance = m
	}
	if req.CreditLimit != "" {
		m, ok := parseMoneyField(w, "credit_limit", req.CreditLimit)
		if !ok {
			return core.Account{}, false
		}
		account.CreditLimit = m
	}

	account.Normalize()
	if err := account.Validate(); err != nil {
		writeError(w, err)
		return core.Account{}, false
	}
	return account, true
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	account, ok := s.accountFromRequest(w, r, userID)
	if !ok {
		return
	}

	created, err := s.storage.CreateAccount(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountView(created))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	accounts, err := s.storage.ListAccounts(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, toAccountView(a))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	account, err := s.storage.GetAccount(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountView(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	account, ok := s.accountFromRequest(w, r, userID)
	if !ok {
		return
	}
	account.ID = id

	if err := s.storage.UpdateAccount(r.Context(), account); err != nil {
		writeError(w, err)
		return
	}
	s.statements.InvalidateAccount(id)
	writeJSON(w, http.StatusOK, toAccountView(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.storage.DeleteAccount(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	s.statements.InvalidateAccount(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAccountStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	month, ok := queryMonth(w, r)
	if !ok {
		return
	}

	st, err := s.statements.AccountStatement(r.Context(), userID, id, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementView(st))
}

func (s *Server) handleExportStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	month, ok := queryMonth(w, r)
	if !ok {
		return
	}

	ref, err := s.statements.ExportStatement(r.Context(), userID, id, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ref": ref})
}
