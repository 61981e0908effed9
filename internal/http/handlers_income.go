package http

import (
	"net/http"
	"strings"
	"time"

	"financas/internal/core"
)

func (s *Server) handleCreateIncomeSource(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	source := core.IncomeSource{
		UserID:      userID,
		Description: req.Description,
		Type:        core.IncomeType(req.Type),
	}
	if err := source.Validate(); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.storage.CreateIncomeSource(r.Context(), source)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, incomeSourceView{
		ID: created.ID, Description: created.Description, Type: string(created.Type),
	})
}

func (s *Server) handleListIncomeSources(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sources, err := s.storage.ListIncomeSources(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]incomeSourceView, 0, len(sources))
	for _, src := range sources {
		views = append(views, incomeSourceView{
			ID: src.ID, Description: src.Description, Type: string(src.Type),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDeleteIncomeSource(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.storage.DeleteIncomeSource(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateIncomeMovement(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		SourceID       int64  `json:"source_id"`
		ReferenceMonth string `json:"reference_month"`
		PaymentMonth   string `json:"payment_month"`
		Amount         string `json:"amount"`
		Description    string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	refMonth, ok := parseMonthField(w, "reference_month", req.ReferenceMonth)
	if !ok {
		return
	}
	payMonth, ok := parseMonthField(w, "payment_month", req.PaymentMonth)
	if !ok {
		return
	}
	amount, ok := parseMoneyField(w, "amount", req.Amount)
	if !ok {
		return
	}

	m := core.IncomeMovement{
		UserID:         userID,
		SourceID:       req.SourceID,
		ReferenceMonth: refMonth,
		PaymentMonth:   payMonth,
		Amount:         amount,
		Description:    req.Description,
	}
	if err := m.Validate(); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.storage.CreateIncomeMovement(r.Context(), m)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncomeMovementView(created))
}

func (s *Server) handleListIncomeMovements(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	// Optional ?payment_month filter; absent means all.
	var month core.Month
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_month")); raw != "" {
		m, ok := parseMonthField(w, "payment_month", raw)
		if !ok {
			return
		}
		month = m
	}

	movements, err := s.storage.ListIncomeMovements(r.Context(), userID, month)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]incomeMovementView, 0, len(movements))
	for _, m := range movements {
		views = append(views, toIncomeMovementView(m))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDeleteIncomeMovement(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.storage.DeleteIncomeMovement(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateBudgetCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name"`
		Kind        string `json:"kind"`
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	category := core.BudgetCategory{
		UserID:      userID,
		Name:        req.Name,
		Kind:        core.BudgetKind(req.Kind),
		Description: req.Description,
	}
	if err := category.Validate(); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.storage.CreateBudgetCategory(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, budgetCategoryView{
		ID: created.ID, Name: created.Name, Kind: string(created.Kind),
		Description: created.Description,
	})
}

func (s *Server) handleListBudgetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	categories, err := s.storage.ListBudgetCategories(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]budgetCategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, budgetCategoryView{
			ID: c.ID, Name: c.Name, Kind: string(c.Kind), Description: c.Description,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUpsertFixedEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		CategoryID  int64  `json:"category_id"`
		Month       string `json:"month"`
		Amount      string `json:"amount"`
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	month, ok := parseMonthField(w, "month", req.Month)
	if !ok {
		return
	}
	amount, ok := parseMoneyField(w, "amount", req.Amount)
	if !ok {
		return
	}

	entry := core.FixedEntry{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Month:       month,
		Amount:      amount,
		Description: req.Description,
	}
	if err := entry.Validate(); err != nil {
		writeError(w, err)
		return
	}

	saved, err := s.storage.UpsertFixedEntry(r.Context(), entry)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fixedEntryView{
		ID:          saved.ID,
		CategoryID:  saved.CategoryID,
		Month:       saved.Month.String(),
		Amount:      saved.Amount.String(),
		Description: saved.Description,
	})
}

func (s *Server) handleListFixedEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	month, ok := queryMonth(w, r)
	if !ok {
		return
	}
	entries, err := s.storage.ListFixedEntries(r.Context(), userID, month)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]fixedEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, fixedEntryView{
			ID:          e.ID,
			CategoryID:  e.CategoryID,
			Month:       e.Month.String(),
			Amount:      e.Amount.String(),
			Description: e.Description,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	events, err := s.storage.ListAuditEvents(r.Context(), userID, 100)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]auditEventView, 0, len(events))
	for _, e := range events {
		views = append(views, auditEventView{
			EventID:  e.EventID,
			Event:    e.Event,
			Entity:   e.Entity,
			EntityID: e.EntityID,
			At:       e.At.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, views)
}
