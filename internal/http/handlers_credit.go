package http

import (
	"net/http"
	"strconv"
	"strings"

	"financas/internal/core"
	"financas/internal/ledger"
)

type creditLineRequest struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	CardSuffix  string `json:"card_suffix"`
	Limit       string `json:"limit"`
	Description string `json:"description"`
}

func creditLineFromRequest(w http.ResponseWriter, r *http.Request, userID int64) (core.CreditLine, bool) {
	var req creditLineRequest
	if !decodeBody(w, r, &req) {
		return core.CreditLine{}, false
	}
	line := core.CreditLine{
		UserID:      userID,
		Name:        req.Name,
		Kind:        core.CreditLineKind(req.Kind),
		CardSuffix:  req.CardSuffix,
		Description: req.Description,
	}
	if req.Limit != "" {
		m, ok := parseMoneyField(w, "limit", req.Limit)
		if !ok {
			return core.CreditLine{}, false
		}
		line.Limit = m
	}
	if err := line.Validate(); err != nil {
		writeError(w, err)
		return core.CreditLine{}, false
	}
	return line, true
}

func (s *Server) handleCreateCreditLine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	line, ok := creditLineFromRequest(w, r, userID)
	if !ok {
		return
	}
	created, err := s.storage.CreateCreditLine(r.Context(), line)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCreditLineView(created))
}

func (s *Server) handleListCreditLines(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	lines, err := s.storage.ListCreditLines(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]creditLineView, 0, len(lines))
	for _, c := range lines {
		views = append(views, toCreditLineView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUpdateCreditLine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	line, ok := creditLineFromRequest(w, r, userID)
	if !ok {
		return
	}
	line.ID = id
	if err := s.storage.UpdateCreditLine(r.Context(), line); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCreditLineView(line))
}

func (s *Server) handleDeleteCreditLine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.storage.DeleteCreditLine(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCreditLineStatement answers the monthly installment view.
// ?credit_line_id filters to one line, absent or 0 means all lines.
func (s *Server) handleCreditLineStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	month, ok := queryMonth(w, r)
	if !ok {
		return
	}

	creditLineID := ledger.AllCreditLines
	if raw := strings.TrimSpace(r.URL.Query().Get("credit_line_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			writeBadRequest(w, "invalid credit_line_id %q", raw)
			return
		}
		creditLineID = id
	}

	view, err := s.statements.CreditLineStatement(r.Context(), userID, month, creditLineID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCreditLineMonthView(view))
}

type purchaseGroupRequest struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

func (s *Server) handleCreatePurchaseGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req purchaseGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	group := core.PurchaseGroup{
		UserID:      userID,
		Name:        req.Name,
		Kind:        core.GroupKind(req.Kind),
		Description: req.Description,
	}
	if err := group.Validate(); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.storage.CreatePurchaseGroup(r.Context(), group)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, purchaseGroupView{
		ID: created.ID, Name: created.Name, Kind: string(created.Kind),
		Description: created.Description,
	})
}

func (s *Server) handleListPurchaseGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groups, err := s.storage.ListPurchaseGroups(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]purchaseGroupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, purchaseGroupView{
			ID: g.ID, Name: g.Name, Kind: string(g.Kind), Description: g.Description,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDeletePurchaseGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.storage.DeletePurchaseGroup(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type purchasePlanRequest struct {
	CreditLineID int64  `json:"credit_line_id"`
	GroupID      int64  `json:"group_id"`
	PurchaseDate string `json:"purchase_date"`
	Description  string `json:"description"`
	Total        string `json:"total"`
	Count        int    `json:"count"`
	FirstMonth   string `json:"first_month"`
}

func (s *Server) handleCreatePurchasePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req purchasePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	purchaseDate, ok := parseDateField(w, "purchase_date", req.PurchaseDate)
	if !ok {
		return
	}
	total, ok := parseMoneyField(w, "total", req.Total)
	if !ok {
		return
	}
	firstMonth, ok := parseMonthField(w, "first_month", req.FirstMonth)
	if !ok {
		return
	}

	plan := core.PurchasePlan{
		UserID:       userID,
		CreditLineID: req.CreditLineID,
		GroupID:      req.GroupID,
		PurchaseDate: purchaseDate,
		Description:  req.Description,
		Total:        total,
		Count:        req.Count,
		FirstMonth:   firstMonth,
	}

	created, err := s.purchases.CreatePlan(r.Context(), plan)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPurchasePlanView(created))
}

func (s *Server) handleListPurchasePlans(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	plans, err := s.storage.ListPurchasePlans(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]purchasePlanView, 0, len(plans))
	for _, p := range plans {
		views = append(views, toPurchasePlanView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetPurchasePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	plan, err := s.storage.GetPurchasePlan(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	installments, err := s.storage.ListPlanInstallments(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	type installmentView struct {
		Sequence int    `json:"sequence"`
		DueDate  string `json:"due_date"`
		Amount   string `json:"amount"`
	}
	resp := struct {
		purchasePlanView
		Installments []installmentView `json:"installments"`
	}{
		purchasePlanView: toPurchasePlanView(plan),
		Installments:     make([]installmentView, 0, len(installments)),
	}
	for _, inst := range installments {
		resp.Installments = append(resp.Installments, installmentView{
			Sequence: inst.Sequence,
			DueDate:  inst.DueDate.Format("2006-01-02"),
			Amount:   inst.Amount.String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRepricePurchasePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Total string `json:"total"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	total, ok := parseMoneyField(w, "total", req.Total)
	if !ok {
		return
	}

	updated, err := s.purchases.RepricePlan(r.Context(), userID, id, total)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchasePlanView(updated))
}

func (s *Server) handleDeletePurchasePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.purchases.DeletePlan(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
