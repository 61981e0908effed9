package http

import (
	"net/http"

	"financas/internal/core"

	"github.com/shopspring/decimal"
)

type loanInstallmentRequest struct {
	Sequence  int    `json:"sequence"`
	DueDate   string `json:"due_date"`
	Principal string `json:"principal"`
	Interest  string `json:"interest"`
	Insurance string `json:"insurance"`
	Fees      string `json:"fees"`
	TotalDue  string `json:"total_due"`
	Notes     string `json:"notes"`
}

type loanRequest struct {
	AccountID    int64                    `json:"account_id"`
	Name         string                   `json:"name"`
	Principal    string                   `json:"principal"`
	AnnualRate   string                   `json:"annual_rate"`
	StartDate    string                   `json:"start_date"`
	TermMonths   int                      `json:"term_months"`
	Amortization string                   `json:"amortization"`
	Description  string                   `json:"description"`
	Installments []loanInstallmentRequest `json:"installments"`
}

func (s *Server) handleImportLoan(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req loanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	principal, ok := parseMoneyField(w, "principal", req.Principal)
	if !ok {
		return
	}
	startDate, ok := parseDateField(w, "start_date", req.StartDate)
	if !ok {
		return
	}
	rate := decimal.Zero
	if req.AnnualRate != "" {
		var err error
		rate, err = decimal.NewFromString(req.AnnualRate)
		if err != nil {
			writeBadRequest(w, "invalid annual_rate %q", req.AnnualRate)
			return
		}
	}

	loan := core.Loan{
		UserID:       userID,
		AccountID:    req.AccountID,
		Name:         req.Name,
		Principal:    principal,
		AnnualRate:   rate,
		StartDate:    startDate,
		TermMonths:   req.TermMonths,
		Amortization: core.LoanAmortization(req.Amortization),
		Description:  req.Description,
	}

	installments := make([]core.LoanInstallment, 0, len(req.Installments))
	for _, ir := range req.Installments {
		inst, ok := loanInstallmentFromRequest(w, ir)
		if !ok {
			return
		}
		installments = append(installments, inst)
	}

	created, err := s.loans.ImportLoan(r.Context(), loan, installments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLoanView(created))
}

func loanInstallmentFromRequest(w http.ResponseWriter, req loanInstallmentRequest) (core.LoanInstallment, bool) {
	dueDate, ok := parseDateField(w, "due_date", req.DueDate)
	if !ok {
		return core.LoanInstallment{}, false
	}

	parse := func(field, raw string) (core.Money, bool) {
		if raw == "" {
			return core.MoneyZero, true
		}
		return parseMoneyField(w, field, raw)
	}

	inst := core.LoanInstallment{
		Sequence: req.Sequence,
		DueDate:  dueDate,
		Status:   core.LoanInstallmentPending,
		Notes:    req.Notes,
	}
	if inst.Principal, ok = parse("principal", req.Principal); !ok {
		return core.LoanInstallment{}, false
	}
	if inst.Interest, ok = parse("interest", req.Interest); !ok {
		return core.LoanInstallment{}, false
	}
	if inst.Insurance, ok = parse("insurance", req.Insurance); !ok {
		return core.LoanInstallment{}, false
	}
	if inst.Fees, ok = parse("fees", req.Fees); !ok {
		return core.LoanInstallment{}, false
	}
	if inst.TotalDue, ok = parse("total_due", req.TotalDue); !ok {
		return core.LoanInstallment{}, false
	}
	return inst, true
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	loans, err := s.storage.ListLoans(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]loanView, 0, len(loans))
	for _, l := range loans {
		views = append(views, toLoanView(l))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleListLoanInstallments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	installments, err := s.storage.ListLoanInstallments(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]loanInstallmentView, 0, len(installments))
	for _, inst := range installments {
		views = append(views, toLoanInstallmentView(inst))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handlePayLoanInstallment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		PaidDate   string `json:"paid_date"`
		PaidAmount string `json:"paid_amount"`
		Notes      string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	paidDate, ok := parseDateField(w, "paid_date", req.PaidDate)
	if !ok {
		return
	}
	paidAmount, ok := parseMoneyField(w, "paid_amount", req.PaidAmount)
	if !ok {
		return
	}

	if err := s.loans.PayInstallment(r.Context(), userID, id, paidDate, paidAmount, req.Notes); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
