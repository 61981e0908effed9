package http

import (
	"time"

	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/services"
)

// JSON views. Amounts travel as fixed-point decimal strings, dates as
// YYYY-MM-DD and months as YYYY-MM.

type accountView struct {
	ID             int64  `json:"id"`
	BankName       string `json:"bank_name"`
	Agency         string `json:"agency,omitempty"`
	Number         string `json:"number"`
	Type           string `json:"type"`
	OpeningBalance string `json:"opening_balance"`
	CreditLimit    string `json:"credit_limit"`
	Description    string `json:"description,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func toAccountView(a core.Account) accountView {
	return accountView{
		ID:             a.ID,
		BankName:       a.BankName,
		Agency:         a.Agency,
		Number:         a.Number,
		Type:           string(a.Type),
		OpeningBalance: a.OpeningBalance.String(),
		CreditLimit:    a.CreditLimit.String(),
		Description:    a.Description,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
}

type transactionTypeView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Nature      string `json:"nature"`
	Description string `json:"description,omitempty"`
}

func toTransactionTypeView(t core.TransactionType) transactionTypeView {
	return transactionTypeView{
		ID:          t.ID,
		Name:        t.Name,
		Nature:      string(t.Nature),
		Description: t.Description,
	}
}

type movementView struct {
	ID                int64  `json:"id"`
	AccountID         int64  `json:"account_id"`
	TransactionTypeID int64  `json:"transaction_type_id"`
	Date              string `json:"date"`
	Amount            string `json:"amount"`
	Description       string `json:"description,omitempty"`
}

func toMovementView(m core.AccountMovement) movementView {
	return movementView{
		ID:                m.ID,
		AccountID:         m.AccountID,
		TransactionTypeID: m.TransactionTypeID,
		Date:              m.Date.Format("2006-01-02"),
		Amount:            m.Amount.String(),
		Description:       m.Description,
	}
}

type statementLineView struct {
	MovementID      int64  `json:"movement_id"`
	TransactionName string `json:"transaction_name"`
	Nature          string `json:"nature"`
	Date            string `json:"date"`
	Amount          string `json:"amount"`
	Description     string `json:"description,omitempty"`
	Running         string `json:"running_balance"`
}

type statementView struct {
	Month   string              `json:"month"`
	Opening string              `json:"opening_balance"`
	Lines   []statementLineView `json:"lines"`
	Closing string              `json:"closing_balance"`
}

func toStatementView(st ledger.Statement) statementView {
	view := statementView{
		Month:   st.Month.String(),
		Opening: st.Opening.String(),
		Lines:   make([]statementLineView, 0, len(st.Lines)),
		Closing: st.Closing.String(),
	}
	for _, line := range st.Lines {
		view.Lines = append(view.Lines, statementLineView{
			MovementID:      line.ID,
			TransactionName: line.TransactionName,
			Nature:          string(line.Nature),
			Date:            line.Date.Format("2006-01-02"),
			Amount:          line.Amount.String(),
			Description:     line.Description,
			Running:         line.Running.String(),
		})
	}
	return view
}

type creditLineView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	CardSuffix  string `json:"card_suffix,omitempty"`
	Limit       string `json:"limit"`
	Description string `json:"description,omitempty"`
}

func toCreditLineView(c core.CreditLine) creditLineView {
	return creditLineView{
		ID:          c.ID,
		Name:        c.Name,
		Kind:        string(c.Kind),
		CardSuffix:  c.CardSuffix,
		Limit:       c.Limit.String(),
		Description: c.Description,
	}
}

type purchaseGroupView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

type purchasePlanView struct {
	ID            int64  `json:"id"`
	CreditLineID  int64  `json:"credit_line_id"`
	GroupID       int64  `json:"group_id"`
	PurchaseDate  string `json:"purchase_date"`
	Description   string `json:"description,omitempty"`
	Total         string `json:"total"`
	Count         int    `json:"count"`
	FirstMonth    string `json:"first_month"`
	LastMonth     string `json:"last_month"`
	MonthlyAmount string `json:"monthly_amount"`
}

func toPurchasePlanView(p core.PurchasePlan) purchasePlanView {
	return purchasePlanView{
		ID:            p.ID,
		CreditLineID:  p.CreditLineID,
		GroupID:       p.GroupID,
		PurchaseDate:  p.PurchaseDate.Format("2006-01-02"),
		Description:   p.Description,
		Total:         p.Total.String(),
		Count:         p.Count,
		FirstMonth:    p.FirstMonth.String(),
		LastMonth:     p.LastMonth.String(),
		MonthlyAmount: p.MonthlyAmount.String(),
	}
}

type dueInstallmentView struct {
	InstallmentID  int64  `json:"installment_id"`
	PlanID         int64  `json:"plan_id"`
	CreditLineID   int64  `json:"credit_line_id"`
	CreditLineName string `json:"credit_line_name"`
	GroupName      string `json:"group_name"`
	Description    string `json:"description,omitempty"`
	Sequence       int    `json:"sequence"`
	Count          int    `json:"count"`
	DueDate        string `json:"due_date"`
	Amount         string `json:"amount"`
}

type creditLineMonthView struct {
	Month        string               `json:"month"`
	CreditLineID int64                `json:"credit_line_id,omitempty"`
	Installments []dueInstallmentView `json:"installments"`
	Total        string               `json:"total"`
}

func toCreditLineMonthView(v services.CreditLineMonth) creditLineMonthView {
	view := creditLineMonthView{
		Month:        v.Month.String(),
		CreditLineID: v.CreditLineID,
		Installments: make([]dueInstallmentView, 0, len(v.Installments)),
		Total:        v.Total.String(),
	}
	for _, d := range v.Installments {
		view.Installments = append(view.Installments, dueInstallmentView{
			InstallmentID:  d.InstallmentID,
			PlanID:         d.PlanID,
			CreditLineID:   d.CreditLineID,
			CreditLineName: d.CreditLineName,
			GroupName:      d.GroupName,
			Description:    d.Description,
			Sequence:       d.Sequence,
			Count:          d.Count,
			DueDate:        d.DueDate.Format("2006-01-02"),
			Amount:         d.Amount.String(),
		})
	}
	return view
}

type loanView struct {
	ID           int64  `json:"id"`
	AccountID    int64  `json:"account_id"`
	Name         string `json:"name"`
	Principal    string `json:"principal"`
	AnnualRate   string `json:"annual_rate"`
	StartDate    string `json:"start_date"`
	TermMonths   int    `json:"term_months"`
	Amortization string `json:"amortization"`
	Description  string `json:"description,omitempty"`
}

func toLoanView(l core.Loan) loanView {
	return loanView{
		ID:           l.ID,
		AccountID:    l.AccountID,
		Name:         l.Name,
		Principal:    l.Principal.String(),
		AnnualRate:   l.AnnualRate.String(),
		StartDate:    l.StartDate.Format("2006-01-02"),
		TermMonths:   l.TermMonths,
		Amortization: string(l.Amortization),
		Description:  l.Description,
	}
}

type loanInstallmentView struct {
	ID         int64  `json:"id"`
	Sequence   int    `json:"sequence"`
	DueDate    string `json:"due_date"`
	Principal  string `json:"principal"`
	Interest   string `json:"interest"`
	Insurance  string `json:"insurance"`
	Fees       string `json:"fees"`
	TotalDue   string `json:"total_due"`
	PaidDate   string `json:"paid_date,omitempty"`
	PaidAmount string `json:"paid_amount,omitempty"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
}

func toLoanInstallmentView(i core.LoanInstallment) loanInstallmentView {
	view := loanInstallmentView{
		ID:        i.ID,
		Sequence:  i.Sequence,
		DueDate:   i.DueDate.Format("2006-01-02"),
		Principal: i.Principal.String(),
		Interest:  i.Interest.String(),
		Insurance: i.Insurance.String(),
		Fees:      i.Fees.String(),
		TotalDue:  i.TotalDue.String(),
		Status:    string(i.Status),
		Notes:     i.Notes,
	}
	if i.PaidDate != nil {
		view.PaidDate = i.PaidDate.Format("2006-01-02")
	}
	if i.PaidAmount != nil {
		view.PaidAmount = i.PaidAmount.String()
	}
	return view
}

type incomeSourceView struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type incomeMovementView struct {
	ID             int64  `json:"id"`
	SourceID       int64  `json:"source_id"`
	ReferenceMonth string `json:"reference_month"`
	PaymentMonth   string `json:"payment_month"`
	Amount         string `json:"amount"`
	Description    string `json:"description,omitempty"`
}

func toIncomeMovementView(m core.IncomeMovement) incomeMovementView {
	return incomeMovementView{
		ID:             m.ID,
		SourceID:       m.SourceID,
		ReferenceMonth: m.ReferenceMonth.String(),
		PaymentMonth:   m.PaymentMonth.String(),
		Amount:         m.Amount.String(),
		Description:    m.Description,
	}
}

type budgetCategoryView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

type fixedEntryView struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category_id"`
	Month       string `json:"month"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type auditEventView struct {
	EventID  string `json:"event_id"`
	Event    string `json:"event"`
	Entity   string `json:"entity"`
	EntityID int64  `json:"entity_id"`
	At       string `json:"at"`
}
