package ledger

import (
	"sort"
	"time"

	"financas/internal/core"
)

// DueInstallment is an installment row joined with its plan and credit
// line, as needed by the credit-line statement view.
type DueInstallment struct {
	InstallmentID  int64
	PlanID         int64
	CreditLineID   int64
	CreditLineName string
	GroupName      string
	Description    string
	Sequence       int
	Count          int
	DueDate        time.Time
	Amount         core.Money
}

// AllCreditLines selects installments across every credit line the user
// owns when passed as the creditLineID filter.
const AllCreditLines int64 = 0

// AggregateInstallments filters installments to those due inside the
// month window, optionally restricted to one credit line, sorts them by
// due date then sequence, and totals them with exact Money addition.
// It is a pure filter and fold: no hidden state, idempotent, and an empty
// result yields a zero total.
func AggregateInstallments(items []DueInstallment, month core.Month, creditLineID int64) ([]DueInstallment, core.Money) {
	var due []DueInstallment
	for _, it := range items {
		if creditLineID != AllCreditLines && it.CreditLineID != creditLineID {
			continue
		}
		if !month.Contains(it.DueDate) {
			continue
		}
		due = append(due, it)
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].DueDate.Equal(due[j].DueDate) {
			return due[i].DueDate.Before(due[j].DueDate)
		}
		return due[i].Sequence < due[j].Sequence
	})

	total := core.MoneyZero
	for _, it := range due {
		total = total.Add(it.Amount)
	}
	return due, total
}
