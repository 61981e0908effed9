package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"financas/internal/core"
)

func loanFixture(t *testing.T) (f fixture, l core.Loan, schedule []core.LoanInstallment) {
	t.Helper()
	f = newFixture(t)

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	l = core.Loan{
		UserID:       1,
		AccountID:    f.account.ID,
		Name:         "Financiamento",
		Principal:    core.MustParseMoney("2000.00"),
		StartDate:    start,
		TermMonths:   2,
		Amortization: core.AmortizationSAC,
	}
	schedule = []core.LoanInstallment{
		{Sequence: 1, DueDate: start,
			Principal: core.MustParseMoney("1000.00"),
			Interest:  core.MustParseMoney("50.00"),
			TotalDue:  core.MustParseMoney("1050.00")},
		{Sequence: 2, DueDate: start.AddDate(0, 1, 0),
			Principal: core.MustParseMoney("1000.00"),
			Interest:  core.MustParseMoney("25.00"),
			TotalDue:  core.MustParseMoney("1025.00")},
	}
	return f, l, schedule
}

func TestImportLoan(t *testing.T) {
	f, loan, sched := loanFixture(t)
	ctx := context.Background()
	svc := NewLoanService(f.repo, nil)

	created, err := svc.ImportLoan(ctx, loan, sched)
	if err != nil {
		t.Fatalf("import loan: %v", err)
	}

	got, err := f.repo.ListLoanInstallments(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d installments, want 2", len(got))
	}
	if got[0].Status != core.LoanInstallmentPending {
		t.Errorf("status %s, want pending", got[0].Status)
	}
}

func TestImportLoanRejectsBadSchedule(t *testing.T) {
	f, loan, sched := loanFixture(t)
	ctx := context.Background()
	svc := NewLoanService(f.repo, nil)

	short := sched[:1]
	if _, err := svc.ImportLoan(ctx, loan, short); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("short schedule: %v, want ErrInvalidArgument", err)
	}

	gap := []core.LoanInstallment{sched[0], sched[1]}
	gap[1].Sequence = 3
	if _, err := svc.ImportLoan(ctx, loan, gap); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("sequence gap: %v, want ErrInvalidArgument", err)
	}

	bad := []core.LoanInstallment{sched[0], sched[1]}
	bad[1].TotalDue = core.MustParseMoney("999.00")
	if _, err := svc.ImportLoan(ctx, loan, bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("component mismatch: %v, want ErrInvalidAmount", err)
	}
}

func TestPayInstallmentTwiceFails(t *testing.T) {
	f, loan, sched := loanFixture(t)
	ctx := context.Background()
	svc := NewLoanService(f.repo, nil)

	created, err := svc.ImportLoan(ctx, loan, sched)
	if err != nil {
		t.Fatalf("import loan: %v", err)
	}
	installments, err := f.repo.ListLoanInstallments(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}

	paidDate := loan.StartDate.AddDate(0, 0, 3)
	amount := core.MustParseMoney("1050.00")
	if err := svc.PayInstallment(ctx, 1, installments[0].ID, paidDate, amount, "em dia"); err != nil {
		t.Fatalf("pay installment: %v", err)
	}
	if err := svc.PayInstallment(ctx, 1, installments[0].ID, paidDate, amount, ""); err == nil {
		t.Error("expected error paying an installment twice")
	}
}

func TestSweepOverdue(t *testing.T) {
	f, loan, sched := loanFixture(t)
	ctx := context.Background()
	svc := NewLoanService(f.repo, nil)

	if _, err := svc.ImportLoan(ctx, loan, sched); err != nil {
		t.Fatalf("import loan: %v", err)
	}

	// Cutoff between the two due dates: only the first flips.
	n, err := svc.SweepOverdue(ctx, loan.StartDate.AddDate(0, 0, 15))
	if err != nil {
		t.Fatalf("sweep overdue: %v", err)
	}
	if n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
}
