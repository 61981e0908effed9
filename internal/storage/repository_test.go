package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"financas/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testAccount(userID int64) core.Account {
	return core.Account{
		UserID:         userID,
		BankName:       "Banco Teste",
		Agency:         "0001",
		Number:         "12345-6",
		Type:           core.AccountChecking,
		OpeningBalance: core.MustParseMoney("1000.00"),
		CreditLimit:    core.MustParseMoney("500.00"),
	}
}

func TestAccountRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateAccount(ctx, testAccount(1))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected nonzero id")
	}

	got, err := repo.GetAccount(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !got.OpeningBalance.Equal(created.OpeningBalance) {
		t.Errorf("opening balance %s, want %s", got.OpeningBalance, created.OpeningBalance)
	}
	if got.Type != core.AccountChecking {
		t.Errorf("type %s, want checking", got.Type)
	}

	// A different user must not see the account.
	if _, err := repo.GetAccount(ctx, 2, created.ID); !errors.Is(err, core.ErrNotOwner) {
		t.Errorf("cross-user get: %v, want ErrNotOwner", err)
	}

	if _, err := repo.GetAccount(ctx, 1, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing get: %v, want ErrNotFound", err)
	}
}

func TestAccountDuplicateConflict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateAccount(ctx, testAccount(1)); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := repo.CreateAccount(ctx, testAccount(1)); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate create: %v, want ErrConflict", err)
	}
}

func TestLedgerMovementsJoin(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acct, err := repo.CreateAccount(ctx, testAccount(1))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	credit, err := repo.CreateTransactionType(ctx, core.TransactionType{
		UserID: 1, Name: "Pix recebido", Nature: core.NatureCredit,
	})
	if err != nil {
		t.Fatalf("create credit type: %v", err)
	}
	debit, err := repo.CreateTransactionType(ctx, core.TransactionType{
		UserID: 1, Name: "Pix enviado", Nature: core.NatureDebit,
	})
	if err != nil {
		t.Fatalf("create debit type: %v", err)
	}

	feb := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	for _, m := range []core.AccountMovement{
		{UserID: 1, AccountID: acct.ID, TransactionTypeID: debit.ID, Date: feb, Amount: core.MustParseMoney("200.00")},
		{UserID: 1, AccountID: acct.ID, TransactionTypeID: credit.ID, Date: jan, Amount: core.MustParseMoney("500.00")},
	} {
		if _, err := repo.CreateAccountMovement(ctx, m); err != nil {
			t.Fatalf("create movement: %v", err)
		}
	}

	got, err := repo.ListLedgerMovements(ctx, 1, acct.ID)
	if err != nil {
		t.Fatalf("list ledger movements: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d movements, want 2", len(got))
	}
	// Date order, not insertion order.
	if !got[0].Date.Equal(jan) || got[0].Nature != core.NatureCredit {
		t.Errorf("first movement %v %s, want january credit", got[0].Date, got[0].Nature)
	}
	if got[1].TransactionName != "Pix enviado" {
		t.Errorf("second movement name %q", got[1].TransactionName)
	}
}

func TestPurchasePlanTransactional(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	line, err := repo.CreateCreditLine(ctx, core.CreditLine{
		UserID: 1, Name: "Cartão físico", Kind: core.CreditLinePhysical,
		Limit: core.MustParseMoney("5000.00"),
	})
	if err != nil {
		t.Fatalf("create credit line: %v", err)
	}
	group, err := repo.CreatePurchaseGroup(ctx, core.PurchaseGroup{
		UserID: 1, Name: "Eletrônicos", Kind: core.GroupPurchase,
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	first := core.NewMonth(2024, time.March)
	plan := core.PurchasePlan{
		UserID:        1,
		CreditLineID:  line.ID,
		GroupID:       group.ID,
		PurchaseDate:  time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC),
		Description:   "Notebook",
		Total:         core.MustParseMoney("3000.00"),
		Count:         3,
		FirstMonth:    first,
		LastMonth:     first.AddMonths(2),
		MonthlyAmount: core.MustParseMoney("1000.00"),
	}
	installments := []core.Installment{
		{Sequence: 1, DueDate: first.Time(), Amount: core.MustParseMoney("1000.00")},
		{Sequence: 2, DueDate: first.AddMonths(1).Time(), Amount: core.MustParseMoney("1000.00")},
		{Sequence: 3, DueDate: first.AddMonths(2).Time(), Amount: core.MustParseMoney("1000.00")},
	}

	created, err := repo.CreatePurchasePlan(ctx, plan, installments)
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	got, err := repo.ListPlanInstallments(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d installments, want 3", len(got))
	}
	if got[2].Sequence != 3 || !got[2].DueDate.Equal(first.AddMonths(2).Time()) {
		t.Errorf("last installment seq=%d due=%v", got[2].Sequence, got[2].DueDate)
	}

	due, err := repo.ListDueInstallments(ctx, 1)
	if err != nil {
		t.Fatalf("list due installments: %v", err)
	}
	if len(due) != 3 {
		t.Fatalf("got %d due installments, want 3", len(due))
	}
	if due[0].CreditLineName != "Cartão físico" || due[0].GroupName != "Eletrônicos" {
		t.Errorf("join fields %q %q", due[0].CreditLineName, due[0].GroupName)
	}

	// Reprice: total drops, amounts rewritten, dates untouched.
	amounts := []core.Money{
		core.MustParseMoney("900.00"),
		core.MustParseMoney("900.00"),
		core.MustParseMoney("900.00"),
	}
	err = repo.UpdatePurchasePlanTotal(ctx, 1, created.ID,
		core.MustParseMoney("2700.00"), core.MustParseMoney("900.00"), amounts)
	if err != nil {
		t.Fatalf("update plan total: %v", err)
	}
	updated, err := repo.GetPurchasePlan(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if !updated.Total.Equal(core.MustParseMoney("2700.00")) {
		t.Errorf("total %s, want 2700.00", updated.Total)
	}
	after, err := repo.ListPlanInstallments(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	if !after[0].Amount.Equal(core.MustParseMoney("900.00")) {
		t.Errorf("installment amount %s, want 900.00", after[0].Amount)
	}
	if !after[0].DueDate.Equal(first.Time()) {
		t.Errorf("due date changed to %v", after[0].DueDate)
	}

	// Cascade: deleting the plan removes installments from the due view.
	if err := repo.DeletePurchasePlan(ctx, 1, created.ID); err != nil {
		t.Fatalf("delete plan: %v", err)
	}
	due, err = repo.ListDueInstallments(ctx, 1)
	if err != nil {
		t.Fatalf("list due installments: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("got %d due installments after delete, want 0", len(due))
	}
}

func TestMarkOverdueLoanInstallments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acct, err := repo.CreateAccount(ctx, testAccount(1))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	loan := core.Loan{
		UserID: 1, AccountID: acct.ID, Name: "Financiamento carro",
		Principal:  core.MustParseMoney("20000.00"),
		StartDate:  start, TermMonths: 2, Amortization: core.AmortizationPrice,
	}
	installments := []core.LoanInstallment{
		{Sequence: 1, DueDate: start, Principal: core.MustParseMoney("900.00"),
			Interest: core.MustParseMoney("100.00"), TotalDue: core.MustParseMoney("1000.00"),
			Status: core.LoanInstallmentPending},
		{Sequence: 2, DueDate: start.AddDate(0, 1, 0), Principal: core.MustParseMoney("910.00"),
			Interest: core.MustParseMoney("90.00"), TotalDue: core.MustParseMoney("1000.00"),
			Status: core.LoanInstallmentPending},
	}
	created, err := repo.CreateLoan(ctx, loan, installments)
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}

	// Pay the first, then sweep with a cutoff past both due dates: only
	// the unpaid one flips.
	list, err := repo.ListLoanInstallments(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("list loan installments: %v", err)
	}
	err = repo.MarkLoanInstallmentPaid(ctx, 1, list[0].ID,
		start.AddDate(0, 0, 2), core.MustParseMoney("1000.00"), "")
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	n, err := repo.MarkOverdueLoanInstallments(ctx, start.AddDate(0, 2, 0))
	if err != nil {
		t.Fatalf("mark overdue: %v", err)
	}
	if n != 1 {
		t.Fatalf("marked %d overdue, want 1", n)
	}

	list, err = repo.ListLoanInstallments(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("list loan installments: %v", err)
	}
	if list[0].Status != core.LoanInstallmentPaid {
		t.Errorf("first status %s, want paid", list[0].Status)
	}
	if list[0].PaidAmount == nil || !list[0].PaidAmount.Equal(core.MustParseMoney("1000.00")) {
		t.Errorf("paid amount %v", list[0].PaidAmount)
	}
	if list[1].Status != core.LoanInstallmentOverdue {
		t.Errorf("second status %s, want overdue", list[1].Status)
	}
}

func TestAuditInsertIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	event := core.AuditEvent{
		EventID: "evt-1", UserID: 1, Event: "create", Entity: "account",
		EntityID: 7, At: time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.InsertAuditEvent(ctx, event); err != nil {
		t.Fatalf("insert audit event: %v", err)
	}
	// Redelivery of the same event must not duplicate the row.
	if err := repo.InsertAuditEvent(ctx, event); err != nil {
		t.Fatalf("reinsert audit event: %v", err)
	}

	got, err := repo.ListAuditEvents(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list audit events: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].Entity != "account" || got[0].EntityID != 7 {
		t.Errorf("event %+v", got[0])
	}
}

func TestUpsertFixedEntry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateBudgetCategory(ctx, core.BudgetCategory{
		UserID: 1, Name: "Aluguel", Kind: core.BudgetExpense,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	month := core.NewMonth(2024, time.June)
	entry := core.FixedEntry{
		UserID: 1, CategoryID: cat.ID, Month: month,
		Amount: core.MustParseMoney("1500.00"),
	}
	if _, err := repo.UpsertFixedEntry(ctx, entry); err != nil {
		t.Fatalf("upsert fixed entry: %v", err)
	}

	entry.Amount = core.MustParseMoney("1600.00")
	if _, err := repo.UpsertFixedEntry(ctx, entry); err != nil {
		t.Fatalf("re-upsert fixed entry: %v", err)
	}

	got, err := repo.ListFixedEntries(ctx, 1, month)
	if err != nil {
		t.Fatalf("list fixed entries: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if !got[0].Amount.Equal(core.MustParseMoney("1600.00")) {
		t.Errorf("amount %s, want 1600.00", got[0].Amount)
	}
}
