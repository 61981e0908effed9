package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/schedule"
	"financas/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

type fixture struct {
	repo    *storage.SQLiteRepository
	account core.Account
	credit  core.TransactionType
	debit   core.TransactionType
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := newTestRepo(t)
	ctx := context.Background()

	account, err := repo.CreateAccount(ctx, core.Account{
		UserID:         1,
		BankName:       "Banco Teste",
		Number:         "123-4",
		Type:           core.AccountChecking,
		OpeningBalance: core.MustParseMoney("1000.00"),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	credit, err := repo.CreateTransactionType(ctx, core.TransactionType{
		UserID: 1, Name: "Depósito", Nature: core.NatureCredit,
	})
	if err != nil {
		t.Fatalf("create credit type: %v", err)
	}
	debit, err := repo.CreateTransactionType(ctx, core.TransactionType{
		UserID: 1, Name: "Saque", Nature: core.NatureDebit,
	})
	if err != nil {
		t.Fatalf("create debit type: %v", err)
	}
	return fixture{repo: repo, account: account, credit: credit, debit: debit}
}

func TestAccountStatementReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	movements := NewMovementService(f.repo, nil, nil)
	statements := NewStatementService(f.repo, nil, nil)

	_, err := movements.CreateMovement(ctx, core.AccountMovement{
		UserID: 1, AccountID: f.account.ID, TransactionTypeID: f.credit.ID,
		Date:   time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		Amount: core.MustParseMoney("500.00"),
	})
	if err != nil {
		t.Fatalf("create movement: %v", err)
	}
	_, err = movements.CreateMovement(ctx, core.AccountMovement{
		UserID: 1, AccountID: f.account.ID, TransactionTypeID: f.debit.ID,
		Date:   time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC),
		Amount: core.MustParseMoney("200.00"),
	})
	if err != nil {
		t.Fatalf("create movement: %v", err)
	}

	feb, err := statements.AccountStatement(ctx, 1, f.account.ID, core.NewMonth(2024, time.February))
	if err != nil {
		t.Fatalf("february statement: %v", err)
	}
	if !feb.Opening.Equal(core.MustParseMoney("1500.00")) {
		t.Errorf("february opening %s, want 1500.00", feb.Opening)
	}
	if !feb.Closing.Equal(core.MustParseMoney("1300.00")) {
		t.Errorf("february closing %s, want 1300.00", feb.Closing)
	}
	if len(feb.Lines) != 1 || !feb.Lines[0].Running.Equal(core.MustParseMoney("1300.00")) {
		t.Errorf("february lines %+v", feb.Lines)
	}

	// Another user never sees the statement.
	if _, err := statements.AccountStatement(ctx, 2, f.account.ID, core.NewMonth(2024, time.February)); !errors.Is(err, core.ErrNotOwner) {
		t.Errorf("cross-user statement: %v, want ErrNotOwner", err)
	}
}

func TestStatementCacheInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lru := cache.NewLRU[ledger.Statement](16, time.Minute)
	statements := NewStatementService(f.repo, lru, nil)
	movements := NewMovementService(f.repo, statements, nil)

	jan := core.NewMonth(2024, time.January)
	first, err := statements.AccountStatement(ctx, 1, f.account.ID, jan)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if !first.Closing.Equal(core.MustParseMoney("1000.00")) {
		t.Errorf("closing %s, want 1000.00", first.Closing)
	}
	if lru.Size() != 1 {
		t.Fatalf("cache size %d, want 1", lru.Size())
	}

	// A write must evict the cached month so the next read sees it.
	_, err = movements.CreateMovement(ctx, core.AccountMovement{
		UserID: 1, AccountID: f.account.ID, TransactionTypeID: f.credit.ID,
		Date:   time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Amount: core.MustParseMoney("250.00"),
	})
	if err != nil {
		t.Fatalf("create movement: %v", err)
	}
	if lru.Size() != 0 {
		t.Fatalf("cache size %d after write, want 0", lru.Size())
	}

	second, err := statements.AccountStatement(ctx, 1, f.account.ID, jan)
	if err != nil {
		t.Fatalf("statement after write: %v", err)
	}
	if !second.Closing.Equal(core.MustParseMoney("1250.00")) {
		t.Errorf("closing %s, want 1250.00", second.Closing)
	}
}

func TestTransactionTypeChangeInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lru := cache.NewLRU[ledger.Statement](16, time.Minute)
	statements := NewStatementService(f.repo, lru, nil)
	movements := NewMovementService(f.repo, statements, nil)

	_, err := movements.CreateMovement(ctx, core.AccountMovement{
		UserID: 1, AccountID: f.account.ID, TransactionTypeID: f.credit.ID,
		Date:   time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Amount: core.MustParseMoney("50.00"),
	})
	if err != nil {
		t.Fatalf("create movement: %v", err)
	}

	jan := core.NewMonth(2024, time.January)
	first, err := statements.AccountStatement(ctx, 1, f.account.ID, jan)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if !first.Closing.Equal(core.MustParseMoney("1050.00")) {
		t.Errorf("closing %s, want 1050.00", first.Closing)
	}
	if lru.Size() != 1 {
		t.Fatalf("cache size %d, want 1", lru.Size())
	}

	// Flipping the type's nature changes the sign of every movement
	// referencing it, so the cached month must go.
	flipped := f.credit
	flipped.Nature = core.NatureDebit
	if err := f.repo.UpdateTransactionType(ctx, flipped); err != nil {
		t.Fatalf("update type: %v", err)
	}
	statements.InvalidateTransactionType(ctx, 1, f.credit.ID)
	if lru.Size() != 0 {
		t.Fatalf("cache size %d after nature change, want 0", lru.Size())
	}

	second, err := statements.AccountStatement(ctx, 1, f.account.ID, jan)
	if err != nil {
		t.Fatalf("statement after nature change: %v", err)
	}
	if !second.Closing.Equal(core.MustParseMoney("950.00")) {
		t.Errorf("closing %s, want 950.00", second.Closing)
	}
}

func TestCreditLineStatement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	line, err := f.repo.CreateCreditLine(ctx, core.CreditLine{
		UserID: 1, Name: "Cartão", Kind: core.CreditLinePhysical,
	})
	if err != nil {
		t.Fatalf("create credit line: %v", err)
	}
	group, err := f.repo.CreatePurchaseGroup(ctx, core.PurchaseGroup{
		UserID: 1, Name: "Mercado", Kind: core.GroupPurchase,
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	purchases := NewPurchaseService(f.repo, nil, schedule.SplitEven)
	_, err = purchases.CreatePlan(ctx, core.PurchasePlan{
		UserID:       1,
		CreditLineID: line.ID,
		GroupID:      group.ID,
		PurchaseDate: time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC),
		Description:  "Compra parcelada",
		Total:        core.MustParseMoney("300.00"),
		Count:        3,
		FirstMonth:   core.NewMonth(2024, time.March),
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	statements := NewStatementService(f.repo, nil, nil)
	view, err := statements.CreditLineStatement(ctx, 1, core.NewMonth(2024, time.April), ledger.AllCreditLines)
	if err != nil {
		t.Fatalf("credit line statement: %v", err)
	}
	if len(view.Installments) != 1 {
		t.Fatalf("got %d installments, want 1", len(view.Installments))
	}
	if view.Installments[0].Sequence != 2 {
		t.Errorf("sequence %d, want 2", view.Installments[0].Sequence)
	}
	if !view.Total.Equal(core.MustParseMoney("100.00")) {
		t.Errorf("total %s, want 100.00", view.Total)
	}
}
