package services

import (
	"context"
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/schedule"
	"financas/internal/storage"
)

func planFixture(t *testing.T) (*storage.SQLiteRepository, core.PurchasePlan) {
	t.Helper()
	repo := newTestRepo(t)
	ctx := context.Background()

	line, err := repo.CreateCreditLine(ctx, core.CreditLine{
		UserID: 1, Name: "Cartão", Kind: core.CreditLinePhysical,
	})
	if err != nil {
		t.Fatalf("create credit line: %v", err)
	}
	group, err := repo.CreatePurchaseGroup(ctx, core.PurchaseGroup{
		UserID: 1, Name: "Compras", Kind: core.GroupPurchase,
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	return repo, core.PurchasePlan{
		UserID:       1,
		CreditLineID: line.ID,
		GroupID:      group.ID,
		PurchaseDate: time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC),
		Description:  "Geladeira",
		Total:        core.MustParseMoney("10.00"),
		Count:        3,
		FirstMonth:   core.NewMonth(2024, time.February),
	}
}

func TestCreatePlanSplitEven(t *testing.T) {
	repo, plan := planFixture(t)
	ctx := context.Background()
	svc := NewPurchaseService(repo, nil, schedule.SplitEven)

	created, err := svc.CreatePlan(ctx, plan)
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if !created.MonthlyAmount.Equal(core.MustParseMoney("3.33")) {
		t.Errorf("monthly amount %s, want 3.33", created.MonthlyAmount)
	}
	if !created.LastMonth.Equal(core.NewMonth(2024, time.April)) {
		t.Errorf("last month %s, want 2024-04", created.LastMonth)
	}

	installments, err := repo.ListPlanInstallments(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	// 10.00 over 3 under split_even: every parcel 3.33, sum 9.99.
	sum := core.MoneyZero
	for _, inst := range installments {
		if !inst.Amount.Equal(core.MustParseMoney("3.33")) {
			t.Errorf("installment %d amount %s, want 3.33", inst.Sequence, inst.Amount)
		}
		sum = sum.Add(inst.Amount)
	}
	if !sum.Equal(core.MustParseMoney("9.99")) {
		t.Errorf("schedule sum %s, want 9.99", sum)
	}
}

func TestCreatePlanRemainderToLast(t *testing.T) {
	repo, plan := planFixture(t)
	ctx := context.Background()
	svc := NewPurchaseService(repo, nil, schedule.RemainderToLast)

	created, err := svc.CreatePlan(ctx, plan)
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	installments, err := repo.ListPlanInstallments(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	if !installments[2].Amount.Equal(core.MustParseMoney("3.34")) {
		t.Errorf("last installment %s, want 3.34", installments[2].Amount)
	}
	sum := core.MoneyZero
	for _, inst := range installments {
		sum = sum.Add(inst.Amount)
	}
	if !sum.Equal(plan.Total) {
		t.Errorf("schedule sum %s, want %s", sum, plan.Total)
	}
}

func TestRepricePlanKeepsDates(t *testing.T) {
	repo, plan := planFixture(t)
	ctx := context.Background()
	svc := NewPurchaseService(repo, nil, schedule.RemainderToLast)

	created, err := svc.CreatePlan(ctx, plan)
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	before, err := repo.ListPlanInstallments(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}

	updated, err := svc.RepricePlan(ctx, 1, created.ID, core.MustParseMoney("9.00"))
	if err != nil {
		t.Fatalf("reprice plan: %v", err)
	}
	if !updated.Total.Equal(core.MustParseMoney("9.00")) {
		t.Errorf("total %s, want 9.00", updated.Total)
	}

	after, err := repo.ListPlanInstallments(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	for i := range after {
		if !after[i].DueDate.Equal(before[i].DueDate) {
			t.Errorf("installment %d due date changed: %v -> %v",
				i+1, before[i].DueDate, after[i].DueDate)
		}
		if !after[i].Amount.Equal(core.MustParseMoney("3.00")) {
			t.Errorf("installment %d amount %s, want 3.00", i+1, after[i].Amount)
		}
	}
}

func TestCreatePlanRejectsInvalid(t *testing.T) {
	repo, plan := planFixture(t)
	ctx := context.Background()
	svc := NewPurchaseService(repo, nil, schedule.SplitEven)

	bad := plan
	bad.Count = 0
	if _, err := svc.CreatePlan(ctx, bad); err == nil {
		t.Error("expected error for zero count")
	}

	bad = plan
	bad.Total = core.MoneyZero
	if _, err := svc.CreatePlan(ctx, bad); err == nil {
		t.Error("expected error for zero total")
	}
}
