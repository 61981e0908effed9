package ledger

import (
	"math/rand"
	"testing"
	"time"

	"financas/internal/core"
)

func inst(id, lineID int64, seq int, due time.Time, amount string) DueInstallment {
	return DueInstallment{
		InstallmentID: id,
		CreditLineID:  lineID,
		Sequence:      seq,
		DueDate:       due,
		Amount:        core.MustParseMoney(amount),
	}
}

func TestAggregateInstallmentsWindowAndTotal(t *testing.T) {
	items := []DueInstallment{
		inst(1, 10, 2, day(2024, 12, 1), "3.33"),
		inst(2, 10, 1, day(2024, 11, 1), "3.33"),
		inst(3, 20, 5, day(2024, 12, 31), "10.00"),
		inst(4, 20, 6, day(2025, 1, 1), "10.00"),
	}

	due, total := AggregateInstallments(items, core.NewMonth(2024, time.December), AllCreditLines)
	if len(due) != 2 {
		t.Fatalf("expected 2 due installments, got %d", len(due))
	}
	// December 31 is inside the window, January 1 is not.
	if due[0].InstallmentID != 1 || due[1].InstallmentID != 3 {
		t.Fatalf("got ids %d, %d", due[0].InstallmentID, due[1].InstallmentID)
	}
	if got := total.String(); got != "13.33" {
		t.Fatalf("total %s, want 13.33", got)
	}
}

func TestAggregateInstallmentsCreditLineFilter(t *testing.T) {
	items := []DueInstallment{
		inst(1, 10, 1, day(2024, 5, 1), "5.00"),
		inst(2, 20, 1, day(2024, 5, 1), "7.00"),
	}

	due, total := AggregateInstallments(items, core.NewMonth(2024, time.May), 20)
	if len(due) != 1 || due[0].InstallmentID != 2 {
		t.Fatalf("filter failed: %+v", due)
	}
	if got := total.String(); got != "7.00" {
		t.Fatalf("total %s, want 7.00", got)
	}
}

func TestAggregateInstallmentsOrdering(t *testing.T) {
	d := day(2024, 5, 1)
	items := []DueInstallment{
		inst(3, 10, 3, d, "1.00"),
		inst(1, 10, 1, d, "1.00"),
		inst(2, 10, 2, d, "1.00"),
		inst(4, 10, 1, day(2024, 5, 15), "1.00"),
	}

	due, _ := AggregateInstallments(items, core.NewMonth(2024, time.May), AllCreditLines)
	wantIDs := []int64{1, 2, 3, 4} // same due date sorted by sequence, then later date
	for i, want := range wantIDs {
		if due[i].InstallmentID != want {
			t.Fatalf("position %d: id %d, want %d", i, due[i].InstallmentID, want)
		}
	}
}

func TestAggregateInstallmentsEmpty(t *testing.T) {
	due, total := AggregateInstallments(nil, core.NewMonth(2024, time.May), AllCreditLines)
	if len(due) != 0 {
		t.Fatalf("expected empty, got %d", len(due))
	}
	if !total.IsZero() {
		t.Fatalf("total %s, want 0.00", total)
	}
}

func TestAggregateInstallmentsMatchesNaiveSum(t *testing.T) {
	// Randomized installments checked against an independent loop.
	rng := rand.New(rand.NewSource(1))
	var items []DueInstallment
	for i := 0; i < 200; i++ {
		due := day(2024, time.Month(1+rng.Intn(12)), 1+rng.Intn(28))
		items = append(items, inst(int64(i+1), int64(1+rng.Intn(3)), 1+rng.Intn(12), due,
			core.MoneyFromCents(int64(1+rng.Intn(100000))).String()))
	}

	for m := time.January; m <= time.December; m++ {
		month := core.NewMonth(2024, m)
		due, total := AggregateInstallments(items, month, AllCreditLines)

		naive := core.MoneyZero
		count := 0
		for _, it := range items {
			if month.Contains(it.DueDate) {
				naive = naive.Add(it.Amount)
				count++
			}
		}
		if count != len(due) {
			t.Fatalf("%s: %d due, naive %d", month, len(due), count)
		}
		if !total.Equal(naive) {
			t.Fatalf("%s: total %s, naive %s", month, total, naive)
		}
	}
}
