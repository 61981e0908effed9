package schedule

import (
	"errors"
	"testing"
	"time"

	"financas/internal/core"
)

func TestGenerateSequenceAndDueDates(t *testing.T) {
	first := core.NewMonth(2024, time.November)
	items, err := Generate(core.MustParseMoney("300.00"), 3, first, SplitEven)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(items))
	}

	// Contiguous 1..N, one calendar month apart, anchored to day 1,
	// with year rollover Nov -> Dec -> Jan.
	wantMonths := []string{"2024-11", "2024-12", "2025-01"}
	for i, it := range items {
		if it.Sequence != i+1 {
			t.Fatalf("installment %d: sequence %d", i, it.Sequence)
		}
		if it.DueDate.Day() != 1 {
			t.Fatalf("installment %d: due day %d, want 1", i, it.DueDate.Day())
		}
		if got := core.MonthOf(it.DueDate).String(); got != wantMonths[i] {
			t.Fatalf("installment %d: due month %s, want %s", i, got, wantMonths[i])
		}
		if got := it.Amount.String(); got != "100.00" {
			t.Fatalf("installment %d: amount %s", i, got)
		}
	}

	if got := LastMonth(first, 3); !got.Equal(core.MonthOf(items[2].DueDate)) {
		t.Fatalf("LastMonth %s != final due month %s", got, core.MonthOf(items[2].DueDate))
	}
}

func TestGenerateSplitEvenDrift(t *testing.T) {
	// Historical behavior, pinned: 10.00 over 3 gives three equal 3.33
	// installments and a one-cent shortfall that is never reconciled.
	items, err := Generate(core.MustParseMoney("10.00"), 3, core.NewMonth(2024, time.January), SplitEven)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	sum := core.MoneyZero
	for _, it := range items {
		if got := it.Amount.String(); got != "3.33" {
			t.Fatalf("amount %s, want 3.33", got)
		}
		sum = sum.Add(it.Amount)
	}
	if got := sum.String(); got != "9.99" {
		t.Fatalf("sum %s, want 9.99", got)
	}

	drift, err := Drift(core.MustParseMoney("10.00"), 3, SplitEven)
	if err != nil {
		t.Fatalf("drift: %v", err)
	}
	if got := drift.String(); got != "-0.01" {
		t.Fatalf("drift %s, want -0.01", got)
	}
}

func TestGenerateRemainderToLast(t *testing.T) {
	cases := []struct {
		total string
		count int
		want  []string
	}{
		{"10.00", 3, []string{"3.33", "3.33", "3.34"}},
		{"100.00", 3, []string{"33.33", "33.33", "33.34"}},
		{"0.05", 3, []string{"0.02", "0.02", "0.01"}},
		{"12.00", 4, []string{"3.00", "3.00", "3.00", "3.00"}},
		{"200.00", 7, []string{"28.57", "28.57", "28.57", "28.57", "28.57", "28.57", "28.58"}},
	}
	for _, tc := range cases {
		items, err := Generate(core.MustParseMoney(tc.total), tc.count, core.NewMonth(2024, time.March), RemainderToLast)
		if err != nil {
			t.Fatalf("%s/%d: %v", tc.total, tc.count, err)
		}
		sum := core.MoneyZero
		for i, it := range items {
			if got := it.Amount.String(); got != tc.want[i] {
				t.Fatalf("%s/%d installment %d: %s, want %s", tc.total, tc.count, i+1, got, tc.want[i])
			}
			sum = sum.Add(it.Amount)
		}
		if !sum.Equal(core.MustParseMoney(tc.total)) {
			t.Fatalf("%s/%d: sum %s != total", tc.total, tc.count, sum)
		}

		drift, err := Drift(core.MustParseMoney(tc.total), tc.count, RemainderToLast)
		if err != nil {
			t.Fatalf("drift: %v", err)
		}
		if !drift.IsZero() {
			t.Fatalf("%s/%d: drift %s, want zero", tc.total, tc.count, drift)
		}
	}
}

func TestGenerateSingleInstallment(t *testing.T) {
	for _, policy := range []RemainderPolicy{SplitEven, RemainderToLast} {
		items, err := Generate(core.MustParseMoney("123.45"), 1, core.NewMonth(2025, time.February), policy)
		if err != nil {
			t.Fatalf("%s: %v", policy, err)
		}
		if len(items) != 1 || items[0].Sequence != 1 {
			t.Fatalf("%s: got %+v", policy, items)
		}
		if got := items[0].Amount.String(); got != "123.45" {
			t.Fatalf("%s: amount %s", policy, got)
		}
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	first := core.NewMonth(2024, time.January)

	if _, err := Generate(core.MustParseMoney("10.00"), 0, first, SplitEven); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("count 0: got %v", err)
	}
	if _, err := Generate(core.MustParseMoney("10.00"), -2, first, SplitEven); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("negative count: got %v", err)
	}
	if _, err := Generate(core.MoneyZero, 3, first, SplitEven); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("zero total: got %v", err)
	}
	if _, err := Generate(core.MustParseMoney("-5.00"), 3, first, SplitEven); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("negative total: got %v", err)
	}
	if _, err := Generate(core.MustParseMoney("10.00"), 3, core.Month{}, SplitEven); err == nil {
		t.Fatal("zero month: expected error")
	}
	if _, err := Generate(core.MustParseMoney("10.00"), 3, first, RemainderPolicy("round_robin")); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("bad policy: got %v", err)
	}
}

func TestReschedule(t *testing.T) {
	// Editing a plan's total overwrites every amount but never the dates.
	amounts, err := Reschedule(core.MustParseMoney("9.00"), 3, SplitEven)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	for i, a := range amounts {
		if got := a.String(); got != "3.00" {
			t.Fatalf("amount %d: %s", i, got)
		}
	}

	amounts, err = Reschedule(core.MustParseMoney("10.00"), 3, RemainderToLast)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if amounts[2].String() != "3.34" {
		t.Fatalf("last amount %s, want 3.34", amounts[2])
	}

	if _, err := Reschedule(core.MoneyZero, 3, SplitEven); err == nil {
		t.Fatal("zero total: expected error")
	}
}

func TestMonthlyAmount(t *testing.T) {
	m, err := MonthlyAmount(core.MustParseMoney("10.00"), 3)
	if err != nil {
		t.Fatalf("monthly amount: %v", err)
	}
	if got := m.String(); got != "3.33" {
		t.Fatalf("got %s", got)
	}
	if _, err := MonthlyAmount(core.MustParseMoney("10.00"), 0); err == nil {
		t.Fatal("count 0: expected error")
	}
}
