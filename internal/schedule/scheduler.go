// Package schedule turns a single credit-line purchase into its dated
// installment schedule. It is pure computation: callers persist the
// result (plan plus installments) as one atomic unit.
package schedule

import (
	"fmt"

	"financas/internal/core"
)

// RemainderPolicy decides what happens to the cents lost when the total
// does not divide evenly by the installment count.
//
// SplitEven assigns the rounded per-installment amount to every
// installment, so the schedule can sum to slightly less or more than the
// total (10.00 over 3 gives 3 x 3.33 = 9.99). This mirrors the historical
// behavior and is the default for compatibility.
//
// RemainderToLast gives the final installment whatever is left after
// count-1 rounded installments, so the schedule always sums to the total
// exactly.
type RemainderPolicy string

const (
	SplitEven       RemainderPolicy = "split_even"
	RemainderToLast RemainderPolicy = "remainder_to_last"
)

// Valid reports whether p is a known policy.
func (p RemainderPolicy) Valid() bool {
	return p == SplitEven || p == RemainderToLast
}

// Generate produces the ordered installment schedule for a purchase:
// count installments, sequence 1..count, each due on day 1 of
// firstMonth+(sequence-1). Per-installment amounts come from dividing the
// total with banker's rounding at two digits (core.Money.DivInt); the
// policy decides how the rounding remainder is handled.
//
// Inputs are assumed pre-validated by the caller; violations fail fast
// with core.ErrInvalidArgument instead of being clamped.
func Generate(total core.Money, count int, firstMonth core.Month, policy RemainderPolicy) ([]core.Installment, error) {
	if !total.IsPositive() {
		return nil, fmt.Errorf("schedule: total %s: %w", total, core.ErrInvalidAmount)
	}
	if count < 1 {
		return nil, fmt.Errorf("schedule: count %d: %w", count, core.ErrInvalidArgument)
	}
	if err := firstMonth.Validate(); err != nil {
		return nil, fmt.Errorf("schedule: first month: %w", err)
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("schedule: policy %q: %w", policy, core.ErrInvalidArgument)
	}

	amounts, err := splitAmounts(total, count, policy)
	if err != nil {
		return nil, err
	}

	items := make([]core.Installment, count)
	for i := 0; i < count; i++ {
		items[i] = core.Installment{
			Sequence: i + 1,
			DueDate:  firstMonth.AddMonths(i).Time(),
			Amount:   amounts[i],
		}
	}
	return items, nil
}

// Reschedule recomputes installment amounts for an existing plan after
// its total changed. Count, first month, and therefore all due dates are
// immutable after creation; only amounts are overwritten. The returned
// slice is ordered by sequence and has exactly count entries.
func Reschedule(newTotal core.Money, count int, policy RemainderPolicy) ([]core.Money, error) {
	if !newTotal.IsPositive() {
		return nil, fmt.Errorf("schedule: total %s: %w", newTotal, core.ErrInvalidAmount)
	}
	if count < 1 {
		return nil, fmt.Errorf("schedule: count %d: %w", count, core.ErrInvalidArgument)
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("schedule: policy %q: %w", policy, core.ErrInvalidArgument)
	}
	return splitAmounts(newTotal, count, policy)
}

// MonthlyAmount is the rounded per-installment amount cached on the plan
// row for display. Under RemainderToLast the final installment may differ
// from it by the rounding remainder.
func MonthlyAmount(total core.Money, count int) (core.Money, error) {
	if count < 1 {
		return core.Money{}, fmt.Errorf("schedule: count %d: %w", count, core.ErrInvalidArgument)
	}
	return total.DivInt(int64(count))
}

// LastMonth is the due month of the final installment, cached on the plan
// row. It must be re-derived whenever count or the first month changes.
func LastMonth(firstMonth core.Month, count int) core.Month {
	return firstMonth.AddMonths(count - 1)
}

// Drift is the difference between the scheduled sum and the purchase
// total: sum(installments) - total. Under RemainderToLast it is always
// zero; under SplitEven it exposes the cents the schedule gains or loses
// to rounding, so callers can detect and report it.
func Drift(total core.Money, count int, policy RemainderPolicy) (core.Money, error) {
	amounts, err := splitAmounts(total, count, policy)
	if err != nil {
		return core.Money{}, err
	}
	sum := core.MoneyZero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return sum.Sub(total), nil
}

func splitAmounts(total core.Money, count int, policy RemainderPolicy) ([]core.Money, error) {
	base, err := total.DivInt(int64(count))
	if err != nil {
		return nil, fmt.Errorf("schedule: split %s by %d: %w", total, count, err)
	}

	amounts := make([]core.Money, count)
	for i := range amounts {
		amounts[i] = base
	}
	if policy == RemainderToLast {
		amounts[count-1] = total.Sub(base.MulInt(int64(count - 1)))
	}
	return amounts, nil
}
