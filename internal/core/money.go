// Package core holds the domain model: monetary values, calendar months,
// and the entities the scheduling and statement engines operate on.
//
// Everything in this package is pure data plus validation. Persistence,
// session state, and transport live elsewhere and hand this package
// already-typed values.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact base-10 currency amount with two fractional digits.
// It wraps decimal.Decimal so arithmetic never passes through binary
// floating point. Construct it from a string or from cents; there is
// deliberately no constructor taking a float64, because a float can carry
// representation error before any rounding policy is applied.
//
// Division rounds half to even ("banker's rounding") at two fractional
// digits. That choice is load-bearing for installment schedules and is
// pinned by tests; see schedule.Generate.
type Money struct {
	d decimal.Decimal
}

// MoneyZero is the zero amount.
var MoneyZero = Money{}

// ParseMoney parses a decimal literal with a dot or comma separator,
// e.g. "12.34" or "12,34". Inputs with more than two fractional digits
// are rejected rather than silently rounded.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.Exponent() < -2 {
		return Money{}, ErrInvalidAmount
	}
	return Money{d: d}, nil
}

// MustParseMoney is ParseMoney that panics on error. Test helper.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic("core: parse money " + s + ": " + err.Error())
	}
	return m
}

// MoneyFromCents builds an amount from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

// Add returns m + o.
func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// Neg returns -m.
func (m Money) Neg() Money { return Money{d: m.d.Neg()} }

// MulInt returns m * n.
func (m Money) MulInt(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n))}
}

// DivInt returns m / n rounded half to even at two fractional digits.
func (m Money) DivInt(n int64) (Money, error) {
	if n == 0 {
		return Money{}, ErrInvalidArgument
	}
	q := m.d.Div(decimal.NewFromInt(n))
	return Money{d: q.RoundBank(2)}, nil
}

// Cmp compares exactly: -1 if m < o, 0 if equal, +1 if m > o.
// There is no epsilon comparison anywhere in this type.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// Equal reports whether the amounts are exactly equal.
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.d.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Cents returns the amount as an integer number of cents.
func (m Money) Cents() int64 {
	return m.d.Shift(2).IntPart()
}

// String renders the amount with exactly two fractional digits.
func (m Money) String() string { return m.d.StringFixed(2) }

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Validate rejects amounts that are not strictly positive. Stored
// magnitudes are unsigned; the sign comes from the transaction nature.
func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
