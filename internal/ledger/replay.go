// Package ledger reconstructs monthly statements. Balances are never
// stored: an account statement replays the full movement history over a
// month window, and a credit-line statement folds the installments due in
// it. Both computations are pure and deterministic over their inputs.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"financas/internal/core"
)

// Movement is one replayable ledger entry: a movement row joined with the
// nature of its transaction type. The repository builds these; the
// replayer never touches storage or session state.
type Movement struct {
	ID              int64
	TransactionName string
	Nature          core.Nature
	Date            time.Time
	Amount          core.Money
	Description     string
	CreatedAt       time.Time
}

// Line is a movement inside the statement window together with the
// running balance after applying it.
type Line struct {
	Movement
	Running core.Money
}

// Statement is a reconstructed month view of an account: the balance
// carried into the window, the ordered in-window movements with running
// balances, and the balance carried out.
type Statement struct {
	Month   core.Month
	Opening core.Money
	Lines   []Line
	Closing core.Money
}

// Replay computes the statement for one month from the account's opening
// balance and its complete movement history.
//
// Movements dated before the window are folded into the opening balance;
// movements inside [month, month+1) are sorted by date then creation
// timestamp (so same-day entries keep insertion order) and folded into
// running balances; later movements are ignored. A movement whose nature
// is outside the Credit/Debit set aborts the whole computation: guessing
// a sign would corrupt every balance derived from it.
func Replay(opening core.Money, movements []Movement, month core.Month) (Statement, error) {
	if err := month.Validate(); err != nil {
		return Statement{}, fmt.Errorf("ledger: replay month: %w", err)
	}

	windowStart := month.Time()
	before := opening
	var inWindow []Movement

	for _, m := range movements {
		switch {
		case m.Date.Before(windowStart):
			b, err := apply(before, m)
			if err != nil {
				return Statement{}, err
			}
			before = b
		case month.Contains(m.Date):
			inWindow = append(inWindow, m)
		}
	}

	sort.SliceStable(inWindow, func(i, j int) bool {
		if !inWindow[i].Date.Equal(inWindow[j].Date) {
			return inWindow[i].Date.Before(inWindow[j].Date)
		}
		return inWindow[i].CreatedAt.Before(inWindow[j].CreatedAt)
	})

	lines := make([]Line, 0, len(inWindow))
	running := before
	for _, m := range inWindow {
		b, err := apply(running, m)
		if err != nil {
			return Statement{}, err
		}
		running = b
		lines = append(lines, Line{Movement: m, Running: running})
	}

	return Statement{
		Month:   month,
		Opening: before,
		Lines:   lines,
		Closing: running,
	}, nil
}

// apply folds one movement into a balance. The switch is exhaustive over
// the Nature set; a new nature value must be handled here explicitly.
func apply(balance core.Money, m Movement) (core.Money, error) {
	switch m.Nature {
	case core.NatureCredit:
		return balance.Add(m.Amount), nil
	case core.NatureDebit:
		return balance.Sub(m.Amount), nil
	default:
		return core.Money{}, fmt.Errorf("ledger: movement %d has nature %q: %w", m.ID, m.Nature, core.ErrUnknownNature)
	}
}
