// Package memory is an in-process statement writer used in tests and
// when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"financas/internal/core"
	"financas/internal/export"
	"financas/internal/ledger"
)

type Store struct {
	mu    sync.Mutex
	items []Exported
}

// Exported is one captured statement.
type Exported struct {
	AccountID int64
	Statement ledger.Statement
}

var _ export.StatementWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// WriteStatement stores the statement and returns a synthetic reference.
func (s *Store) WriteStatement(_ context.Context, account core.Account, st ledger.Statement) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, Exported{AccountID: account.ID, Statement: st})
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// All returns a copy of everything written so far.
func (s *Store) All() []Exported {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Exported(nil), s.items...)
}
