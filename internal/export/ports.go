// Package export defines the outbound ports for statement export.
package export

import (
	"context"

	"financas/internal/core"
	"financas/internal/ledger"
)

// StatementWriter sends a reconstructed monthly statement to an external
// destination.
type StatementWriter interface {
	// WriteStatement exports one statement and returns an opaque
	// destination reference.
	WriteStatement(ctx context.Context, account core.Account, st ledger.Statement) (ref string, err error)
}
