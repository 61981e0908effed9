// Package services orchestrates domain logic across storage, the audit
// queue and the statement export adapters.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/export"
	"financas/internal/ledger"
	"financas/internal/storage"
)

// StatementService reconstructs account statements and credit-line
// monthly views. Statements are memoized per account and month; any
// write that touches an account must invalidate its keys.
type StatementService struct {
	storage *storage.SQLiteRepository
	cache   cache.Cache[ledger.Statement]
	writer  export.StatementWriter
}

// NewStatementService creates the service. cache and writer may be nil;
// a nil writer disables export.
func NewStatementService(st *storage.SQLiteRepository, c cache.Cache[ledger.Statement], w export.StatementWriter) *StatementService {
	return &StatementService{storage: st, cache: c, writer: w}
}

func statementKey(accountID int64, month core.Month) string {
	return fmt.Sprintf("acct:%d:%s", accountID, month)
}

// AccountStatement replays the full movement history of one account and
// returns the statement for month.
func (s *StatementService) AccountStatement(ctx context.Context, userID, accountID int64, month core.Month) (ledger.Statement, error) {
	key := statementKey(accountID, month)
	if s.cache != nil {
		if st, ok := s.cache.Get(key); ok {
			// Ownership still has to hold even on a cache hit.
			if _, err := s.storage.GetAccount(ctx, userID, accountID); err != nil {
				return ledger.Statement{}, err
			}
			return st, nil
		}
	}

	account, err := s.storage.GetAccount(ctx, userID, accountID)
	if err != nil {
		return ledger.Statement{}, err
	}
	movements, err := s.storage.ListLedgerMovements(ctx, userID, accountID)
	if err != nil {
		return ledger.Statement{}, err
	}

	st, err := ledger.Replay(account.OpeningBalance, movements, month)
	if err != nil {
		return ledger.Statement{}, fmt.Errorf("replay account %d: %w", accountID, err)
	}

	if s.cache != nil {
		s.cache.Set(key, st)
	}
	return st, nil
}

// ExportStatement replays a statement and writes it to the configured
// destination.
func (s *StatementService) ExportStatement(ctx context.Context, userID, accountID int64, month core.Month) (string, error) {
	if s.writer == nil {
		return "", fmt.Errorf("statement export not configured")
	}
	account, err := s.storage.GetAccount(ctx, userID, accountID)
	if err != nil {
		return "", err
	}
	st, err := s.AccountStatement(ctx, userID, accountID, month)
	if err != nil {
		return "", err
	}
	ref, err := s.writer.WriteStatement(ctx, account, st)
	if err != nil {
		return "", fmt.Errorf("export statement: %w", err)
	}
	slog.InfoContext(ctx, "Statement exported",
		"account_id", accountID,
		"month", month.String(),
		"ref", ref)
	return ref, nil
}

// CreditLineMonth is the monthly view of installments due on the user's
// credit lines.
type CreditLineMonth struct {
	Month        core.Month
	CreditLineID int64
	Installments []ledger.DueInstallment
	Total        core.Money
}

// CreditLineStatement aggregates the installments due in month.
// creditLineID filters to one line; ledger.AllCreditLines selects all.
func (s *StatementService) CreditLineStatement(ctx context.Context, userID int64, month core.Month, creditLineID int64) (CreditLineMonth, error) {
	if creditLineID != ledger.AllCreditLines {
		if _, err := s.storage.GetCreditLine(ctx, userID, creditLineID); err != nil {
			return CreditLineMonth{}, err
		}
	}

	items, err := s.storage.ListDueInstallments(ctx, userID)
	if err != nil {
		return CreditLineMonth{}, err
	}

	due, total := ledger.AggregateInstallments(items, month, creditLineID)
	return CreditLineMonth{
		Month:        month,
		CreditLineID: creditLineID,
		Installments: due,
		Total:        total,
	}, nil
}

// InvalidateTransactionType drops the cached statements of every
// account with movements of the given type. A nature change flips the
// sign of those movements on replay, so the cached months are wrong.
func (s *StatementService) InvalidateTransactionType(ctx context.Context, userID, typeID int64) {
	accountIDs, err := s.storage.ListAccountIDsWithTransactionType(ctx, userID, typeID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to resolve accounts for cache invalidation",
			"transaction_type_id", typeID, "error", err)
		return
	}
	for _, id := range accountIDs {
		s.InvalidateAccount(id)
	}
}

// InvalidateAccount drops every cached statement of one account. Call
// after any write that can change its balances.
func (s *StatementService) InvalidateAccount(accountID int64) {
	type prefixDeleter interface {
		DeletePrefix(prefix string) int
	}
	if pd, ok := s.cache.(prefixDeleter); ok {
		pd.DeletePrefix(fmt.Sprintf("acct:%d:", accountID))
	}
}
