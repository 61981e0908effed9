package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/storage"
)

// LoanService imports loans with externally computed schedules and
// tracks installment payment state.
type LoanService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewLoanService(st *storage.SQLiteRepository, amqpClient *amqp.Client) *LoanService {
	return &LoanService{storage: st, amqpClient: amqpClient}
}

// ImportLoan validates a loan and its schedule and persists both
// atomically. The schedule must have exactly TermMonths installments
// numbered 1..N, and each row's total must equal its components.
func (s *LoanService) ImportLoan(ctx context.Context, l core.Loan, installments []core.LoanInstallment) (core.Loan, error) {
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}
	if len(installments) != l.TermMonths {
		return core.Loan{}, fmt.Errorf("%w: schedule has %d installments, term is %d months",
			core.ErrInvalidArgument, len(installments), l.TermMonths)
	}
	for i, inst := range installments {
		inst.Status = core.LoanInstallmentPending
		if err := inst.Validate(); err != nil {
			return core.Loan{}, fmt.Errorf("installment %d: %w", i+1, err)
		}
		if inst.Sequence != i+1 {
			return core.Loan{}, fmt.Errorf("%w: installment %d has sequence %d",
				core.ErrInvalidArgument, i+1, inst.Sequence)
		}
		sum := inst.Principal.Add(inst.Interest).Add(inst.Insurance).Add(inst.Fees)
		if !sum.Equal(inst.TotalDue) {
			return core.Loan{}, fmt.Errorf("%w: installment %d components sum to %s, total is %s",
				core.ErrInvalidAmount, i+1, sum, inst.TotalDue)
		}
	}

	created, err := s.storage.CreateLoan(ctx, l, installments)
	if err != nil {
		return core.Loan{}, fmt.Errorf("import loan: %w", err)
	}
	s.publishAudit(ctx, created.UserID, "create", "loan", created.ID)
	return created, nil
}

// PayInstallment records the payment of one installment.
func (s *LoanService) PayInstallment(ctx context.Context, userID, installmentID int64, paidDate time.Time, paidAmount core.Money, notes string) error {
	if err := paidAmount.Validate(); err != nil {
		return err
	}
	if paidDate.IsZero() {
		return core.ErrInvalidDate
	}

	inst, err := s.storage.GetLoanInstallment(ctx, userID, installmentID)
	if err != nil {
		return err
	}
	if inst.Status == core.LoanInstallmentPaid {
		return fmt.Errorf("%w: installment %d already paid", core.ErrInvalidArgument, installmentID)
	}

	if err := s.storage.MarkLoanInstallmentPaid(ctx, userID, installmentID, paidDate, paidAmount, notes); err != nil {
		return err
	}
	s.publishAudit(ctx, userID, "pay", "loan_installment", installmentID)
	return nil
}

// SweepOverdue flips pending installments past their due date to
// overdue. Run periodically by the overdue worker.
func (s *LoanService) SweepOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	n, err := s.storage.MarkOverdueLoanInstallments(ctx, asOf)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.InfoContext(ctx, "Marked loan installments overdue", "count", n)
	}
	return n, nil
}

func (s *LoanService) publishAudit(ctx context.Context, userID int64, event, entity string, entityID int64) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewAuditMessage(userID, event, entity, entityID)
	if err := s.amqpClient.PublishAudit(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish audit message",
			"event", event, "entity", entity, "entity_id", entityID, "error", err)
	}
}
