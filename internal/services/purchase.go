package services

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/schedule"
	"financas/internal/storage"
)

// PurchaseService creates and reprices installment purchase plans. The
// plan header and its installment rows always change together.
type PurchaseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	policy     schedule.RemainderPolicy
}

func NewPurchaseService(st *storage.SQLiteRepository, amqpClient *amqp.Client, policy schedule.RemainderPolicy) *PurchaseService {
	return &PurchaseService{
		storage:    st,
		amqpClient: amqpClient,
		policy:     policy,
	}
}

// CreatePlan generates the installment schedule for a plan and persists
// both atomically. The cached LastMonth and MonthlyAmount projections are
// computed here, never accepted from the caller.
func (s *PurchaseService) CreatePlan(ctx context.Context, p core.PurchasePlan) (core.PurchasePlan, error) {
	if err := p.Validate(); err != nil {
		return core.PurchasePlan{}, err
	}

	installments, err := schedule.Generate(p.Total, p.Count, p.FirstMonth, s.policy)
	if err != nil {
		return core.PurchasePlan{}, fmt.Errorf("generate schedule: %w", err)
	}
	p.LastMonth = schedule.LastMonth(p.FirstMonth, p.Count)
	if p.MonthlyAmount, err = schedule.MonthlyAmount(p.Total, p.Count); err != nil {
		return core.PurchasePlan{}, err
	}

	created, err := s.storage.CreatePurchasePlan(ctx, p, installments)
	if err != nil {
		return core.PurchasePlan{}, fmt.Errorf("create plan: %w", err)
	}

	drift, _ := schedule.Drift(p.Total, p.Count, s.policy)
	if !drift.IsZero() {
		slog.InfoContext(ctx, "Installment schedule drifts from plan total",
			"plan_id", created.ID,
			"total", p.Total.String(),
			"drift", drift.String())
	}

	s.publishAudit(ctx, created.UserID, "create", "purchase_plan", created.ID)
	return created, nil
}

// RepricePlan changes a plan's total, keeping count and due dates. All
// installment amounts are regenerated under the configured policy.
func (s *PurchaseService) RepricePlan(ctx context.Context, userID, planID int64, newTotal core.Money) (core.PurchasePlan, error) {
	if err := newTotal.Validate(); err != nil {
		return core.PurchasePlan{}, err
	}

	plan, err := s.storage.GetPurchasePlan(ctx, userID, planID)
	if err != nil {
		return core.PurchasePlan{}, err
	}

	amounts, err := schedule.Reschedule(newTotal, plan.Count, s.policy)
	if err != nil {
		return core.PurchasePlan{}, fmt.Errorf("reschedule plan %d: %w", planID, err)
	}
	monthly, err := schedule.MonthlyAmount(newTotal, plan.Count)
	if err != nil {
		return core.PurchasePlan{}, err
	}

	if err := s.storage.UpdatePurchasePlanTotal(ctx, userID, planID, newTotal, monthly, amounts); err != nil {
		return core.PurchasePlan{}, fmt.Errorf("reprice plan %d: %w", planID, err)
	}

	plan.Total = newTotal
	plan.MonthlyAmount = monthly
	s.publishAudit(ctx, userID, "reprice", "purchase_plan", planID)
	return plan, nil
}

// DeletePlan removes a plan and its installments.
func (s *PurchaseService) DeletePlan(ctx context.Context, userID, planID int64) error {
	if err := s.storage.DeletePurchasePlan(ctx, userID, planID); err != nil {
		return err
	}
	s.publishAudit(ctx, userID, "delete", "purchase_plan", planID)
	return nil
}

func (s *PurchaseService) publishAudit(ctx context.Context, userID int64, event, entity string, entityID int64) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewAuditMessage(userID, event, entity, entityID)
	if err := s.amqpClient.PublishAudit(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish audit message",
			"event", event, "entity", entity, "entity_id", entityID, "error", err)
	}
}
