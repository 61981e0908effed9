package services

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/storage"
)

// MovementService handles account movement writes: validation, storage,
// cache invalidation and audit publishing.
type MovementService struct {
	storage    *storage.SQLiteRepository
	statements *StatementService
	amqpClient *amqp.Client
}

func NewMovementService(st *storage.SQLiteRepository, statements *StatementService, amqpClient *amqp.Client) *MovementService {
	return &MovementService{
		storage:    st,
		statements: statements,
		amqpClient: amqpClient,
	}
}

// CreateMovement validates and persists one movement.
func (s *MovementService) CreateMovement(ctx context.Context, m core.AccountMovement) (core.AccountMovement, error) {
	if err := m.Validate(); err != nil {
		return core.AccountMovement{}, err
	}

	created, err := s.storage.CreateAccountMovement(ctx, m)
	if err != nil {
		return core.AccountMovement{}, fmt.Errorf("create movement: %w", err)
	}

	s.invalidate(created.AccountID)
	s.publishAudit(ctx, created.UserID, "create", "account_movement", created.ID)
	return created, nil
}

// UpdateMovement rewrites a movement's mutable fields.
func (s *MovementService) UpdateMovement(ctx context.Context, m core.AccountMovement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateAccountMovement(ctx, m); err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	s.invalidate(m.AccountID)
	s.publishAudit(ctx, m.UserID, "update", "account_movement", m.ID)
	return nil
}

// DeleteMovement removes a movement.
func (s *MovementService) DeleteMovement(ctx context.Context, userID, id int64) error {
	m, err := s.storage.GetAccountMovement(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteAccountMovement(ctx, userID, id); err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	s.invalidate(m.AccountID)
	s.publishAudit(ctx, userID, "delete", "account_movement", id)
	return nil
}

func (s *MovementService) invalidate(accountID int64) {
	if s.statements != nil {
		s.statements.InvalidateAccount(accountID)
	}
}

func (s *MovementService) publishAudit(ctx context.Context, userID int64, event, entity string, entityID int64) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewAuditMessage(userID, event, entity, entityID)
	if err := s.amqpClient.PublishAudit(ctx, msg); err != nil {
		// The write already landed; a lost audit event must not fail it.
		slog.ErrorContext(ctx, "Failed to publish audit message",
			"event", event, "entity", entity, "entity_id", entityID, "error", err)
	}
}
