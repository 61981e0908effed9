// Package worker holds the background processes: the audit consumer
// that drains the queue into the audit trail, and the overdue sweeper.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/storage"
)

// AuditWorker consumes audit messages and persists them. Insertion is
// idempotent on event ID, so redelivered messages are harmless.
type AuditWorker struct {
	storage *storage.SQLiteRepository
	client  *amqp.Client
}

func NewAuditWorker(storage *storage.SQLiteRepository, client *amqp.Client) *AuditWorker {
	return &AuditWorker{storage: storage, client: client}
}

// Run consumes until ctx is cancelled.
func (w *AuditWorker) Run(ctx context.Context) error {
	return w.client.ConsumeAudit(ctx, func(msg *amqp.AuditMessage) error {
		return w.HandleMessage(ctx, msg)
	})
}

// HandleMessage persists one audit event.
func (w *AuditWorker) HandleMessage(ctx context.Context, msg *amqp.AuditMessage) error {
	event := core.AuditEvent{
		EventID:   msg.EventID,
		UserID:    msg.UserID,
		Event:     msg.Event,
		Entity:    msg.Entity,
		EntityID:  msg.EntityID,
		At:        msg.At,
		ClientIP:  msg.ClientIP,
		UserAgent: msg.UserAgent,
	}
	if err := w.storage.InsertAuditEvent(ctx, event); err != nil {
		return fmt.Errorf("persist audit event %s: %w", msg.EventID, err)
	}
	slog.InfoContext(ctx, "Audit event persisted",
		"event_id", msg.EventID,
		"event", msg.Event,
		"entity", msg.Entity)
	return nil
}
