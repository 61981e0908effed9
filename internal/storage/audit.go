package storage

import (
	"context"
	"fmt"

	"financas/internal/core"
)

// InsertAuditEvent appends one event to the audit trail. Duplicate event
// IDs are ignored so queue redeliveries stay idempotent.
func (r *SQLiteRepository) InsertAuditEvent(ctx context.Context, e core.AuditEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_id, user_id, event, entity, entity_id,
			at, client_ip, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING`,
		e.EventID, e.UserID, e.Event, e.Entity, e.EntityID,
		encodeTimestamp(e.At), e.ClientIP, e.UserAgent)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns the newest events for one user, capped at
// limit.
func (r *SQLiteRepository) ListAuditEvents(ctx context.Context, userID int64, limit int) ([]core.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, user_id, event, entity, entity_id, at,
			client_ip, user_agent
		FROM audit_log WHERE user_id = ?
		ORDER BY at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []core.AuditEvent
	for rows.Next() {
		var (
			e  core.AuditEvent
			at string
		)
		if err := rows.Scan(&e.ID, &e.EventID, &e.UserID, &e.Event,
			&e.Entity, &e.EntityID, &at, &e.ClientIP, &e.UserAgent); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if e.At, err = decodeTimestamp(at); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
