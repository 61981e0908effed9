package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditMessage is the wire form of one audit event. EventID makes
// redelivered messages idempotent at the consumer.
type AuditMessage struct {
	EventID   string    `json:"event_id"`
	UserID    int64     `json:"user_id"`
	Event     string    `json:"event"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	At        time.Time `json:"at"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// NewAuditMessage creates a message with a fresh event ID and timestamp.
func NewAuditMessage(userID int64, event, entity string, entityID int64) *AuditMessage {
	return &AuditMessage{
		EventID:  uuid.NewString(),
		UserID:   userID,
		Event:    event,
		Entity:   entity,
		EntityID: entityID,
		At:       time.Now().UTC(),
	}
}

func (m *AuditMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AuditMessageFromJSON(data []byte) (*AuditMessage, error) {
	var msg AuditMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal audit message: %w", err)
	}
	if msg.EventID == "" {
		return nil, fmt.Errorf("audit message without event id")
	}
	return &msg, nil
}
