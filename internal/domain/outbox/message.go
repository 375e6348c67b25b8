// Package outbox implements the transactional-outbox record used to publish
// reconciliation lifecycle events reliably: the message is written in the
// same database transaction as the state change, and a poller relays it to
// Kafka afterwards.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
)

// Message is a pending reconciliation event awaiting publication.
type Message struct {
	ID               int64               `json:"id"`
	ReconciliationID uuid.UUID           `json:"reconciliation_id"`
	AccountID        uuid.UUID           `json:"account_id"`
	Payload          json.RawMessage     `json:"payload"`
	Status           shared.OutboxStatus `json:"status"`
	Attempts         int                 `json:"attempts"`
	CreatedAt        time.Time           `json:"created_at"`
	LastAttemptAt    *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a reconciliation event for the outbox.
func NewMessage(event *shared.ReconciliationEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		ReconciliationID: event.ReconciliationID,
		AccountID:        event.AccountID,
		Payload:          payload,
		Status:           shared.OutboxStatusPending,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// Event decodes the wrapped reconciliation event.
func (m *Message) Event() (*shared.ReconciliationEvent, error) {
	var event shared.ReconciliationEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
