package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType identifies a reconciliation lifecycle event.
type EventType string

const (
	EventReconciliationFinalized EventType = "RECONCILIATION_FINALIZED"
	EventReconciliationLocked    EventType = "RECONCILIATION_LOCKED"
	EventReconciliationDeleted   EventType = "RECONCILIATION_DELETED"
)

// ReconciliationEvent is published to the reconciliation events topic when a
// reconciliation is finalized, locked or deleted. Downstream consumers
// (reporting, the general ledger) react to these without polling the engine.
type ReconciliationEvent struct {
	EventType         EventType       `json:"event_type"`
	ReconciliationID  uuid.UUID       `json:"reconciliation_id"`
	AccountID         uuid.UUID       `json:"account_id"`
	Period            string          `json:"period"`
	ReconciledBalance decimal.Decimal `json:"reconciled_balance"`
	Difference        decimal.Decimal `json:"difference"`
	Actor             string          `json:"actor,omitempty"`
	CorrelationID     string          `json:"correlation_id,omitempty"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// OutboxStatus defines outbox message publishing states.
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
