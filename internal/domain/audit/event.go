// Package audit records who did what to a reconciliation. The trail is a
// side channel: it is written best-effort after each mutating operation and
// never participates in balance computation.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies a recorded operation.
type Action string

const (
	ActionOpened                  Action = "OPENED"
	ActionTickSetApplied          Action = "TICK_SET_APPLIED"
	ActionStatementBalanceChanged Action = "STATEMENT_BALANCE_CHANGED"
	ActionAdjustmentCreated       Action = "ADJUSTMENT_CREATED"
	ActionInvestigationNoteSet    Action = "INVESTIGATION_NOTE_SET"
	ActionFinalized               Action = "FINALIZED"
	ActionLocked                  Action = "LOCKED"
	ActionDeleted                 Action = "DELETED"
)

// Event is one entry in the reconciliation audit trail.
type Event struct {
	ReconciliationID uuid.UUID      `json:"reconciliation_id" bson:"reconciliation_id"`
	AccountID        uuid.UUID      `json:"account_id" bson:"account_id"`
	Action           Action         `json:"action" bson:"action"`
	Actor            string         `json:"actor,omitempty" bson:"actor,omitempty"`
	Details          map[string]any `json:"details,omitempty" bson:"details,omitempty"`
	CorrelationID    string         `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at" bson:"created_at"`
}

// NewEvent builds an audit event stamped with the current time.
func NewEvent(reconciliationID, accountID uuid.UUID, action Action, actor string, details map[string]any) *Event {
	return &Event{
		ReconciliationID: reconciliationID,
		AccountID:        accountID,
		Action:           action,
		Actor:            actor,
		Details:          details,
		CreatedAt:        time.Now().UTC(),
	}
}
