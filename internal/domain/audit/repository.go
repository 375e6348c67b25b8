package audit

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages audit trail persistence with pagination support.
type Repository interface {
	Create(ctx context.Context, event *Event) error
	ListByReconciliation(ctx context.Context, reconciliationID uuid.UUID, limit, offset int) ([]*Event, error)
	CountByReconciliation(ctx context.Context, reconciliationID uuid.UUID) (int64, error)
}
