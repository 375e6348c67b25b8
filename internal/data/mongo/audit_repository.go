// Package mongo stores the reconciliation audit trail. The trail is
// best-effort: writes happen outside the PostgreSQL transaction and a failed
// insert never rolls back the state change it describes.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bank-reconciliation-engine/internal/domain/audit"
)

const (
	// AuditCollectionName is the name of the audit trail collection in MongoDB
	AuditCollectionName = "reconciliation_audit"
)

// AuditRepository implements the audit.Repository interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) audit.Repository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new audit event
func (r *AuditRepository) Create(ctx context.Context, event *audit.Event) error {
	collection := r.db.Collection(AuditCollectionName)

	_, err := collection.InsertOne(ctx, event)
	if err != nil {
		r.logger.Error("Failed to create audit event",
			"reconciliation_id", event.ReconciliationID.String(),
			"action", string(event.Action),
			"error", err)
		return fmt.Errorf("failed to create audit event: %w", err)
	}

	return nil
}

// ListByReconciliation retrieves paginated audit events for a reconciliation.
// Results are sorted by occurrence time in descending order (newest first).
func (r *AuditRepository) ListByReconciliation(ctx context.Context, reconciliationID uuid.UUID, limit, offset int) ([]*audit.Event, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"reconciliation_id": reconciliationID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get audit events",
			"reconciliation_id", reconciliationID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*audit.Event
	if err := cursor.All(ctx, &events); err != nil {
		r.logger.Error("Failed to decode audit events",
			"reconciliation_id", reconciliationID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode audit events: %w", err)
	}

	return events, nil
}

// CountByReconciliation counts the audit events for a reconciliation
func (r *AuditRepository) CountByReconciliation(ctx context.Context, reconciliationID uuid.UUID) (int64, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"reconciliation_id": reconciliationID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count audit events",
			"reconciliation_id", reconciliationID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}

	return count, nil
}
