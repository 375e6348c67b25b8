// Package service ingests the external accounting system's ledger
// transaction feed into the engine's item store.
package service

import (
	"context"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
)

// IngestionService persists posted ledger transactions arriving on the feed.
type IngestionService interface {
	IngestItem(ctx context.Context, message *shared.LedgerFeedMessage) error
}
