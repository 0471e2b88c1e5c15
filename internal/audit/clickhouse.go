package audit

import (
	"context"
	"fmt"

	"github.com/tier-badge/internal/storage"
)

// ClickHouseEmitter appends audit events to the audit_events table for
// long-term retention and analytical queries.
type ClickHouseEmitter struct {
	db *storage.ClickHouseDB
}

// NewClickHouseEmitter creates a ClickHouse-backed emitter
func NewClickHouseEmitter(db *storage.ClickHouseDB) *ClickHouseEmitter {
	return &ClickHouseEmitter{db: db}
}

// Emit inserts the event
func (e *ClickHouseEmitter) Emit(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events
			(id, action, owner, tier, tier_lower_bound, tier_upper_bound, deposit_returned, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	err := e.db.Exec(ctx, query,
		event.ID,
		event.Action,
		event.Owner,
		event.Tier,
		event.TierLowerBound,
		event.TierUpperBound,
		event.DepositReturned,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}
