// Package audit emits badge lifecycle notifications for off-system auditing.
// Notifications are observational only: program logic never depends on them,
// and emit failures do not fail the operation that produced them.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tier-badge/internal/logging"
)

// Event actions
const (
	ActionBadgeIssued  = "badge_issued"
	ActionBadgeRevoked = "badge_revoked"
)

// Event describes one badge lifecycle occurrence
type Event struct {
	ID              string    `json:"id"`
	Action          string    `json:"action"`
	Owner           string    `json:"owner"`
	Tier            uint8     `json:"tier,omitempty"`
	TierLowerBound  uint64    `json:"tierLowerBound,omitempty"`
	TierUpperBound  uint64    `json:"tierUpperBound,omitempty"`
	DepositReturned uint64    `json:"depositReturned,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// NewEvent creates an event with a fresh ID and timestamp
func NewEvent(action, owner string) Event {
	return Event{
		ID:         uuid.New().String(),
		Action:     action,
		Owner:      owner,
		OccurredAt: time.Now().UTC(),
	}
}

// Emitter delivers audit events to one destination
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// LogEmitter writes audit events to the structured log
type LogEmitter struct {
	logger *logging.Logger
}

// NewLogEmitter creates a log-backed emitter
func NewLogEmitter(logger *logging.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

// Emit logs the event
func (e *LogEmitter) Emit(_ context.Context, event Event) error {
	e.logger.WithFields(map[string]interface{}{
		"event_id":         event.ID,
		"action":           event.Action,
		"owner":            event.Owner,
		"tier":             event.Tier,
		"tier_lower_bound": event.TierLowerBound,
		"tier_upper_bound": event.TierUpperBound,
	}).Info("audit event")
	return nil
}

// MultiEmitter fans an event out to several destinations. Delivery is best
// effort per destination; the first error is returned after all emitters ran.
type MultiEmitter struct {
	emitters []Emitter
}

// NewMultiEmitter combines emitters
func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

// Emit delivers the event to every destination
func (m *MultiEmitter) Emit(ctx context.Context, event Event) error {
	var firstErr error
	for _, emitter := range m.emitters {
		if err := emitter.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
