// Package stock defines the stock-movement signal consumed when a sale
// reversal (or a settlement flow) requires inventory compensation. The
// stock recorder is an external collaborator: this engine only emits the
// signal, it performs no stock arithmetic.
package stock

import (
	"context"

	"github.com/google/uuid"
)

// ReversalSignal asks the stock recorder to undo the inventory effect of
// a source document
type ReversalSignal struct {
	TenantID         uuid.UUID `json:"tenant_id"`
	SourceEntityType string    `json:"source_entity_type"`
	SourceEntityID   uuid.UUID `json:"source_entity_id"`
	Reason           string    `json:"reason"`
}

// Notifier emits stock adjustment signals
type Notifier interface {
	SignalReversal(ctx context.Context, signal ReversalSignal) error
}

// NopNotifier discards stock signals
type NopNotifier struct{}

// SignalReversal implements Notifier
func (NopNotifier) SignalReversal(_ context.Context, _ ReversalSignal) error {
	return nil
}
