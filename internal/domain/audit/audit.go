// Package audit defines the append-only history sink consumed by the
// settlement and cashier services. The sink itself is an external
// collaborator; this package only carries the contract and a no-op
// implementation for wiring and tests.
package audit

import (
	"context"

	"github.com/google/uuid"
)

// Entry is one audit record: who did what to which entity
type Entry struct {
	TenantID    uuid.UUID         `json:"tenant_id"`
	ActorID     uuid.UUID         `json:"actor_id"`
	Action      string            `json:"action"`
	EntityType  string            `json:"entity_type"`
	EntityID    uuid.UUID         `json:"entity_id"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Recorder appends audit entries. Implementations must never fail the
// business operation: errors are for the caller to log, not to abort on.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NopRecorder discards audit entries
type NopRecorder struct{}

// Record implements Recorder
func (NopRecorder) Record(_ context.Context, _ Entry) error {
	return nil
}
