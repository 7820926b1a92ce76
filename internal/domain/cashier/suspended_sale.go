package cashier

import (
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
)

// SuspendedSale is a parked cart held outside the ledger: an operator
// suspends an in-progress sale, and later resumes (deletes) it. It never
// touches balances or reconciliation.
type SuspendedSale struct {
	shared.TenantAggregateRoot
	SessionID   uuid.UUID
	OperatorID  uuid.UUID
	Label       string
	CartPayload string // opaque serialized cart, stored as-is
	SuspendedAt time.Time
}

// NewSuspendedSale parks a cart against an open session
func NewSuspendedSale(tenantID, sessionID, operatorID uuid.UUID, label, cartPayload string) (*SuspendedSale, error) {
	if sessionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SESSION", "Session ID cannot be empty")
	}
	if operatorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPERATOR", "Operator ID cannot be empty")
	}
	if label == "" {
		return nil, shared.NewDomainError("INVALID_LABEL", "Suspended sale label cannot be empty")
	}
	if cartPayload == "" {
		return nil, shared.NewDomainError("INVALID_CART", "Cart payload cannot be empty")
	}

	return &SuspendedSale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SessionID:           sessionID,
		OperatorID:          operatorID,
		Label:               label,
		CartPayload:         cartPayload,
		SuspendedAt:         time.Now(),
	}, nil
}
