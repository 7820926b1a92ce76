package cashier

import (
	"strings"
	"unicode/utf8"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MinMovementReasonLen is the minimum reason length for a manual movement
const MinMovementReasonLen = 5

// MovementKind represents the direction of a manual cash movement
type MovementKind string

const (
	// MovementKindCashIn is a "suprimento": cash added to the drawer
	MovementKindCashIn MovementKind = "CASH_IN"
	// MovementKindCashOut is a "sangria": cash removed from the drawer
	MovementKindCashOut MovementKind = "CASH_OUT"
)

// IsValid checks if the movement kind is valid
func (k MovementKind) IsValid() bool {
	return k == MovementKindCashIn || k == MovementKindCashOut
}

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// Movement represents a manual cash movement (sangria/suprimento)
// against an open session. Movements are append-only.
type Movement struct {
	shared.TenantAggregateRoot
	SessionID uuid.UUID
	Kind      MovementKind
	Amount    decimal.Decimal
	Reason    string
}

// NewMovement records a manual cash movement
func NewMovement(tenantID, sessionID uuid.UUID, kind MovementKind, amount decimal.Decimal, reason string) (*Movement, error) {
	if sessionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SESSION", "Session ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_KIND", "Movement kind is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	if utf8.RuneCountInString(strings.TrimSpace(reason)) < MinMovementReasonLen {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Movement reason must be at least 5 characters")
	}

	m := &Movement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SessionID:           sessionID,
		Kind:                kind,
		Amount:              amount,
		Reason:              strings.TrimSpace(reason),
	}

	m.AddDomainEvent(NewMovementRecordedEvent(m))

	return m, nil
}

// SignedAmount returns the amount with the kind's sign applied:
// cash-in increases the drawer, cash-out decreases it
func (m *Movement) SignedAmount() decimal.Decimal {
	if m.Kind == MovementKindCashOut {
		return m.Amount.Neg()
	}
	return m.Amount
}
