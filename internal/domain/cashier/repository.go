package cashier

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionRepository defines persistence operations for cash sessions
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Session, error)
	// FindByIDForTenantLocked acquires an exclusive row lock on the
	// session. Must be called within a transaction; the lock is the
	// serialization point for close and movement recording.
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*Session, error)
	// FindOpenByOperatorAndRegister returns the open session for an
	// operator/register pair, or shared.ErrNotFound.
	FindOpenByOperatorAndRegister(ctx context.Context, tenantID, operatorID uuid.UUID, registerCode string) (*Session, error)
	Save(ctx context.Context, session *Session) error
}

// SaleRepository defines persistence operations for sales
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	// FindByIDForTenantLocked acquires an exclusive row lock on the sale
	// for the cancellation path.
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	ListBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*Sale, error)
	// SumCompletedBySession aggregates completed sale totals for a session.
	SumCompletedBySession(ctx context.Context, tenantID, sessionID uuid.UUID) (decimal.Decimal, error)
	// SumCompletedByPaymentMethod aggregates completed sale totals for a
	// session grouped by payment method.
	SumCompletedByPaymentMethod(ctx context.Context, tenantID, sessionID uuid.UUID) (PaymentBreakdown, error)
	Save(ctx context.Context, sale *Sale) error
}

// MovementRepository defines persistence operations for cash movements
type MovementRepository interface {
	Create(ctx context.Context, movement *Movement) error
	ListBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*Movement, error)
	// SumBySessionAndKind aggregates movement amounts for a session by kind.
	SumBySessionAndKind(ctx context.Context, tenantID, sessionID uuid.UUID, kind MovementKind) (decimal.Decimal, error)
}

// SuspendedSaleRepository defines persistence operations for parked carts
type SuspendedSaleRepository interface {
	Create(ctx context.Context, suspended *SuspendedSale) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SuspendedSale, error)
	ListBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*SuspendedSale, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
