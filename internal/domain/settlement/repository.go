package settlement

import (
	"context"

	"github.com/google/uuid"
)

// DocumentRepository defines persistence operations for documents
type DocumentRepository interface {
	Create(ctx context.Context, document *Document) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)
	Save(ctx context.Context, document *Document) error
}

// InstallmentRepository defines persistence operations for installments
type InstallmentRepository interface {
	Create(ctx context.Context, installment *Installment) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Installment, error)
	// FindByIDForTenantLocked acquires an exclusive row lock on the
	// installment. Must be called within a transaction; the lock is the
	// serialization point against concurrent settlement attempts.
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*Installment, error)
	ListByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]*Installment, error)
	// CountByStatus counts a document's installments grouped by status.
	CountByStatus(ctx context.Context, tenantID, documentID uuid.UUID) (StatusCounts, error)
	Save(ctx context.Context, installment *Installment) error
}
