package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines persistence operations for accounts
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	// FindByIDForTenantLocked acquires an exclusive row lock on the account.
	// Must be called within a transaction; the lock serializes concurrent
	// snapshot recomputation for the account.
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	Save(ctx context.Context, account *Account) error
}

// EntryRepository defines persistence operations for ledger entries
type EntryRepository interface {
	Create(ctx context.Context, entry *Entry) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Entry, error)
	// FindBySource looks up an entry by its idempotency key.
	// Returns shared.ErrNotFound when no entry exists for the pair.
	FindBySource(ctx context.Context, tenantID, sourceDocumentID uuid.UUID, sourceScreen SourceScreen) (*Entry, error)
	// ListByAccountAndDay returns all entries for the account whose entry
	// date falls on the given calendar day, in chronological order
	// (entry_date, then created_at).
	ListByAccountAndDay(ctx context.Context, tenantID, accountID uuid.UUID, day time.Time) ([]*Entry, error)
	// ListByAccount returns all entries for the account in chronological order.
	ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]*Entry, error)
	// UpdateSnapshot rewrites the balance-before/after cache of an entry.
	// This is the only permitted mutation of a posted entry.
	UpdateSnapshot(ctx context.Context, entry *Entry) error
	// SumByDirection aggregates entry amounts for the account by direction.
	SumByDirection(ctx context.Context, tenantID, accountID uuid.UUID, direction EntryDirection) (decimal.Decimal, error)
}
