package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memoryRepos is an in-memory Repositories implementation backing the
// service tests. Entries enforce the same unique idempotency key the
// database does.
type memoryRepos struct {
	accounts *memoryAccountRepo
	entries  *memoryEntryRepo
}

func newMemoryRepos() *memoryRepos {
	return &memoryRepos{
		accounts: &memoryAccountRepo{byID: make(map[uuid.UUID]*ledger.Account)},
		entries:  &memoryEntryRepo{},
	}
}

func (r *memoryRepos) Accounts() ledger.AccountRepository { return r.accounts }

func (r *memoryRepos) Entries() ledger.EntryRepository { return r.entries }

// memoryScope runs the function directly against the shared repos.
// Rollback semantics are not simulated; tests assert on happy paths and
// on errors surfaced before any write.
type memoryScope struct {
	repos *memoryRepos
}

func (s *memoryScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

type memoryAccountRepo struct {
	byID map[uuid.UUID]*ledger.Account
}

func (r *memoryAccountRepo) Create(_ context.Context, account *ledger.Account) error {
	for _, existing := range r.byID {
		if existing.TenantID == account.TenantID && existing.Code == account.Code {
			return shared.ErrAlreadyExists
		}
	}
	cp := *account
	r.byID[account.ID] = &cp
	return nil
}

func (r *memoryAccountRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	account, ok := r.byID[id]
	if !ok || account.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (r *memoryAccountRepo) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r *memoryAccountRepo) Save(_ context.Context, account *ledger.Account) error {
	if _, ok := r.byID[account.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := *account
	r.byID[account.ID] = &cp
	return nil
}

type memoryEntryRepo struct {
	entries []*ledger.Entry
}

func (r *memoryEntryRepo) Create(_ context.Context, entry *ledger.Entry) error {
	for _, existing := range r.entries {
		if existing.TenantID == entry.TenantID && existing.IdempotencyKey() == entry.IdempotencyKey() {
			return shared.ErrAlreadyExists
		}
	}
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memoryEntryRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Entry, error) {
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryEntryRepo) FindBySource(_ context.Context, tenantID, sourceDocumentID uuid.UUID, sourceScreen ledger.SourceScreen) (*ledger.Entry, error) {
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.SourceDocumentID == sourceDocumentID && e.SourceScreen == sourceScreen {
			cp := *e
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryEntryRepo) ListByAccountAndDay(_ context.Context, tenantID, accountID uuid.UUID, day time.Time) ([]*ledger.Entry, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var result []*ledger.Entry
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.AccountID == accountID &&
			!e.EntryDate.Before(dayStart) && e.EntryDate.Before(dayEnd) {
			cp := *e
			result = append(result, &cp)
		}
	}
	sortEntries(result)
	return result, nil
}

func (r *memoryEntryRepo) ListByAccount(_ context.Context, tenantID, accountID uuid.UUID) ([]*ledger.Entry, error) {
	var result []*ledger.Entry
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.AccountID == accountID {
			cp := *e
			result = append(result, &cp)
		}
	}
	sortEntries(result)
	return result, nil
}

func (r *memoryEntryRepo) UpdateSnapshot(_ context.Context, entry *ledger.Entry) error {
	for _, e := range r.entries {
		if e.ID == entry.ID {
			e.BalanceBefore = entry.BalanceBefore
			e.BalanceAfter = entry.BalanceAfter
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memoryEntryRepo) SumByDirection(_ context.Context, tenantID, accountID uuid.UUID, direction ledger.EntryDirection) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.AccountID == accountID && e.Direction == direction {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func sortEntries(entries []*ledger.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].EntryDate.Equal(entries[j].EntryDate) {
			return entries[i].EntryDate.Before(entries[j].EntryDate)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
