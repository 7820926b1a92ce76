package settlement

import (
	"context"
	"sort"
	"time"

	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memoryRepos is an in-memory Repositories implementation covering the
// settlement and ledger stores a settlement transaction touches.
type memoryRepos struct {
	accounts     map[uuid.UUID]*ledger.Account
	entries      []*ledger.Entry
	documents    map[uuid.UUID]*settlement.Document
	installments map[uuid.UUID]*settlement.Installment
}

func newMemoryRepos() *memoryRepos {
	return &memoryRepos{
		accounts:     make(map[uuid.UUID]*ledger.Account),
		documents:    make(map[uuid.UUID]*settlement.Document),
		installments: make(map[uuid.UUID]*settlement.Installment),
	}
}

func (r *memoryRepos) Accounts() ledger.AccountRepository { return (*accountStore)(r) }

func (r *memoryRepos) Entries() ledger.EntryRepository { return (*entryStore)(r) }

func (r *memoryRepos) Documents() settlement.DocumentRepository { return (*documentStore)(r) }

func (r *memoryRepos) Installments() settlement.InstallmentRepository { return (*installmentStore)(r) }

type memoryScope struct {
	repos *memoryRepos
}

func (s *memoryScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

type accountStore memoryRepos

func (s *accountStore) Create(_ context.Context, account *ledger.Account) error {
	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

func (s *accountStore) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	account, ok := s.accounts[id]
	if !ok || account.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (s *accountStore) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	return s.FindByIDForTenant(ctx, tenantID, id)
}

func (s *accountStore) Save(_ context.Context, account *ledger.Account) error {
	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

type entryStore memoryRepos

func (s *entryStore) Create(_ context.Context, entry *ledger.Entry) error {
	for _, existing := range s.entries {
		if existing.TenantID == entry.TenantID && existing.IdempotencyKey() == entry.IdempotencyKey() {
			return shared.ErrAlreadyExists
		}
	}
	cp := *entry
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *entryStore) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Entry, error) {
	for _, e := range s.entries {
		if e.TenantID == tenantID && e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *entryStore) FindBySource(_ context.Context, tenantID, sourceDocumentID uuid.UUID, sourceScreen ledger.SourceScreen) (*ledger.Entry, error) {
	for _, e := range s.entries {
		if e.TenantID == tenantID && e.SourceDocumentID == sourceDocumentID && e.SourceScreen == sourceScreen {
			cp := *e
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *entryStore) ListByAccountAndDay(_ context.Context, tenantID, accountID uuid.UUID, day time.Time) ([]*ledger.Entry, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	var result []*ledger.Entry
	for _, e := range s.entries {
		if e.TenantID == tenantID && e.AccountID == accountID &&
			!e.EntryDate.Before(dayStart) && e.EntryDate.Before(dayEnd) {
			cp := *e
			result = append(result, &cp)
		}
	}
	sortEntriesByDate(result)
	return result, nil
}

func (s *entryStore) ListByAccount(_ context.Context, tenantID, accountID uuid.UUID) ([]*ledger.Entry, error) {
	var result []*ledger.Entry
	for _, e := range s.entries {
		if e.TenantID == tenantID && e.AccountID == accountID {
			cp := *e
			result = append(result, &cp)
		}
	}
	sortEntriesByDate(result)
	return result, nil
}

func (s *entryStore) UpdateSnapshot(_ context.Context, entry *ledger.Entry) error {
	for _, e := range s.entries {
		if e.ID == entry.ID {
			e.BalanceBefore = entry.BalanceBefore
			e.BalanceAfter = entry.BalanceAfter
			return nil
		}
	}
	return shared.ErrNotFound
}

func (s *entryStore) SumByDirection(_ context.Context, tenantID, accountID uuid.UUID, direction ledger.EntryDirection) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range s.entries {
		if e.TenantID == tenantID && e.AccountID == accountID && e.Direction == direction {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func sortEntriesByDate(entries []*ledger.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].EntryDate.Equal(entries[j].EntryDate) {
			return entries[i].EntryDate.Before(entries[j].EntryDate)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

type documentStore memoryRepos

func (s *documentStore) Create(_ context.Context, document *settlement.Document) error {
	cp := *document
	s.documents[document.ID] = &cp
	return nil
}

func (s *documentStore) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*settlement.Document, error) {
	doc, ok := s.documents[id]
	if !ok || doc.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *documentStore) Save(_ context.Context, document *settlement.Document) error {
	cp := *document
	s.documents[document.ID] = &cp
	return nil
}

type installmentStore memoryRepos

func (s *installmentStore) Create(_ context.Context, installment *settlement.Installment) error {
	cp := *installment
	s.installments[installment.ID] = &cp
	return nil
}

func (s *installmentStore) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*settlement.Installment, error) {
	inst, ok := s.installments[id]
	if !ok || inst.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *inst
	return &cp, nil
}

func (s *installmentStore) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Installment, error) {
	return s.FindByIDForTenant(ctx, tenantID, id)
}

func (s *installmentStore) ListByDocument(_ context.Context, tenantID, documentID uuid.UUID) ([]*settlement.Installment, error) {
	var result []*settlement.Installment
	for _, inst := range s.installments {
		if inst.TenantID == tenantID && inst.DocumentID == documentID {
			cp := *inst
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Sequence < result[j].Sequence })
	return result, nil
}

func (s *installmentStore) CountByStatus(_ context.Context, tenantID, documentID uuid.UUID) (settlement.StatusCounts, error) {
	var counts settlement.StatusCounts
	for _, inst := range s.installments {
		if inst.TenantID != tenantID || inst.DocumentID != documentID {
			continue
		}
		if inst.IsSettled() {
			counts.Settled++
		} else {
			counts.Pending++
		}
	}
	return counts, nil
}

func (s *installmentStore) Save(_ context.Context, installment *settlement.Installment) error {
	cp := *installment
	s.installments[installment.ID] = &cp
	return nil
}
