package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Repositories provides access to ledger repositories within a transaction
type Repositories interface {
	Accounts() ledger.AccountRepository
	Entries() ledger.EntryRepository
}

// TransactionScope executes a function atomically against ledger repositories
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// PostInput carries the parameters of a ledger posting
type PostInput struct {
	TenantID         uuid.UUID
	AccountID        uuid.UUID
	Direction        ledger.EntryDirection
	Amount           decimal.Decimal
	Description      string
	SourceDocumentID uuid.UUID
	SourceScreen     ledger.SourceScreen
	EntryDate        time.Time
}

// PostResult is the outcome of a posting. Duplicate is true when the
// idempotency key matched an existing entry and the call was absorbed as
// a no-op; Entry then holds the pre-existing entry.
type PostResult struct {
	Entry     *ledger.Entry
	Duplicate bool
}

// PostingService is the ledger entry writer. It appends immutable
// settlement entries to accounts, enforcing at-most-once posting per
// (source document, source screen) pair, and keeps the per-entry balance
// snapshots recomputed for the affected account and day.
type PostingService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewPostingService creates a new PostingService
func NewPostingService(scope TransactionScope, logger *zap.Logger) *PostingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostingService{scope: scope, logger: logger}
}

// Post writes a ledger entry in its own transaction. Settlement flows
// that already hold a transaction call PostEntry with their own
// repositories instead, so the posting commits or rolls back together
// with the rest of the settlement.
func (s *PostingService) Post(ctx context.Context, input PostInput) (*PostResult, error) {
	var result *PostResult
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var err error
		result, err = PostEntry(ctx, repos, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Duplicate {
		s.logger.Info("duplicate ledger posting absorbed",
			zap.String("source_document_id", input.SourceDocumentID.String()),
			zap.String("source_screen", input.SourceScreen.String()),
		)
	}
	return result, nil
}

// PostEntry is the core posting routine, reusable inside any transaction
// that exposes ledger repositories.
//
// Validation happens before any write; the account row lock serializes
// concurrent postings to the same account so the snapshot recomputation
// for the entry's day cannot interleave with another writer.
func PostEntry(ctx context.Context, repos Repositories, input PostInput) (*PostResult, error) {
	if input.Amount.IsNegative() {
		return nil, shared.ErrInvalidAmount
	}
	if !input.Direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Entry direction is not valid")
	}
	if input.SourceDocumentID == uuid.Nil || !input.SourceScreen.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Source document and screen are required")
	}

	// Idempotency pre-check: a retried request must not double-post.
	existing, err := repos.Entries().FindBySource(ctx, input.TenantID, input.SourceDocumentID, input.SourceScreen)
	if err == nil {
		return &PostResult{Entry: existing, Duplicate: true}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	account, err := repos.Accounts().FindByIDForTenantLocked(ctx, input.TenantID, input.AccountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	entry, err := ledger.NewEntry(
		input.TenantID,
		account.ID,
		input.Direction,
		input.Amount,
		input.Description,
		input.SourceDocumentID,
		input.SourceScreen,
		input.EntryDate,
	)
	if err != nil {
		return nil, err
	}
	entry.SetBalanceSnapshot(account.CurrentBalance)

	if err := repos.Entries().Create(ctx, entry); err != nil {
		// A concurrent transaction won the race on the idempotency key;
		// absorb as a no-op and surface the existing entry.
		if errors.Is(err, shared.ErrAlreadyExists) {
			winner, findErr := repos.Entries().FindBySource(ctx, input.TenantID, input.SourceDocumentID, input.SourceScreen)
			if findErr != nil {
				return nil, fmt.Errorf("failed to load concurrent duplicate entry: %w", findErr)
			}
			return &PostResult{Entry: winner, Duplicate: true}, nil
		}
		return nil, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	if err := account.ApplyEntry(input.Direction, input.Amount); err != nil {
		return nil, err
	}
	if err := repos.Accounts().Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account balance: %w", err)
	}

	if err := recomputeDaySnapshots(ctx, repos, account, entry.EntryDate); err != nil {
		return nil, err
	}

	// Re-read the snapshot the day pass assigned to this entry
	fresh, err := repos.Entries().FindBySource(ctx, input.TenantID, input.SourceDocumentID, input.SourceScreen)
	if err != nil {
		return nil, fmt.Errorf("failed to reload posted entry: %w", err)
	}

	return &PostResult{Entry: fresh, Duplicate: false}, nil
}

// recomputeDaySnapshots rewrites the balance-before/after cache of every
// entry for the account on the given calendar day, in chronological
// order. The caller must hold the account row lock.
func recomputeDaySnapshots(ctx context.Context, repos Repositories, account *ledger.Account, day time.Time) error {
	entries, err := repos.Entries().ListByAccountAndDay(ctx, account.TenantID, account.ID, day)
	if err != nil {
		return fmt.Errorf("failed to list entries for snapshot recomputation: %w", err)
	}

	running, err := balanceAtStartOfDay(ctx, repos, account, day)
	if err != nil {
		return err
	}

	for _, e := range entries {
		e.SetBalanceSnapshot(running)
		if err := repos.Entries().UpdateSnapshot(ctx, e); err != nil {
			return fmt.Errorf("failed to rewrite entry snapshot: %w", err)
		}
		running = e.BalanceAfter
	}

	return nil
}

// balanceAtStartOfDay derives the account balance at the start of the
// given day from the entry log, not from any cached snapshot
func balanceAtStartOfDay(ctx context.Context, repos Repositories, account *ledger.Account, day time.Time) (decimal.Decimal, error) {
	entries, err := repos.Entries().ListByAccount(ctx, account.TenantID, account.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list account entries: %w", err)
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	balance := account.OpeningBalance
	for _, e := range entries {
		if e.EntryDate.Before(dayStart) {
			balance = balance.Add(e.SignedAmount())
		}
	}
	return balance, nil
}

// RebuildSnapshots drops and rebuilds the entire snapshot cache of an
// account from its entry log, and resets the cached current balance to
// the authoritative value: opening balance plus credits minus debits.
// It exists so the cache can always be proven re-derivable.
func (s *PostingService) RebuildSnapshots(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, error) {
	var final decimal.Decimal
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		account, err := repos.Accounts().FindByIDForTenantLocked(ctx, tenantID, accountID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrAccountNotFound
			}
			return err
		}

		entries, err := repos.Entries().ListByAccount(ctx, tenantID, accountID)
		if err != nil {
			return fmt.Errorf("failed to list account entries: %w", err)
		}

		running := account.OpeningBalance
		for _, e := range entries {
			e.SetBalanceSnapshot(running)
			if err := repos.Entries().UpdateSnapshot(ctx, e); err != nil {
				return fmt.Errorf("failed to rewrite entry snapshot: %w", err)
			}
			running = e.BalanceAfter
		}

		account.SetBalance(running)
		if err := repos.Accounts().Save(ctx, account); err != nil {
			return fmt.Errorf("failed to save rebuilt balance: %w", err)
		}

		final = running
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logger.Info("ledger snapshots rebuilt",
		zap.String("account_id", accountID.String()),
		zap.String("balance", final.String()),
	)

	return final, nil
}

// VerifyBalance recomputes the authoritative balance from entry
// aggregates and reports whether the cached balance matches it
func (s *PostingService) VerifyBalance(ctx context.Context, tenantID, accountID uuid.UUID) (bool, decimal.Decimal, error) {
	var cached, derived decimal.Decimal
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrAccountNotFound
			}
			return err
		}

		credits, err := repos.Entries().SumByDirection(ctx, tenantID, accountID, ledger.EntryDirectionCredit)
		if err != nil {
			return err
		}
		debits, err := repos.Entries().SumByDirection(ctx, tenantID, accountID, ledger.EntryDirectionDebit)
		if err != nil {
			return err
		}

		cached = account.CurrentBalance
		derived = account.BalanceFromSums(credits, debits)
		return nil
	})
	if err != nil {
		return false, decimal.Zero, err
	}
	return cached.Equal(derived), derived, nil
}
