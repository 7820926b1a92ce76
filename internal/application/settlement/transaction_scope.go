package settlement

import (
	"context"

	ledgerapp "github.com/erp/settlement/internal/application/ledger"
	"github.com/erp/settlement/internal/domain/settlement"
)

// Repositories provides access to all repositories a settlement
// transaction touches. It embeds the ledger repositories so the entry
// posting commits or rolls back atomically with the installment and
// document updates.
type Repositories interface {
	ledgerapp.Repositories
	Documents() settlement.DocumentRepository
	Installments() settlement.InstallmentRepository
}

// TransactionScope executes a function atomically against settlement
// repositories. If the function returns an error the whole transaction
// is rolled back: a crash between the installment update and the ledger
// posting can never leave a settled installment without its entry.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}
