package cashier

import (
	"context"

	"github.com/erp/settlement/internal/domain/cashier"
)

// Repositories provides access to all repositories a cashier transaction
// touches. Cash sessions are a reconciliation ledger of their own and
// never share a transaction with the accounts-payable/receivable ledger.
type Repositories interface {
	Sessions() cashier.SessionRepository
	Sales() cashier.SaleRepository
	Movements() cashier.MovementRepository
	SuspendedSales() cashier.SuspendedSaleRepository
}

// TransactionScope executes a function atomically against cashier
// repositories.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}
