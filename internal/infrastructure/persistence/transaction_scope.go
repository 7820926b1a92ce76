package persistence

import (
	"context"

	appcashier "github.com/erp/settlement/internal/application/cashier"
	appledger "github.com/erp/settlement/internal/application/ledger"
	appsettlement "github.com/erp/settlement/internal/application/settlement"
	"github.com/erp/settlement/internal/domain/cashier"
	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/erp/settlement/internal/domain/settlement"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope implements the ledger TransactionScope
// using GORM transactions
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

// gormLedgerRepositories provides ledger repositories scoped to one transaction
type gormLedgerRepositories struct {
	tx *gorm.DB
}

// Accounts returns the account repository scoped to the current transaction
func (r *gormLedgerRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// Entries returns the entry repository scoped to the current transaction
func (r *gormLedgerRepositories) Entries() ledger.EntryRepository {
	return NewGormEntryRepository(r.tx)
}

// Ensure interfaces are implemented
var (
	_ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)
	_ appledger.Repositories     = (*gormLedgerRepositories)(nil)
)

// GormSettlementTransactionScope implements the settlement
// TransactionScope using GORM transactions. The repositories it yields
// include the ledger repositories, so installment settlement and entry
// posting share one transaction.
type GormSettlementTransactionScope struct {
	db *gorm.DB
}

// NewGormSettlementTransactionScope creates a new GormSettlementTransactionScope
func NewGormSettlementTransactionScope(db *gorm.DB) *GormSettlementTransactionScope {
	return &GormSettlementTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormSettlementTransactionScope) Execute(ctx context.Context, fn func(repos appsettlement.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormSettlementRepositories{gormLedgerRepositories{tx: tx}})
	})
}

// gormSettlementRepositories provides settlement plus ledger
// repositories scoped to one transaction
type gormSettlementRepositories struct {
	gormLedgerRepositories
}

// Documents returns the document repository scoped to the current transaction
func (r *gormSettlementRepositories) Documents() settlement.DocumentRepository {
	return NewGormDocumentRepository(r.tx)
}

// Installments returns the installment repository scoped to the current transaction
func (r *gormSettlementRepositories) Installments() settlement.InstallmentRepository {
	return NewGormInstallmentRepository(r.tx)
}

// Ensure interfaces are implemented
var (
	_ appsettlement.TransactionScope = (*GormSettlementTransactionScope)(nil)
	_ appsettlement.Repositories     = (*gormSettlementRepositories)(nil)
)

// GormCashierTransactionScope implements the cashier TransactionScope
// using GORM transactions
type GormCashierTransactionScope struct {
	db *gorm.DB
}

// NewGormCashierTransactionScope creates a new GormCashierTransactionScope
func NewGormCashierTransactionScope(db *gorm.DB) *GormCashierTransactionScope {
	return &GormCashierTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormCashierTransactionScope) Execute(ctx context.Context, fn func(repos appcashier.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCashierRepositories{tx: tx})
	})
}

// gormCashierRepositories provides cashier repositories scoped to one transaction
type gormCashierRepositories struct {
	tx *gorm.DB
}

// Sessions returns the session repository scoped to the current transaction
func (r *gormCashierRepositories) Sessions() cashier.SessionRepository {
	return NewGormSessionRepository(r.tx)
}

// Sales returns the sale repository scoped to the current transaction
func (r *gormCashierRepositories) Sales() cashier.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// Movements returns the movement repository scoped to the current transaction
func (r *gormCashierRepositories) Movements() cashier.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// SuspendedSales returns the suspended sale repository scoped to the current transaction
func (r *gormCashierRepositories) SuspendedSales() cashier.SuspendedSaleRepository {
	return NewGormSuspendedSaleRepository(r.tx)
}

// Ensure interfaces are implemented
var (
	_ appcashier.TransactionScope = (*GormCashierTransactionScope)(nil)
	_ appcashier.Repositories     = (*gormCashierRepositories)(nil)
)
