package ledger

import (
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies a financial account
type AccountType string

const (
	AccountTypeBank     AccountType = "BANK"
	AccountTypeCashbox  AccountType = "CASHBOX"
	AccountTypeInternal AccountType = "INTERNAL"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCashbox, AccountTypeInternal:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// Account represents a financial account aggregate root.
//
// CurrentBalance is a derived cache, not the source of truth: the
// authoritative balance is OpeningBalance plus the sum of credits minus
// the sum of debits over the account's ledger entries. The cache is
// rebuildable at any time from the entry log.
type Account struct {
	shared.TenantAggregateRoot
	Code           string
	Name           string
	Type           AccountType
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Active         bool
}

// NewAccount creates a new financial account
func NewAccount(tenantID uuid.UUID, code, name string, accountType AccountType, openingBalance decimal.Decimal) (*Account, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type is not valid")
	}

	a := &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Type:                accountType,
		OpeningBalance:      openingBalance,
		CurrentBalance:      openingBalance,
		Active:              true,
	}

	a.AddDomainEvent(NewAccountCreatedEvent(a))

	return a, nil
}

// ApplyEntry adjusts the cached balance for a newly posted entry
func (a *Account) ApplyEntry(direction EntryDirection, amount decimal.Decimal) error {
	if !direction.IsValid() {
		return shared.NewDomainError("INVALID_DIRECTION", "Entry direction is not valid")
	}
	if amount.IsNegative() {
		return shared.ErrInvalidAmount
	}

	a.CurrentBalance = a.CurrentBalance.Add(direction.SignedAmount(amount))
	a.Touch()
	a.IncrementVersion()

	return nil
}

// SetBalance overwrites the cached balance, used by the snapshot rebuild
// pass after recomputing from the entry log
func (a *Account) SetBalance(balance decimal.Decimal) {
	a.CurrentBalance = balance
	a.Touch()
	a.IncrementVersion()
}

// BalanceFromSums derives the authoritative balance from entry aggregates
func (a *Account) BalanceFromSums(credits, debits decimal.Decimal) decimal.Decimal {
	return a.OpeningBalance.Add(credits).Sub(debits)
}
