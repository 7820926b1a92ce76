package ledger

import (
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryDirection represents the direction of a ledger entry
type EntryDirection string

const (
	EntryDirectionDebit  EntryDirection = "DEBIT"
	EntryDirectionCredit EntryDirection = "CREDIT"
)

// IsValid checks if the direction is valid
func (d EntryDirection) IsValid() bool {
	return d == EntryDirectionDebit || d == EntryDirectionCredit
}

// String returns the string representation of EntryDirection
func (d EntryDirection) String() string {
	return string(d)
}

// SignedAmount applies the direction's sign to a positive amount:
// credits increase an account balance, debits decrease it
func (d EntryDirection) SignedAmount(amount decimal.Decimal) decimal.Decimal {
	if d == EntryDirectionDebit {
		return amount.Neg()
	}
	return amount
}

// SourceScreen tags which settlement flow created a ledger entry.
// Together with the source document ID it forms the idempotency key
// that suppresses duplicate postings from retried requests.
type SourceScreen string

const (
	SourceScreenPayableInstallment    SourceScreen = "payable-installment"
	SourceScreenReceivableInstallment SourceScreen = "receivable-installment"
	SourceScreenManualAdjustment      SourceScreen = "manual-adjustment"
)

// IsValid checks if the source screen is valid
func (s SourceScreen) IsValid() bool {
	switch s {
	case SourceScreenPayableInstallment, SourceScreenReceivableInstallment, SourceScreenManualAdjustment:
		return true
	}
	return false
}

// String returns the string representation of SourceScreen
func (s SourceScreen) String() string {
	return string(s)
}

// Entry represents an immutable ledger entry posted against an account.
// Once created, entries are never modified except for the
// BalanceBefore/BalanceAfter snapshot columns, which are a materialized
// cache rewritten by the per-day recomputation pass.
type Entry struct {
	shared.BaseEntity
	TenantID         uuid.UUID
	AccountID        uuid.UUID
	Direction        EntryDirection
	Amount           decimal.Decimal // always positive, sign carried by Direction
	Description      string
	SourceDocumentID uuid.UUID
	SourceScreen     SourceScreen
	BalanceBefore    decimal.Decimal
	BalanceAfter     decimal.Decimal
	EntryDate        time.Time
}

// NewEntry creates a new ledger entry
func NewEntry(
	tenantID uuid.UUID,
	accountID uuid.UUID,
	direction EntryDirection,
	amount decimal.Decimal,
	description string,
	sourceDocumentID uuid.UUID,
	sourceScreen SourceScreen,
	entryDate time.Time,
) (*Entry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if accountID == uuid.Nil {
		return nil, shared.ErrAccountNotFound
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Entry direction is not valid")
	}
	if amount.IsNegative() {
		return nil, shared.ErrInvalidAmount
	}
	if sourceDocumentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE_DOCUMENT", "Source document ID cannot be empty")
	}
	if !sourceScreen.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_SCREEN", "Source screen is not valid")
	}
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	return &Entry{
		BaseEntity:       shared.NewBaseEntity(),
		TenantID:         tenantID,
		AccountID:        accountID,
		Direction:        direction,
		Amount:           amount,
		Description:      description,
		SourceDocumentID: sourceDocumentID,
		SourceScreen:     sourceScreen,
		EntryDate:        entryDate,
	}, nil
}

// SetBalanceSnapshot records the balance before/after cache for the entry
func (e *Entry) SetBalanceSnapshot(before decimal.Decimal) {
	e.BalanceBefore = before
	e.BalanceAfter = before.Add(e.SignedAmount())
}

// SignedAmount returns the amount with the direction's sign applied
func (e *Entry) SignedAmount() decimal.Decimal {
	return e.Direction.SignedAmount(e.Amount)
}

// IdempotencyKey returns the (source document, source screen) pair as a
// single comparable value
func (e *Entry) IdempotencyKey() string {
	return e.SourceDocumentID.String() + "/" + string(e.SourceScreen)
}
