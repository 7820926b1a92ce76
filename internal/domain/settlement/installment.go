package settlement

import (
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the settlement status of an installment
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING"
	InstallmentStatusSettled InstallmentStatus = "SETTLED"
)

// IsValid checks if the status is valid
func (s InstallmentStatus) IsValid() bool {
	return s == InstallmentStatusPending || s == InstallmentStatusSettled
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// AmountSource names which fallback step produced a settlement amount
type AmountSource string

const (
	AmountSourceOverride  AmountSource = "OVERRIDE"
	AmountSourceTotal     AmountSource = "TOTAL"
	AmountSourcePrincipal AmountSource = "PRINCIPAL"
)

// DateSource names which fallback step produced a settlement date
type DateSource string

const (
	DateSourceCompensation DateSource = "COMPENSATION_DATE"
	DateSourceCaller       DateSource = "CALLER"
	DateSourceNow          DateSource = "NOW"
)

// Installment represents one scheduled portion of a document's total,
// with its own due date and settlement status. The only transition is
// PENDING -> SETTLED and it is one-way.
type Installment struct {
	shared.TenantAggregateRoot
	DocumentID      uuid.UUID
	Sequence        int
	DueDate         time.Time
	PrincipalAmount decimal.Decimal
	// TotalAmount is principal plus accrued charges; nil when no charges
	// have been assessed
	TotalAmount *decimal.Decimal
	// CompensationDate is a pre-recorded settlement date (e.g. a cheque's
	// clearing date); when present it wins over any caller-supplied date
	CompensationDate    *time.Time
	Status              InstallmentStatus
	SettledAt           *time.Time
	SettlementAccountID *uuid.UUID
}

// NewInstallment creates a new pending installment
func NewInstallment(
	tenantID uuid.UUID,
	documentID uuid.UUID,
	sequence int,
	dueDate time.Time,
	principalAmount decimal.Decimal,
) (*Installment, error) {
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document ID cannot be empty")
	}
	if sequence <= 0 {
		return nil, shared.NewDomainError("INVALID_SEQUENCE", "Installment sequence must be positive")
	}
	if principalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Principal amount must be positive")
	}

	return &Installment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DocumentID:          documentID,
		Sequence:            sequence,
		DueDate:             dueDate,
		PrincipalAmount:     principalAmount,
		Status:              InstallmentStatusPending,
	}, nil
}

// WithTotalAmount records the total amount (principal plus charges)
func (i *Installment) WithTotalAmount(total decimal.Decimal) *Installment {
	i.TotalAmount = &total
	return i
}

// WithCompensationDate records a pre-agreed settlement date
func (i *Installment) WithCompensationDate(date time.Time) *Installment {
	i.CompensationDate = &date
	return i
}

// IsSettled returns true if the installment has been settled
func (i *Installment) IsSettled() bool {
	return i.Status == InstallmentStatusSettled
}

// ResolveSettlementAmount resolves the amount to post for this
// installment via an explicit ordered fallback: caller override first,
// then the recorded total amount, then the principal. The returned
// AmountSource names the step that won, so the precedence stays
// auditable.
func (i *Installment) ResolveSettlementAmount(override *decimal.Decimal) (decimal.Decimal, AmountSource, error) {
	if override != nil {
		if override.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, "", shared.ErrInvalidAmount
		}
		return *override, AmountSourceOverride, nil
	}
	if i.TotalAmount != nil {
		return *i.TotalAmount, AmountSourceTotal, nil
	}
	return i.PrincipalAmount, AmountSourcePrincipal, nil
}

// ResolveSettlementDate resolves the effective settlement date: the
// pre-recorded compensation date wins, then a caller-supplied date, then
// the current time.
func (i *Installment) ResolveSettlementDate(callerDate *time.Time, now time.Time) (time.Time, DateSource) {
	if i.CompensationDate != nil {
		return *i.CompensationDate, DateSourceCompensation
	}
	if callerDate != nil {
		return *callerDate, DateSourceCaller
	}
	return now, DateSourceNow
}

// Settle transitions the installment to settled, recording the
// settlement date and target account. Settling an already-settled
// installment fails with ALREADY_SETTLED.
func (i *Installment) Settle(settledAt time.Time, accountID uuid.UUID) error {
	if i.Status == InstallmentStatusSettled {
		return shared.ErrAlreadySettled
	}
	if accountID == uuid.Nil {
		return shared.ErrAccountNotFound
	}

	i.Status = InstallmentStatusSettled
	i.SettledAt = &settledAt
	i.SettlementAccountID = &accountID
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewInstallmentSettledEvent(i))

	return nil
}
