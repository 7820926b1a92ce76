package cashier

import (
	"time"
	"unicode/utf8"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultReversalWindow is how long after completion a sale stays cancellable
const DefaultReversalWindow = 24 * time.Hour

// MinCancelJustificationLen is the minimum justification length for a cancellation
const MinCancelJustificationLen = 10

// PaymentMethod represents how a sale was paid
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodPix    PaymentMethod = "PIX"
	PaymentMethodCredit PaymentMethod = "CREDIT"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodPix, PaymentMethodCredit:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s SaleStatus) IsValid() bool {
	return s == SaleStatusCompleted || s == SaleStatusCancelled
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// Sale represents a completed point-of-sale transaction recorded against
// a cash session. The only transition is COMPLETED -> CANCELLED, and only
// within the reversal window measured from the completion timestamp.
type Sale struct {
	shared.TenantAggregateRoot
	SessionID     uuid.UUID
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Status        SaleStatus
	CompletedAt   time.Time
	CancelledAt   *time.Time
	CancelReason  string
	CancelledBy   *uuid.UUID
}

// NewSale records a completed sale against a session
func NewSale(tenantID, sessionID uuid.UUID, total decimal.Decimal, method PaymentMethod) (*Sale, error) {
	if sessionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SESSION", "Session ID cannot be empty")
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Sale total must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}

	s := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SessionID:           sessionID,
		Total:               total,
		PaymentMethod:       method,
		Status:              SaleStatusCompleted,
		CompletedAt:         time.Now(),
	}

	s.AddDomainEvent(NewSaleCompletedEvent(s))

	return s, nil
}

// IsCompleted returns true if the sale is completed
func (s *Sale) IsCompleted() bool {
	return s.Status == SaleStatusCompleted
}

// WithinReversalWindow reports whether the sale can still be cancelled at
// the given instant. The boundary is inclusive: a sale completed exactly
// window ago is still cancellable.
func (s *Sale) WithinReversalWindow(now time.Time, window time.Duration) bool {
	return !now.After(s.CompletedAt.Add(window))
}

// Cancel reverses a completed sale. Preconditions are checked in order,
// first failure wins: state, justification length, reversal window.
// The window is anchored to the sale's completion timestamp, not the
// session lifecycle, so a sale may be cancelled into an already-closed
// session while the window is open.
func (s *Sale) Cancel(justification string, operatorID uuid.UUID, now time.Time, window time.Duration) error {
	if s.Status != SaleStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Only completed sales can be cancelled")
	}
	if utf8.RuneCountInString(justification) < MinCancelJustificationLen {
		return shared.NewDomainError("VALIDATION_ERROR", "Cancellation justification must be at least 10 characters")
	}
	if !s.WithinReversalWindow(now, window) {
		return shared.ErrWindowExpired
	}

	s.Status = SaleStatusCancelled
	s.CancelledAt = &now
	s.CancelReason = justification
	if operatorID != uuid.Nil {
		s.CancelledBy = &operatorID
	}
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSaleCancelledEvent(s))

	return nil
}
