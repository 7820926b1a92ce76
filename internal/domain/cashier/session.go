package cashier

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus represents the lifecycle status of a cash session
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "OPEN"
	SessionStatusClosed SessionStatus = "CLOSED"
)

// IsValid checks if the status is valid
func (s SessionStatus) IsValid() bool {
	return s == SessionStatusOpen || s == SessionStatusClosed
}

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the session is in a terminal state
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusClosed
}

// PaymentBreakdown maps payment methods to their summed sale totals,
// persisted at close for reconciliation reporting. It implements GORM
// Scanner/Valuer for JSONB storage.
type PaymentBreakdown map[PaymentMethod]decimal.Decimal

// Value implements driver.Valuer interface for GORM to store as JSONB
func (b PaymentBreakdown) Value() (driver.Value, error) {
	if b == nil {
		return "{}", nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (b *PaymentBreakdown) Scan(value interface{}) error {
	if value == nil {
		*b = PaymentBreakdown{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentBreakdown: unsupported type")
	}

	if len(bytes) == 0 {
		*b = PaymentBreakdown{}
		return nil
	}

	return json.Unmarshal(bytes, b)
}

// Session represents a cash drawer session ("caixa"): the operational
// window during which a register is open for point-of-sale work.
// Expected amount and variance are derived at close by re-aggregating
// sales and movements, never by trusting a cached running total.
type Session struct {
	shared.TenantAggregateRoot
	OperatorID     uuid.UUID
	RegisterCode   string
	OpeningFloat   decimal.Decimal
	OpenedAt       time.Time
	Status         SessionStatus
	ClosedAt       *time.Time
	ExpectedAmount *decimal.Decimal
	CountedAmount  *decimal.Decimal
	Variance       *decimal.Decimal
	Breakdown      PaymentBreakdown
	Notes          string
}

// OpenSession opens a new cash session with the given opening float
func OpenSession(tenantID, operatorID uuid.UUID, registerCode string, openingFloat decimal.Decimal) (*Session, error) {
	if operatorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPERATOR", "Operator ID cannot be empty")
	}
	if registerCode == "" {
		return nil, shared.NewDomainError("INVALID_REGISTER", "Register code cannot be empty")
	}
	if openingFloat.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Opening float cannot be negative")
	}

	s := &Session{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OperatorID:          operatorID,
		RegisterCode:        registerCode,
		OpeningFloat:        openingFloat,
		OpenedAt:            time.Now(),
		Status:              SessionStatusOpen,
	}

	s.AddDomainEvent(NewSessionOpenedEvent(s))

	return s, nil
}

// IsOpen returns true if the session is open
func (s *Session) IsOpen() bool {
	return s.Status == SessionStatusOpen
}

// ExpectedClosingAmount computes the reconciliation-expected cash amount
// from re-derived aggregates: opening float plus completed sale totals,
// minus cash-out movements, plus cash-in movements
func (s *Session) ExpectedClosingAmount(saleTotal, cashOut, cashIn decimal.Decimal) decimal.Decimal {
	return s.OpeningFloat.Add(saleTotal).Sub(cashOut).Add(cashIn)
}

// Close reconciles and closes the session in a single state change.
// Expected and breakdown must already be re-derived from Sale and
// CashMovement aggregates scoped to this session.
func (s *Session) Close(counted, expected decimal.Decimal, breakdown PaymentBreakdown, notes string) error {
	if s.Status != SessionStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Only open sessions can be closed")
	}
	if counted.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Counted amount cannot be negative")
	}

	now := time.Now()
	variance := counted.Sub(expected)

	s.Status = SessionStatusClosed
	s.ClosedAt = &now
	s.ExpectedAmount = &expected
	s.CountedAmount = &counted
	s.Variance = &variance
	s.Breakdown = breakdown
	s.Notes = notes
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSessionClosedEvent(s))

	return nil
}
