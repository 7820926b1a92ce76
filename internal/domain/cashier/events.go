package cashier

import (
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionOpenedEvent is raised when a cash session is opened
type SessionOpenedEvent struct {
	shared.BaseDomainEvent
	SessionID    uuid.UUID       `json:"session_id"`
	OperatorID   uuid.UUID       `json:"operator_id"`
	RegisterCode string          `json:"register_code"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
	OpenedAt     time.Time       `json:"opened_at"`
}

// EventType returns the event type name
func (e *SessionOpenedEvent) EventType() string {
	return "CashSessionOpened"
}

// NewSessionOpenedEvent creates a new SessionOpenedEvent
func NewSessionOpenedEvent(s *Session) *SessionOpenedEvent {
	return &SessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CashSessionOpened", "Session", s.ID, s.TenantID),
		SessionID:       s.ID,
		OperatorID:      s.OperatorID,
		RegisterCode:    s.RegisterCode,
		OpeningFloat:    s.OpeningFloat,
		OpenedAt:        s.OpenedAt,
	}
}

// SessionClosedEvent is raised when a cash session is closed and reconciled
type SessionClosedEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID        `json:"session_id"`
	Expected  *decimal.Decimal `json:"expected"`
	Counted   *decimal.Decimal `json:"counted"`
	Variance  *decimal.Decimal `json:"variance"`
	ClosedAt  *time.Time       `json:"closed_at"`
}

// EventType returns the event type name
func (e *SessionClosedEvent) EventType() string {
	return "CashSessionClosed"
}

// NewSessionClosedEvent creates a new SessionClosedEvent
func NewSessionClosedEvent(s *Session) *SessionClosedEvent {
	return &SessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CashSessionClosed", "Session", s.ID, s.TenantID),
		SessionID:       s.ID,
		Expected:        s.ExpectedAmount,
		Counted:         s.CountedAmount,
		Variance:        s.Variance,
		ClosedAt:        s.ClosedAt,
	}
}

// SaleCompletedEvent is raised when a sale is recorded against a session
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	SessionID     uuid.UUID       `json:"session_id"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// EventType returns the event type name
func (e *SaleCompletedEvent) EventType() string {
	return "SaleCompleted"
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(s *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SaleCompleted", "Sale", s.ID, s.TenantID),
		SaleID:          s.ID,
		SessionID:       s.SessionID,
		Total:           s.Total,
		PaymentMethod:   s.PaymentMethod,
		CompletedAt:     s.CompletedAt,
	}
}

// SaleCancelledEvent is raised when a completed sale is reversed
type SaleCancelledEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	SessionID   uuid.UUID       `json:"session_id"`
	Total       decimal.Decimal `json:"total"`
	Reason      string          `json:"reason"`
	CancelledAt *time.Time      `json:"cancelled_at"`
}

// EventType returns the event type name
func (e *SaleCancelledEvent) EventType() string {
	return "SaleCancelled"
}

// NewSaleCancelledEvent creates a new SaleCancelledEvent
func NewSaleCancelledEvent(s *Sale) *SaleCancelledEvent {
	return &SaleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SaleCancelled", "Sale", s.ID, s.TenantID),
		SaleID:          s.ID,
		SessionID:       s.SessionID,
		Total:           s.Total,
		Reason:          s.CancelReason,
		CancelledAt:     s.CancelledAt,
	}
}

// MovementRecordedEvent is raised when a manual cash movement is recorded
type MovementRecordedEvent struct {
	shared.BaseDomainEvent
	MovementID uuid.UUID       `json:"movement_id"`
	SessionID  uuid.UUID       `json:"session_id"`
	Kind       MovementKind    `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

// EventType returns the event type name
func (e *MovementRecordedEvent) EventType() string {
	return "CashMovementRecorded"
}

// NewMovementRecordedEvent creates a new MovementRecordedEvent
func NewMovementRecordedEvent(m *Movement) *MovementRecordedEvent {
	return &MovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CashMovementRecorded", "Movement", m.ID, m.TenantID),
		MovementID:      m.ID,
		SessionID:       m.SessionID,
		Kind:            m.Kind,
		Amount:          m.Amount,
		Reason:          m.Reason,
	}
}
