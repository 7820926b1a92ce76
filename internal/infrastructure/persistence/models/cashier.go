package models

import (
	"time"

	"github.com/erp/settlement/internal/domain/cashier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionModel is the persistence model for the cash Session aggregate root.
type SessionModel struct {
	TenantAggregateModel
	OperatorID     uuid.UUID             `gorm:"type:uuid;not null;index:idx_session_operator_register,priority:1"`
	RegisterCode   string                `gorm:"type:varchar(50);not null;index:idx_session_operator_register,priority:2"`
	OpeningFloat   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	OpenedAt       time.Time             `gorm:"not null"`
	Status         cashier.SessionStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	ClosedAt       *time.Time
	ExpectedAmount *decimal.Decimal         `gorm:"type:decimal(18,4)"`
	CountedAmount  *decimal.Decimal         `gorm:"type:decimal(18,4)"`
	Variance       *decimal.Decimal         `gorm:"type:decimal(18,4)"`
	Breakdown      cashier.PaymentBreakdown `gorm:"type:jsonb;default:'{}'"`
	Notes          string                   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SessionModel) TableName() string {
	return "cash_sessions"
}

// ToDomain converts the persistence model to a domain Session
func (m *SessionModel) ToDomain() *cashier.Session {
	s := &cashier.Session{
		OperatorID:     m.OperatorID,
		RegisterCode:   m.RegisterCode,
		OpeningFloat:   m.OpeningFloat,
		OpenedAt:       m.OpenedAt,
		Status:         m.Status,
		ClosedAt:       m.ClosedAt,
		ExpectedAmount: m.ExpectedAmount,
		CountedAmount:  m.CountedAmount,
		Variance:       m.Variance,
		Breakdown:      m.Breakdown,
		Notes:          m.Notes,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Session
func (m *SessionModel) FromDomain(s *cashier.Session) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.OperatorID = s.OperatorID
	m.RegisterCode = s.RegisterCode
	m.OpeningFloat = s.OpeningFloat
	m.OpenedAt = s.OpenedAt
	m.Status = s.Status
	m.ClosedAt = s.ClosedAt
	m.ExpectedAmount = s.ExpectedAmount
	m.CountedAmount = s.CountedAmount
	m.Variance = s.Variance
	m.Breakdown = s.Breakdown
	m.Notes = s.Notes
}

// SessionModelFromDomain creates a persistence model from a domain Session
func SessionModelFromDomain(s *cashier.Session) *SessionModel {
	m := &SessionModel{}
	m.FromDomain(s)
	return m
}

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	TenantAggregateModel
	SessionID     uuid.UUID             `gorm:"type:uuid;not null;index:idx_sale_session_status,priority:1"`
	Total         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentMethod cashier.PaymentMethod `gorm:"type:varchar(20);not null"`
	Status        cashier.SaleStatus    `gorm:"type:varchar(20);not null;default:'COMPLETED';index:idx_sale_session_status,priority:2"`
	CompletedAt   time.Time             `gorm:"not null;index"`
	CancelledAt   *time.Time
	CancelReason  string     `gorm:"type:varchar(500)"`
	CancelledBy   *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "cash_sales"
}

// ToDomain converts the persistence model to a domain Sale
func (m *SaleModel) ToDomain() *cashier.Sale {
	s := &cashier.Sale{
		SessionID:     m.SessionID,
		Total:         m.Total,
		PaymentMethod: m.PaymentMethod,
		Status:        m.Status,
		CompletedAt:   m.CompletedAt,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
		CancelledBy:   m.CancelledBy,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Sale
func (m *SaleModel) FromDomain(s *cashier.Sale) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.SessionID = s.SessionID
	m.Total = s.Total
	m.PaymentMethod = s.PaymentMethod
	m.Status = s.Status
	m.CompletedAt = s.CompletedAt
	m.CancelledAt = s.CancelledAt
	m.CancelReason = s.CancelReason
	m.CancelledBy = s.CancelledBy
}

// SaleModelFromDomain creates a persistence model from a domain Sale
func SaleModelFromDomain(s *cashier.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// MovementModel is the persistence model for manual cash movements.
type MovementModel struct {
	TenantAggregateModel
	SessionID uuid.UUID            `gorm:"type:uuid;not null;index:idx_movement_session_kind,priority:1"`
	Kind      cashier.MovementKind `gorm:"type:varchar(10);not null;index:idx_movement_session_kind,priority:2"`
	Amount    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Reason    string               `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (MovementModel) TableName() string {
	return "cash_movements"
}

// ToDomain converts the persistence model to a domain Movement
func (m *MovementModel) ToDomain() *cashier.Movement {
	mv := &cashier.Movement{
		SessionID: m.SessionID,
		Kind:      m.Kind,
		Amount:    m.Amount,
		Reason:    m.Reason,
	}
	m.PopulateTenantAggregateRoot(&mv.TenantAggregateRoot)
	return mv
}

// FromDomain populates the persistence model from a domain Movement
func (m *MovementModel) FromDomain(mv *cashier.Movement) {
	m.FromDomainTenantAggregateRoot(mv.TenantAggregateRoot)
	m.SessionID = mv.SessionID
	m.Kind = mv.Kind
	m.Amount = mv.Amount
	m.Reason = mv.Reason
}

// MovementModelFromDomain creates a persistence model from a domain Movement
func MovementModelFromDomain(mv *cashier.Movement) *MovementModel {
	m := &MovementModel{}
	m.FromDomain(mv)
	return m
}

// SuspendedSaleModel is the persistence model for parked carts.
type SuspendedSaleModel struct {
	TenantAggregateModel
	SessionID   uuid.UUID `gorm:"type:uuid;not null;index"`
	OperatorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Label       string    `gorm:"type:varchar(100);not null"`
	CartPayload string    `gorm:"type:text;not null"`
	SuspendedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SuspendedSaleModel) TableName() string {
	return "suspended_sales"
}

// ToDomain converts the persistence model to a domain SuspendedSale
func (m *SuspendedSaleModel) ToDomain() *cashier.SuspendedSale {
	s := &cashier.SuspendedSale{
		SessionID:   m.SessionID,
		OperatorID:  m.OperatorID,
		Label:       m.Label,
		CartPayload: m.CartPayload,
		SuspendedAt: m.SuspendedAt,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain SuspendedSale
func (m *SuspendedSaleModel) FromDomain(s *cashier.SuspendedSale) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.SessionID = s.SessionID
	m.OperatorID = s.OperatorID
	m.Label = s.Label
	m.CartPayload = s.CartPayload
	m.SuspendedAt = s.SuspendedAt
}

// SuspendedSaleModelFromDomain creates a persistence model from a domain SuspendedSale
func SuspendedSaleModelFromDomain(s *cashier.SuspendedSale) *SuspendedSaleModel {
	m := &SuspendedSaleModel{}
	m.FromDomain(s)
	return m
}
