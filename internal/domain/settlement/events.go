package settlement

import (
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentCreatedEvent is raised when a new document is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentID  uuid.UUID        `json:"document_id"`
	Number      string           `json:"number"`
	Polarity    DocumentPolarity `json:"polarity"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
}

// EventType returns the event type name
func (e *DocumentCreatedEvent) EventType() string {
	return "SettlementDocumentCreated"
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(d *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SettlementDocumentCreated", "Document", d.ID, d.TenantID),
		DocumentID:      d.ID,
		Number:          d.Number,
		Polarity:        d.Polarity,
		TotalAmount:     d.TotalAmount,
	}
}

// DocumentSettledEvent is raised when the last pending installment of a
// document is settled and the document locks
type DocumentSettledEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID  `json:"document_id"`
	Number     string     `json:"number"`
	SettledAt  *time.Time `json:"settled_at"`
}

// EventType returns the event type name
func (e *DocumentSettledEvent) EventType() string {
	return "SettlementDocumentSettled"
}

// NewDocumentSettledEvent creates a new DocumentSettledEvent
func NewDocumentSettledEvent(d *Document) *DocumentSettledEvent {
	return &DocumentSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SettlementDocumentSettled", "Document", d.ID, d.TenantID),
		DocumentID:      d.ID,
		Number:          d.Number,
		SettledAt:       d.SettledAt,
	}
}

// InstallmentSettledEvent is raised when an installment transitions to settled
type InstallmentSettledEvent struct {
	shared.BaseDomainEvent
	InstallmentID uuid.UUID  `json:"installment_id"`
	DocumentID    uuid.UUID  `json:"document_id"`
	Sequence      int        `json:"sequence"`
	SettledAt     *time.Time `json:"settled_at"`
	AccountID     *uuid.UUID `json:"account_id"`
}

// EventType returns the event type name
func (e *InstallmentSettledEvent) EventType() string {
	return "InstallmentSettled"
}

// NewInstallmentSettledEvent creates a new InstallmentSettledEvent
func NewInstallmentSettledEvent(i *Installment) *InstallmentSettledEvent {
	return &InstallmentSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InstallmentSettled", "Installment", i.ID, i.TenantID),
		InstallmentID:   i.ID,
		DocumentID:      i.DocumentID,
		Sequence:        i.Sequence,
		SettledAt:       i.SettledAt,
		AccountID:       i.SettlementAccountID,
	}
}
