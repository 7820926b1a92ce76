package models

import (
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for the Document aggregate root.
type DocumentModel struct {
	TenantAggregateModel
	Number           string                      `gorm:"type:varchar(50);not null;uniqueIndex:idx_document_tenant_number,priority:2"`
	Polarity         settlement.DocumentPolarity `gorm:"type:varchar(20);not null;index"`
	CounterpartyName string                      `gorm:"type:varchar(200);not null"`
	TotalAmount      decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Status           settlement.DocumentStatus   `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	SettledAt        *time.Time
	Locked           bool   `gorm:"not null;default:false"`
	Remark           string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "settlement_documents"
}

// ToDomain converts the persistence model to a domain Document
func (m *DocumentModel) ToDomain() *settlement.Document {
	d := &settlement.Document{
		Number:           m.Number,
		Polarity:         m.Polarity,
		CounterpartyName: m.CounterpartyName,
		TotalAmount:      m.TotalAmount,
		Status:           m.Status,
		SettledAt:        m.SettledAt,
		Locked:           m.Locked,
		Remark:           m.Remark,
	}
	m.PopulateTenantAggregateRoot(&d.TenantAggregateRoot)
	return d
}

// FromDomain populates the persistence model from a domain Document
func (m *DocumentModel) FromDomain(d *settlement.Document) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.Number = d.Number
	m.Polarity = d.Polarity
	m.CounterpartyName = d.CounterpartyName
	m.TotalAmount = d.TotalAmount
	m.Status = d.Status
	m.SettledAt = d.SettledAt
	m.Locked = d.Locked
	m.Remark = d.Remark
}

// DocumentModelFromDomain creates a persistence model from a domain Document
func DocumentModelFromDomain(d *settlement.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}

// InstallmentModel is the persistence model for the Installment aggregate root.
type InstallmentModel struct {
	TenantAggregateModel
	DocumentID          uuid.UUID                    `gorm:"type:uuid;not null;index:idx_installment_document,priority:1"`
	Sequence            int                          `gorm:"not null"`
	DueDate             time.Time                    `gorm:"not null;index"`
	PrincipalAmount     decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	TotalAmount         *decimal.Decimal             `gorm:"type:decimal(18,4)"`
	CompensationDate    *time.Time
	Status              settlement.InstallmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_installment_document,priority:2"`
	SettledAt           *time.Time
	SettlementAccountID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "settlement_installments"
}

// ToDomain converts the persistence model to a domain Installment
func (m *InstallmentModel) ToDomain() *settlement.Installment {
	i := &settlement.Installment{
		DocumentID:          m.DocumentID,
		Sequence:            m.Sequence,
		DueDate:             m.DueDate,
		PrincipalAmount:     m.PrincipalAmount,
		TotalAmount:         m.TotalAmount,
		CompensationDate:    m.CompensationDate,
		Status:              m.Status,
		SettledAt:           m.SettledAt,
		SettlementAccountID: m.SettlementAccountID,
	}
	m.PopulateTenantAggregateRoot(&i.TenantAggregateRoot)
	return i
}

// FromDomain populates the persistence model from a domain Installment
func (m *InstallmentModel) FromDomain(i *settlement.Installment) {
	m.FromDomainTenantAggregateRoot(i.TenantAggregateRoot)
	m.DocumentID = i.DocumentID
	m.Sequence = i.Sequence
	m.DueDate = i.DueDate
	m.PrincipalAmount = i.PrincipalAmount
	m.TotalAmount = i.TotalAmount
	m.CompensationDate = i.CompensationDate
	m.Status = i.Status
	m.SettledAt = i.SettledAt
	m.SettlementAccountID = i.SettlementAccountID
}

// InstallmentModelFromDomain creates a persistence model from a domain Installment
func InstallmentModelFromDomain(i *settlement.Installment) *InstallmentModel {
	m := &InstallmentModel{}
	m.FromDomain(i)
	return m
}
