package models

import (
	"time"

	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for the Account aggregate root.
type AccountModel struct {
	TenantAggregateModel
	Code           string             `gorm:"type:varchar(50);not null;uniqueIndex:idx_account_tenant_code,priority:2"`
	Name           string             `gorm:"type:varchar(200);not null"`
	Type           ledger.AccountType `gorm:"type:varchar(20);not null;index"`
	OpeningBalance decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	CurrentBalance decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Active         bool               `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *ledger.Account {
	a := &ledger.Account{
		Code:           m.Code,
		Name:           m.Name,
		Type:           m.Type,
		OpeningBalance: m.OpeningBalance,
		CurrentBalance: m.CurrentBalance,
		Active:         m.Active,
	}
	m.PopulateTenantAggregateRoot(&a.TenantAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Type = a.Type
	m.OpeningBalance = a.OpeningBalance
	m.CurrentBalance = a.CurrentBalance
	m.Active = a.Active
}

// AccountModelFromDomain creates a persistence model from a domain Account
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// EntryModel is the persistence model for ledger entries. The unique
// index over (tenant_id, source_document_id, source_screen) enforces
// posting idempotency at the database level.
type EntryModel struct {
	BaseModel
	TenantID         uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:idx_entry_tenant_source,priority:1"`
	AccountID        uuid.UUID             `gorm:"type:uuid;not null;index:idx_entry_account_date,priority:1"`
	Direction        ledger.EntryDirection `gorm:"type:varchar(10);not null"`
	Amount           decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Description      string                `gorm:"type:varchar(500)"`
	SourceDocumentID uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_entry_tenant_source,priority:2"`
	SourceScreen     ledger.SourceScreen   `gorm:"type:varchar(40);not null;uniqueIndex:idx_entry_tenant_source,priority:3"`
	BalanceBefore    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	BalanceAfter     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	EntryDate        time.Time             `gorm:"not null;index:idx_entry_account_date,priority:2"`
}

// TableName returns the table name for GORM
func (EntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain Entry
func (m *EntryModel) ToDomain() *ledger.Entry {
	return &ledger.Entry{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:         m.TenantID,
		AccountID:        m.AccountID,
		Direction:        m.Direction,
		Amount:           m.Amount,
		Description:      m.Description,
		SourceDocumentID: m.SourceDocumentID,
		SourceScreen:     m.SourceScreen,
		BalanceBefore:    m.BalanceBefore,
		BalanceAfter:     m.BalanceAfter,
		EntryDate:        m.EntryDate,
	}
}

// FromDomain populates the persistence model from a domain Entry
func (m *EntryModel) FromDomain(e *ledger.Entry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TenantID = e.TenantID
	m.AccountID = e.AccountID
	m.Direction = e.Direction
	m.Amount = e.Amount
	m.Description = e.Description
	m.SourceDocumentID = e.SourceDocumentID
	m.SourceScreen = e.SourceScreen
	m.BalanceBefore = e.BalanceBefore
	m.BalanceAfter = e.BalanceAfter
	m.EntryDate = e.EntryDate
}

// EntryModelFromDomain creates a persistence model from a domain Entry
func EntryModelFromDomain(e *ledger.Entry) *EntryModel {
	m := &EntryModel{}
	m.FromDomain(e)
	return m
}
