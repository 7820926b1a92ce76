package ledger

import (
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountCreatedEvent is raised when a new financial account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID      uuid.UUID       `json:"account_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// EventType returns the event type name
func (e *AccountCreatedEvent) EventType() string {
	return "LedgerAccountCreated"
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(a *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerAccountCreated", "Account", a.ID, a.TenantID),
		AccountID:       a.ID,
		Code:            a.Code,
		Name:            a.Name,
		OpeningBalance:  a.OpeningBalance,
	}
}

// EntryPostedEvent is raised when a ledger entry is posted to an account
type EntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryID          uuid.UUID       `json:"entry_id"`
	AccountID        uuid.UUID       `json:"account_id"`
	Direction        EntryDirection  `json:"direction"`
	Amount           decimal.Decimal `json:"amount"`
	SourceDocumentID uuid.UUID       `json:"source_document_id"`
	SourceScreen     SourceScreen    `json:"source_screen"`
	BalanceAfter     decimal.Decimal `json:"balance_after"`
	EntryDate        time.Time       `json:"entry_date"`
}

// EventType returns the event type name
func (e *EntryPostedEvent) EventType() string {
	return "LedgerEntryPosted"
}

// NewEntryPostedEvent creates a new EntryPostedEvent
func NewEntryPostedEvent(entry *Entry) *EntryPostedEvent {
	return &EntryPostedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("LedgerEntryPosted", "Account", entry.AccountID, entry.TenantID),
		EntryID:          entry.ID,
		AccountID:        entry.AccountID,
		Direction:        entry.Direction,
		Amount:           entry.Amount,
		SourceDocumentID: entry.SourceDocumentID,
		SourceScreen:     entry.SourceScreen,
		BalanceAfter:     entry.BalanceAfter,
		EntryDate:        entry.EntryDate,
	}
}
