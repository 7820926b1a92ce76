package settlement

import (
	"fmt"
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentPolarity distinguishes payable titles (money owed to a
// supplier) from receivable titles (money owed by a customer)
type DocumentPolarity string

const (
	DocumentPolarityPayable    DocumentPolarity = "PAYABLE"
	DocumentPolarityReceivable DocumentPolarity = "RECEIVABLE"
)

// IsValid checks if the polarity is valid
func (p DocumentPolarity) IsValid() bool {
	return p == DocumentPolarityPayable || p == DocumentPolarityReceivable
}

// String returns the string representation of DocumentPolarity
func (p DocumentPolarity) String() string {
	return string(p)
}

// DocumentStatus represents the settlement status of a document
type DocumentStatus string

const (
	DocumentStatusOpen    DocumentStatus = "OPEN"
	DocumentStatusPartial DocumentStatus = "PARTIAL"
	DocumentStatusSettled DocumentStatus = "SETTLED"
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusOpen, DocumentStatusPartial, DocumentStatusSettled:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the document is in a terminal state
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusSettled
}

// StatusCounts holds the per-status installment counts of a document
type StatusCounts struct {
	Pending int64 `json:"pending"`
	Settled int64 `json:"settled"`
}

// Total returns the total number of installments
func (c StatusCounts) Total() int64 {
	return c.Pending + c.Settled
}

// ReduceStatus derives a document status from its installment counts.
// It is a pure function: settled iff zero pending installments remain,
// partial if at least one installment has been settled, open otherwise.
func ReduceStatus(counts StatusCounts) DocumentStatus {
	if counts.Pending == 0 && counts.Settled > 0 {
		return DocumentStatusSettled
	}
	if counts.Settled > 0 {
		return DocumentStatusPartial
	}
	return DocumentStatusOpen
}

// Document represents a payable or receivable invoice/title whose total
// is split into installments. Status is a pure function of the
// installments' statuses; once settled the document is locked and
// immutable to further settlement.
type Document struct {
	shared.TenantAggregateRoot
	Number           string
	Polarity         DocumentPolarity
	CounterpartyName string
	TotalAmount      decimal.Decimal
	Status           DocumentStatus
	SettledAt        *time.Time
	Locked           bool
	Remark           string
}

// NewDocument creates a new payable/receivable document
func NewDocument(
	tenantID uuid.UUID,
	number string,
	polarity DocumentPolarity,
	counterpartyName string,
	totalAmount decimal.Decimal,
) (*Document, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if !polarity.IsValid() {
		return nil, shared.NewDomainError("INVALID_POLARITY", "Document polarity is not valid")
	}
	if counterpartyName == "" {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty name cannot be empty")
	}
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}

	d := &Document{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Polarity:            polarity,
		CounterpartyName:    counterpartyName,
		TotalAmount:         totalAmount,
		Status:              DocumentStatusOpen,
	}

	d.AddDomainEvent(NewDocumentCreatedEvent(d))

	return d, nil
}

// ApplyStatusCounts recomputes the document status from its installment
// counts. The settlement date is only recorded on the transition to
// settled, using the triggering settlement's date. Re-running with the
// same counts is a no-op apart from the version bump.
func (d *Document) ApplyStatusCounts(counts StatusCounts, settledAt time.Time) error {
	if d.Locked && d.Status == DocumentStatusSettled && counts.Pending > 0 {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Document %s is settled and locked; installments cannot reopen it", d.Number))
	}

	next := ReduceStatus(counts)
	d.Status = next
	if next == DocumentStatusSettled {
		if d.SettledAt == nil {
			d.SettledAt = &settledAt
		}
		if !d.Locked {
			d.Locked = true
			d.AddDomainEvent(NewDocumentSettledEvent(d))
		}
	} else {
		d.SettledAt = nil
		d.Locked = false
	}

	d.Touch()
	d.IncrementVersion()

	return nil
}

// CanSettle returns true if the document accepts further settlement
func (d *Document) CanSettle() bool {
	return !d.Locked && d.Status != DocumentStatusSettled
}

// IsSettled returns true if the document is fully settled
func (d *Document) IsSettled() bool {
	return d.Status == DocumentStatusSettled
}
