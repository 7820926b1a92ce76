package settlement

import (
	"context"
	"fmt"
	"time"

	ledgerapp "github.com/erp/settlement/internal/application/ledger"
	"github.com/erp/settlement/internal/domain/audit"
	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettleInstallmentInput carries the parameters of a settlement request
type SettleInstallmentInput struct {
	TenantID        uuid.UUID
	InstallmentID   uuid.UUID
	TargetAccountID uuid.UUID
	SettlementDate  *time.Time
	AmountOverride  *decimal.Decimal
	ActorID         uuid.UUID
}

// SettleInstallmentResult is returned on a successful settlement
type SettleInstallmentResult struct {
	Installment      *settlement.Installment  `json:"installment"`
	Document         *settlement.Document     `json:"document"`
	Counts           settlement.StatusCounts  `json:"counts"`
	Entry            *ledger.Entry            `json:"entry"`
	Amount           decimal.Decimal          `json:"amount"`
	AmountSource     settlement.AmountSource  `json:"amount_source"`
	DuplicatePosting bool                     `json:"duplicate_posting"`
}

// Service settles installments into the account ledger. One call is one
// transaction: lock the installment, transition it, post the ledger
// entry, and roll the settlement up into the parent document's status.
type Service struct {
	scope      TransactionScope
	aggregator *StatusAggregator
	auditor    audit.Recorder
	logger     *zap.Logger
}

// NewService creates a new settlement Service
func NewService(scope TransactionScope, aggregator *StatusAggregator, auditor audit.Recorder, logger *zap.Logger) *Service {
	if auditor == nil {
		auditor = audit.NopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:      scope,
		aggregator: aggregator,
		auditor:    auditor,
		logger:     logger,
	}
}

// Settle settles one installment into the target account.
//
// The exclusive row lock on the installment is the serialization point:
// two concurrent settlement attempts for the same installment result in
// exactly one ledger entry and one status transition, with the loser
// failing ALREADY_SETTLED after the winner commits. Retries of the whole
// operation after a client timeout are additionally absorbed by the
// ledger writer's (source document, source screen) idempotency key.
func (s *Service) Settle(ctx context.Context, input SettleInstallmentInput) (*SettleInstallmentResult, error) {
	if input.TargetAccountID == uuid.Nil {
		return nil, shared.ErrAccountNotFound
	}
	if input.AmountOverride != nil && input.AmountOverride.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidAmount
	}

	var result *SettleInstallmentResult
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		inst, err := repos.Installments().FindByIDForTenantLocked(ctx, input.TenantID, input.InstallmentID)
		if err != nil {
			return err
		}

		// Re-verify under the lock: state may have changed between any
		// optimistic pre-check and the lock acquisition.
		if inst.IsSettled() {
			return shared.ErrAlreadySettled
		}

		doc, err := repos.Documents().FindByIDForTenant(ctx, input.TenantID, inst.DocumentID)
		if err != nil {
			return err
		}
		if !doc.CanSettle() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Document %s is settled and locked", doc.Number))
		}

		amount, amountSource, err := inst.ResolveSettlementAmount(input.AmountOverride)
		if err != nil {
			return err
		}
		settlementDate, _ := inst.ResolveSettlementDate(input.SettlementDate, time.Now())

		if err := inst.Settle(settlementDate, input.TargetAccountID); err != nil {
			return err
		}
		if err := repos.Installments().Save(ctx, inst); err != nil {
			return fmt.Errorf("failed to save installment: %w", err)
		}

		posted, err := ledgerapp.PostEntry(ctx, repos, ledgerapp.PostInput{
			TenantID:         input.TenantID,
			AccountID:        input.TargetAccountID,
			Direction:        directionForPolarity(doc.Polarity),
			Amount:           amount,
			Description:      fmt.Sprintf("Settlement of installment %d of document %s", inst.Sequence, doc.Number),
			SourceDocumentID: doc.ID,
			SourceScreen:     screenForPolarity(doc.Polarity),
			EntryDate:        settlementDate,
		})
		if err != nil {
			return err
		}

		counts, err := s.aggregator.Recompute(ctx, repos, doc, settlementDate)
		if err != nil {
			return err
		}

		result = &SettleInstallmentResult{
			Installment:      inst,
			Document:         doc,
			Counts:           counts,
			Entry:            posted.Entry,
			Amount:           amount,
			AmountSource:     amountSource,
			DuplicatePosting: posted.Duplicate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("installment settled",
		zap.String("installment_id", input.InstallmentID.String()),
		zap.String("document_id", result.Document.ID.String()),
		zap.String("amount", result.Amount.String()),
		zap.String("amount_source", string(result.AmountSource)),
		zap.String("document_status", result.Document.Status.String()),
		zap.Bool("duplicate_posting", result.DuplicatePosting),
	)

	s.recordAudit(ctx, input, result)

	return result, nil
}

// GetDocument returns a document with its installments and status counts
func (s *Service) GetDocument(ctx context.Context, tenantID, documentID uuid.UUID) (*settlement.Document, []*settlement.Installment, settlement.StatusCounts, error) {
	var (
		doc    *settlement.Document
		insts  []*settlement.Installment
		counts settlement.StatusCounts
	)
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var err error
		doc, err = repos.Documents().FindByIDForTenant(ctx, tenantID, documentID)
		if err != nil {
			return err
		}
		insts, err = repos.Installments().ListByDocument(ctx, tenantID, documentID)
		if err != nil {
			return err
		}
		counts, err = repos.Installments().CountByStatus(ctx, tenantID, documentID)
		return err
	})
	if err != nil {
		return nil, nil, settlement.StatusCounts{}, err
	}
	return doc, insts, counts, nil
}

// recordAudit emits one audit record per settlement. Audit failures are
// logged, never propagated: the settlement has already committed.
func (s *Service) recordAudit(ctx context.Context, input SettleInstallmentInput, result *SettleInstallmentResult) {
	err := s.auditor.Record(ctx, audit.Entry{
		TenantID:    input.TenantID,
		ActorID:     input.ActorID,
		Action:      "settlement.installment.settle",
		EntityType:  "Installment",
		EntityID:    input.InstallmentID,
		Description: fmt.Sprintf("Settled installment %d of document %s", result.Installment.Sequence, result.Document.Number),
		Metadata: map[string]string{
			"amount":          result.Amount.String(),
			"amount_source":   string(result.AmountSource),
			"account_id":      input.TargetAccountID.String(),
			"document_status": result.Document.Status.String(),
		},
	})
	if err != nil {
		s.logger.Warn("failed to record settlement audit entry", zap.Error(err))
	}
}

// directionForPolarity derives the ledger direction from the document
// polarity: receiving money credits the account, paying money debits it
func directionForPolarity(p settlement.DocumentPolarity) ledger.EntryDirection {
	if p == settlement.DocumentPolarityReceivable {
		return ledger.EntryDirectionCredit
	}
	return ledger.EntryDirectionDebit
}

// screenForPolarity tags which settlement flow fired, forming the stable
// second half of the idempotency key across retries
func screenForPolarity(p settlement.DocumentPolarity) ledger.SourceScreen {
	if p == settlement.DocumentPolarityReceivable {
		return ledger.SourceScreenReceivableInstallment
	}
	return ledger.SourceScreenPayableInstallment
}
