package cashier

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/settlement/internal/domain/audit"
	"github.com/erp/settlement/internal/domain/cashier"
	"github.com/erp/settlement/internal/domain/stock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CancelSaleInput carries the parameters to reverse a completed sale
type CancelSaleInput struct {
	TenantID      uuid.UUID
	SaleID        uuid.UUID
	Justification string
	OperatorID    uuid.UUID
}

// CancelSaleResult is returned when a sale is reversed
type CancelSaleResult struct {
	SaleID      uuid.UUID `json:"sale_id"`
	MovementID  uuid.UUID `json:"movement_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// ReversalService reverses completed sales within the reversal window.
// The reversal posts a compensating cash-out movement against the sale's
// session rather than mutating or deleting the sale row, so session
// reconciliation stays derivable from the append-only movement log.
type ReversalService struct {
	scope    TransactionScope
	auditor  audit.Recorder
	notifier stock.Notifier
	logger   *zap.Logger
	window   time.Duration
}

// NewReversalService creates a new ReversalService. A non-positive window
// falls back to the default 24h.
func NewReversalService(scope TransactionScope, auditor audit.Recorder, notifier stock.Notifier, logger *zap.Logger, window time.Duration) *ReversalService {
	if auditor == nil {
		auditor = audit.NopRecorder{}
	}
	if notifier == nil {
		notifier = stock.NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = cashier.DefaultReversalWindow
	}
	return &ReversalService{scope: scope, auditor: auditor, notifier: notifier, logger: logger, window: window}
}

// Cancel reverses a completed sale. The sale row is locked, precondition
// checks run in order (state, justification, window), and the sale flip
// plus the compensating movement commit atomically. The stock signal and
// the audit record are emitted after commit and never roll the reversal
// back.
func (s *ReversalService) Cancel(ctx context.Context, input CancelSaleInput) (*CancelSaleResult, error) {
	now := time.Now()

	var result *CancelSaleResult
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		sale, err := repos.Sales().FindByIDForTenantLocked(ctx, input.TenantID, input.SaleID)
		if err != nil {
			return err
		}

		if err := sale.Cancel(input.Justification, input.OperatorID, now, s.window); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to save cancelled sale: %w", err)
		}

		movement, err := cashier.NewMovement(input.TenantID, sale.SessionID, cashier.MovementKindCashOut,
			sale.Total, "Sale reversal: "+input.Justification)
		if err != nil {
			return err
		}
		if err := repos.Movements().Create(ctx, movement); err != nil {
			return fmt.Errorf("failed to create compensating movement: %w", err)
		}

		result = &CancelSaleResult{SaleID: sale.ID, MovementID: movement.ID, CancelledAt: *sale.CancelledAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale reversed",
		zap.String("sale_id", result.SaleID.String()),
		zap.String("movement_id", result.MovementID.String()),
	)

	if err := s.notifier.SignalReversal(ctx, stock.ReversalSignal{
		TenantID:         input.TenantID,
		SourceEntityType: "Sale",
		SourceEntityID:   input.SaleID,
		Reason:           input.Justification,
	}); err != nil {
		s.logger.Warn("failed to signal stock reversal", zap.Error(err),
			zap.String("sale_id", input.SaleID.String()))
	}

	if err := s.auditor.Record(ctx, audit.Entry{
		TenantID:    input.TenantID,
		ActorID:     input.OperatorID,
		Action:      "cashier.sale.cancel",
		EntityType:  "Sale",
		EntityID:    input.SaleID,
		Description: "Cancelled sale: " + input.Justification,
	}); err != nil {
		s.logger.Warn("failed to record cashier audit entry", zap.Error(err))
	}

	return result, nil
}
