package cashier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/settlement/internal/domain/audit"
	"github.com/erp/settlement/internal/domain/cashier"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OpenSessionInput carries the parameters to open a cash session
type OpenSessionInput struct {
	TenantID     uuid.UUID
	OperatorID   uuid.UUID
	RegisterCode string
	OpeningFloat decimal.Decimal
}

// OpenSessionResult is returned when a session is opened
type OpenSessionResult struct {
	SessionID uuid.UUID `json:"session_id"`
	OpenedAt  time.Time `json:"opened_at"`
}

// RecordSaleInput carries the parameters to record a completed sale
type RecordSaleInput struct {
	TenantID      uuid.UUID
	SessionID     uuid.UUID
	Total         decimal.Decimal
	PaymentMethod cashier.PaymentMethod
	ActorID       uuid.UUID
}

// RecordSaleResult is returned when a sale is recorded
type RecordSaleResult struct {
	SaleID      uuid.UUID `json:"sale_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// RecordMovementInput carries the parameters of a manual cash movement
type RecordMovementInput struct {
	TenantID  uuid.UUID
	SessionID uuid.UUID
	Kind      cashier.MovementKind
	Amount    decimal.Decimal
	Reason    string
	ActorID   uuid.UUID
}

// RecordMovementResult is returned when a movement is recorded
type RecordMovementResult struct {
	MovementID uuid.UUID `json:"movement_id"`
}

// CloseSessionInput carries the parameters to close a session
type CloseSessionInput struct {
	TenantID      uuid.UUID
	SessionID     uuid.UUID
	CountedAmount decimal.Decimal
	Notes         string
	ActorID       uuid.UUID
}

// CloseSessionResult is the reconciliation outcome of a session close
type CloseSessionResult struct {
	SessionID uuid.UUID                `json:"session_id"`
	Expected  decimal.Decimal          `json:"expected"`
	Counted   decimal.Decimal          `json:"counted"`
	Variance  decimal.Decimal          `json:"variance"`
	Breakdown cashier.PaymentBreakdown `json:"breakdown_by_payment_method"`
	ClosedAt  time.Time                `json:"closed_at"`
}

// SuspendSaleInput carries the parameters to park a cart
type SuspendSaleInput struct {
	TenantID    uuid.UUID
	SessionID   uuid.UUID
	OperatorID  uuid.UUID
	Label       string
	CartPayload string
}

// SuspendSaleResult is returned when a cart is parked
type SuspendSaleResult struct {
	SuspendedSaleID uuid.UUID `json:"suspended_sale_id"`
	SuspendedAt     time.Time `json:"suspended_at"`
}

// SessionService owns the cash session lifecycle: open, record sales and
// manual movements, suspend/resume carts, and close with reconciliation.
type SessionService struct {
	scope   TransactionScope
	auditor audit.Recorder
	logger  *zap.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(scope TransactionScope, auditor audit.Recorder, logger *zap.Logger) *SessionService {
	if auditor == nil {
		auditor = audit.NopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{scope: scope, auditor: auditor, logger: logger}
}

// Open opens a cash session. Only one open session may exist per
// operator/register pair.
func (s *SessionService) Open(ctx context.Context, input OpenSessionInput) (*OpenSessionResult, error) {
	var result *OpenSessionResult
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		_, err := repos.Sessions().FindOpenByOperatorAndRegister(ctx, input.TenantID, input.OperatorID, input.RegisterCode)
		if err == nil {
			return shared.NewDomainError("INVALID_STATE", "Operator already has an open session on this register")
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("failed to check for open session: %w", err)
		}

		session, err := cashier.OpenSession(input.TenantID, input.OperatorID, input.RegisterCode, input.OpeningFloat)
		if err != nil {
			return err
		}
		if err := repos.Sessions().Create(ctx, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		result = &OpenSessionResult{SessionID: session.ID, OpenedAt: session.OpenedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cash session opened",
		zap.String("session_id", result.SessionID.String()),
		zap.String("register", input.RegisterCode),
		zap.String("opening_float", input.OpeningFloat.String()),
	)
	s.recordAudit(ctx, input.TenantID, input.OperatorID, "cashier.session.open", "Session", result.SessionID,
		fmt.Sprintf("Opened session on register %s with float %s", input.RegisterCode, input.OpeningFloat.StringFixed(2)), nil)

	return result, nil
}

// RecordSale appends a completed sale to an open session
func (s *SessionService) RecordSale(ctx context.Context, input RecordSaleInput) (*RecordSaleResult, error) {
	var result *RecordSaleResult
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		session, err := repos.Sessions().FindByIDForTenantLocked(ctx, input.TenantID, input.SessionID)
		if err != nil {
			return err
		}
		if !session.IsOpen() {
			return shared.NewDomainError("INVALID_STATE", "Sales can only be recorded on an open session")
		}

		sale, err := cashier.NewSale(input.TenantID, session.ID, input.Total, input.PaymentMethod)
		if err != nil {
			return err
		}
		if err := repos.Sales().Create(ctx, sale); err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}

		result = &RecordSaleResult{SaleID: sale.ID, CompletedAt: sale.CompletedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, input.TenantID, input.ActorID, "cashier.sale.record", "Sale", result.SaleID,
		fmt.Sprintf("Recorded %s sale of %s", input.PaymentMethod, input.Total.StringFixed(2)), nil)

	return result, nil
}

// RecordMovement appends a manual cash movement (sangria/suprimento) to
// an open session. No status transition occurs.
func (s *SessionService) RecordMovement(ctx context.Context, input RecordMovementInput) (*RecordMovementResult, error) {
	var result *RecordMovementResult
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		session, err := repos.Sessions().FindByIDForTenantLocked(ctx, input.TenantID, input.SessionID)
		if err != nil {
			return err
		}
		if !session.IsOpen() {
			return shared.NewDomainError("INVALID_STATE", "Movements can only be recorded on an open session")
		}

		movement, err := cashier.NewMovement(input.TenantID, session.ID, input.Kind, input.Amount, input.Reason)
		if err != nil {
			return err
		}
		if err := repos.Movements().Create(ctx, movement); err != nil {
			return fmt.Errorf("failed to create movement: %w", err)
		}

		result = &RecordMovementResult{MovementID: movement.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, input.TenantID, input.ActorID, "cashier.movement.record", "Movement", result.MovementID,
		fmt.Sprintf("%s of %s: %s", input.Kind, input.Amount.StringFixed(2), input.Reason), nil)

	return result, nil
}

// Close reconciles and closes a session in one atomic write.
//
// Expected amount is re-derived by aggregation over the session's sales
// and movements, never from a cached running total: the re-derivation is
// the correctness mechanism against partial-write drift. No ledger
// posting occurs here.
func (s *SessionService) Close(ctx context.Context, input CloseSessionInput) (*CloseSessionResult, error) {
	if input.CountedAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Counted amount cannot be negative")
	}

	var result *CloseSessionResult
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		session, err := repos.Sessions().FindByIDForTenantLocked(ctx, input.TenantID, input.SessionID)
		if err != nil {
			return err
		}
		// Re-verify under the lock
		if !session.IsOpen() {
			return shared.NewDomainError("INVALID_STATE", "Only open sessions can be closed")
		}

		saleTotal, err := repos.Sales().SumCompletedBySession(ctx, input.TenantID, session.ID)
		if err != nil {
			return fmt.Errorf("failed to sum sales: %w", err)
		}
		cashOut, err := repos.Movements().SumBySessionAndKind(ctx, input.TenantID, session.ID, cashier.MovementKindCashOut)
		if err != nil {
			return fmt.Errorf("failed to sum cash-out movements: %w", err)
		}
		cashIn, err := repos.Movements().SumBySessionAndKind(ctx, input.TenantID, session.ID, cashier.MovementKindCashIn)
		if err != nil {
			return fmt.Errorf("failed to sum cash-in movements: %w", err)
		}
		breakdown, err := repos.Sales().SumCompletedByPaymentMethod(ctx, input.TenantID, session.ID)
		if err != nil {
			return fmt.Errorf("failed to build payment breakdown: %w", err)
		}

		expected := session.ExpectedClosingAmount(saleTotal, cashOut, cashIn)
		if err := session.Close(input.CountedAmount, expected, breakdown, input.Notes); err != nil {
			return err
		}
		if err := repos.Sessions().Save(ctx, session); err != nil {
			return fmt.Errorf("failed to save closed session: %w", err)
		}

		result = &CloseSessionResult{
			SessionID: session.ID,
			Expected:  expected,
			Counted:   input.CountedAmount,
			Variance:  input.CountedAmount.Sub(expected),
			Breakdown: breakdown,
			ClosedAt:  *session.ClosedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cash session closed",
		zap.String("session_id", result.SessionID.String()),
		zap.String("expected", result.Expected.String()),
		zap.String("counted", result.Counted.String()),
		zap.String("variance", result.Variance.String()),
	)
	s.recordAudit(ctx, input.TenantID, input.ActorID, "cashier.session.close", "Session", result.SessionID,
		fmt.Sprintf("Closed session: expected %s, counted %s, variance %s",
			result.Expected.StringFixed(2), result.Counted.StringFixed(2), result.Variance.StringFixed(2)), nil)

	return result, nil
}

// SuspendSale parks a cart against an open session. Suspended sales are
// a holding area outside the ledger.
func (s *SessionService) SuspendSale(ctx context.Context, input SuspendSaleInput) (*SuspendSaleResult, error) {
	var result *SuspendSaleResult
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		session, err := repos.Sessions().FindByIDForTenant(ctx, input.TenantID, input.SessionID)
		if err != nil {
			return err
		}
		if !session.IsOpen() {
			return shared.NewDomainError("INVALID_STATE", "Carts can only be suspended on an open session")
		}

		suspended, err := cashier.NewSuspendedSale(input.TenantID, session.ID, input.OperatorID, input.Label, input.CartPayload)
		if err != nil {
			return err
		}
		if err := repos.SuspendedSales().Create(ctx, suspended); err != nil {
			return fmt.Errorf("failed to create suspended sale: %w", err)
		}

		result = &SuspendSaleResult{SuspendedSaleID: suspended.ID, SuspendedAt: suspended.SuspendedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResumeSuspendedSale removes a parked cart and returns its payload so
// the operator can resume the sale
func (s *SessionService) ResumeSuspendedSale(ctx context.Context, tenantID, suspendedID uuid.UUID) (*cashier.SuspendedSale, error) {
	var suspended *cashier.SuspendedSale
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var err error
		suspended, err = repos.SuspendedSales().FindByIDForTenant(ctx, tenantID, suspendedID)
		if err != nil {
			return err
		}
		return repos.SuspendedSales().Delete(ctx, tenantID, suspendedID)
	})
	if err != nil {
		return nil, err
	}
	return suspended, nil
}

// GetSession returns a session by ID
func (s *SessionService) GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*cashier.Session, error) {
	var session *cashier.Session
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var err error
		session, err = repos.Sessions().FindByIDForTenant(ctx, tenantID, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) recordAudit(ctx context.Context, tenantID, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, description string, metadata map[string]string) {
	err := s.auditor.Record(ctx, audit.Entry{
		TenantID:    tenantID,
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		Metadata:    metadata,
	})
	if err != nil {
		s.logger.Warn("failed to record cashier audit entry", zap.Error(err))
	}
}
