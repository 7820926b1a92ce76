package cashier

import (
	"context"
	"testing"
	"time"

	"github.com/erp/settlement/internal/domain/cashier"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reversalFixture struct {
	svc      *ReversalService
	sessions *SessionService
	repos    *memoryRepos
	notifier *recordingNotifier
	tenantID uuid.UUID
	operator uuid.UUID
}

func newReversalFixture(t *testing.T, window time.Duration) *reversalFixture {
	t.Helper()
	repos := newMemoryRepos()
	scope := &memoryScope{repos: repos}
	notifier := &recordingNotifier{}
	return &reversalFixture{
		svc:      NewReversalService(scope, nil, notifier, nil, window),
		sessions: NewSessionService(scope, nil, nil),
		repos:    repos,
		notifier: notifier,
		tenantID: uuid.New(),
		operator: uuid.New(),
	}
}

func (f *reversalFixture) recordSale(t *testing.T, total int64) (sessionID, saleID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	opened, err := f.sessions.Open(ctx, OpenSessionInput{
		TenantID:     f.tenantID,
		OperatorID:   f.operator,
		RegisterCode: "PDV-01",
		OpeningFloat: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	sale, err := f.sessions.RecordSale(ctx, RecordSaleInput{
		TenantID:      f.tenantID,
		SessionID:     opened.SessionID,
		Total:         decimal.NewFromInt(total),
		PaymentMethod: cashier.PaymentMethodCash,
	})
	require.NoError(t, err)
	return opened.SessionID, sale.SaleID
}

func TestReversalService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels sale and posts compensating cash-out", func(t *testing.T) {
		f := newReversalFixture(t, cashier.DefaultReversalWindow)
		sessionID, saleID := f.recordSale(t, 250)

		result, err := f.svc.Cancel(ctx, CancelSaleInput{
			TenantID:      f.tenantID,
			SaleID:        saleID,
			Justification: "customer returned the goods",
			OperatorID:    f.operator,
		})
		require.NoError(t, err)

		sale, err := f.repos.Sales().FindByIDForTenant(ctx, f.tenantID, saleID)
		require.NoError(t, err)
		assert.False(t, sale.IsCompleted())
		assert.Equal(t, "customer returned the goods", sale.CancelReason)
		require.NotNil(t, sale.CancelledBy)
		assert.Equal(t, f.operator, *sale.CancelledBy)

		movements, err := f.repos.Movements().ListBySession(ctx, f.tenantID, sessionID)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, result.MovementID, movements[0].ID)
		assert.Equal(t, cashier.MovementKindCashOut, movements[0].Kind)
		assert.True(t, movements[0].Amount.Equal(decimal.NewFromInt(250)))
		assert.Equal(t, "Sale reversal: customer returned the goods", movements[0].Reason)
	})

	t.Run("cancelled sale drops out of close reconciliation", func(t *testing.T) {
		f := newReversalFixture(t, cashier.DefaultReversalWindow)
		sessionID, saleID := f.recordSale(t, 250)

		_, err := f.svc.Cancel(ctx, CancelSaleInput{
			TenantID:      f.tenantID,
			SaleID:        saleID,
			Justification: "customer returned the goods",
			OperatorID:    f.operator,
		})
		require.NoError(t, err)

		// Sale total no longer counts; the compensating cash-out does.
		// 100 float + 0 sales - 250 out = -150
		result, err := f.sessions.Close(ctx, CloseSessionInput{
			TenantID:      f.tenantID,
			SessionID:     sessionID,
			CountedAmount: decimal.Zero,
		})
		require.NoError(t, err)
		assert.True(t, result.Expected.Equal(decimal.NewFromInt(-150)))
	})

	t.Run("emits stock reversal signal after commit", func(t *testing.T) {
		f := newReversalFixture(t, cashier.DefaultReversalWindow)
		_, saleID := f.recordSale(t, 250)

		_, err := f.svc.Cancel(ctx, CancelSaleInput{
			TenantID:      f.tenantID,
			SaleID:        saleID,
			Justification: "customer returned the goods",
			OperatorID:    f.operator,
		})
		require.NoError(t, err)

		require.Len(t, f.notifier.signals, 1)
		signal := f.notifier.signals[0]
		assert.Equal(t, f.tenantID, signal.TenantID)
		assert.Equal(t, "Sale", signal.SourceEntityType)
		assert.Equal(t, saleID, signal.SourceEntityID)
		assert.Equal(t, "customer returned the goods", signal.Reason)
	})

	t.Run("cancellation into a closed session is allowed", func(t *testing.T) {
		f := newReversalFixture(t, cashier.DefaultReversalWindow)
		sessionID, saleID := f.recordSale(t, 250)

		_, err := f.sessions.Close(ctx, CloseSessionInput{
			TenantID:      f.tenantID,
			SessionID:     sessionID,
			CountedAmount: decimal.NewFromInt(350),
		})
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, CancelSaleInput{
			TenantID:      f.tenantID,
			SaleID:        saleID,
			Justification: "customer returned the goods",
			OperatorID:    f.operator,
		})
		assert.NoError(t, err)
	})

	t.Run("short justification rejected without side effects", func(t *testing.T) {
		f := newReversalFixture(t, cashier.DefaultReversalWindow)
		sessionID, saleID := f.recordSale(t, 250)

		_, err := f.svc.Cancel(ctx, CancelSaleInput{
			TenantID:      f.tenantID,
			SaleID:        saleID,
			Justification: "short",
			OperatorID:    f.operator,
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)

		movements, err := f.repos.Movements().ListBySession(ctx, f.tenantID, sessionID)
		require.NoError(t, err)
		assert.Empty(t, movements)
		assert.Empty(t, f.notifier.signals)
	})

	t.Run("expired window rejected", func(t *testing.T) {
		f := newReversalFixture(t, cashier.DefaultReversalWindow)
		_, saleID := f.recordSale(t, 250)

		// Age the sale past the window
		sale, err := f.repos.Sales().FindByIDForTenant(ctx, f.tenantID, saleID)
		require.NoError(t, err)
		sale.CompletedAt = time.Now().Add(-25 * time.Hour)
		require.NoError(t, f.repos.Sales().Save(ctx, sale))

		_, err = f.svc.Cancel(ctx, CancelSaleInput{
			TenantID:      f.tenantID,
			SaleID:        saleID,
			Justification: "customer returned the goods",
			OperatorID:    f.operator,
		})
		assert.ErrorIs(t, err, shared.ErrWindowExpired)
	})

	t.Run("double cancellation rejected", func(t *testing.T) {
		f := newReversalFixture(t, cashier.DefaultReversalWindow)
		sessionID, saleID := f.recordSale(t, 250)

		input := CancelSaleInput{
			TenantID:      f.tenantID,
			SaleID:        saleID,
			Justification: "customer returned the goods",
			OperatorID:    f.operator,
		}
		_, err := f.svc.Cancel(ctx, input)
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, input)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)

		// Exactly one compensating movement
		movements, err := f.repos.Movements().ListBySession(ctx, f.tenantID, sessionID)
		require.NoError(t, err)
		assert.Len(t, movements, 1)
	})

	t.Run("configured window overrides the default", func(t *testing.T) {
		f := newReversalFixture(t, time.Hour)
		_, saleID := f.recordSale(t, 250)

		sale, err := f.repos.Sales().FindByIDForTenant(ctx, f.tenantID, saleID)
		require.NoError(t, err)
		sale.CompletedAt = time.Now().Add(-2 * time.Hour)
		require.NoError(t, f.repos.Sales().Save(ctx, sale))

		_, err = f.svc.Cancel(ctx, CancelSaleInput{
			TenantID:      f.tenantID,
			SaleID:        saleID,
			Justification: "customer returned the goods",
			OperatorID:    f.operator,
		})
		assert.ErrorIs(t, err, shared.ErrWindowExpired)
	})
}
