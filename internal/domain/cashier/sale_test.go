package cashier

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompletedSale(t *testing.T) *Sale {
	t.Helper()
	sale, err := NewSale(uuid.New(), uuid.New(), decimal.NewFromInt(100), PaymentMethodCash)
	require.NoError(t, err)
	return sale
}

func TestNewSale(t *testing.T) {
	tenantID := uuid.New()
	sessionID := uuid.New()

	t.Run("records completed sale", func(t *testing.T) {
		sale, err := NewSale(tenantID, sessionID, decimal.NewFromFloat(59.90), PaymentMethodPix)
		require.NoError(t, err)

		assert.True(t, sale.IsCompleted())
		assert.False(t, sale.CompletedAt.IsZero())
		assert.Nil(t, sale.CancelledAt)
	})

	t.Run("rejects non-positive total", func(t *testing.T) {
		_, err := NewSale(tenantID, sessionID, decimal.Zero, PaymentMethodCash)
		assert.Error(t, err)
	})

	t.Run("rejects invalid payment method", func(t *testing.T) {
		_, err := NewSale(tenantID, sessionID, decimal.NewFromInt(10), PaymentMethod("CHEQUE"))
		assert.Error(t, err)
	})
}

func TestSale_WithinReversalWindow(t *testing.T) {
	sale := newCompletedSale(t)
	sale.CompletedAt = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour
	deadline := sale.CompletedAt.Add(window)

	tests := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{"immediately after completion", sale.CompletedAt.Add(time.Minute), true},
		{"one second before deadline", deadline.Add(-time.Second), true},
		{"exactly at deadline", deadline, true},
		{"one second past deadline", deadline.Add(time.Second), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sale.WithinReversalWindow(tc.now, window))
		})
	}
}

func TestSale_Cancel(t *testing.T) {
	operatorID := uuid.New()
	window := DefaultReversalWindow

	t.Run("nine character justification rejected", func(t *testing.T) {
		sale := newCompletedSale(t)
		now := sale.CompletedAt.Add(time.Hour)

		err := sale.Cancel("123456789", operatorID, now, window)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		assert.True(t, sale.IsCompleted())
	})

	t.Run("ten character justification accepted", func(t *testing.T) {
		sale := newCompletedSale(t)
		now := sale.CompletedAt.Add(time.Hour)

		err := sale.Cancel("1234567890", operatorID, now, window)
		require.NoError(t, err)

		assert.Equal(t, SaleStatusCancelled, sale.Status)
		require.NotNil(t, sale.CancelledAt)
		assert.Equal(t, now, *sale.CancelledAt)
		assert.Equal(t, "1234567890", sale.CancelReason)
		require.NotNil(t, sale.CancelledBy)
		assert.Equal(t, operatorID, *sale.CancelledBy)
	})

	t.Run("justification length counts characters not bytes", func(t *testing.T) {
		sale := newCompletedSale(t)
		now := sale.CompletedAt.Add(time.Hour)

		// Nine accented runes occupy eighteen bytes; still too short.
		err := sale.Cancel("ééééééééé", operatorID, now, window)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		assert.True(t, sale.IsCompleted())

		err = sale.Cancel("éééééééééé", operatorID, now, window)
		require.NoError(t, err)
		assert.Equal(t, SaleStatusCancelled, sale.Status)
	})

	t.Run("nil operator leaves CancelledBy unset", func(t *testing.T) {
		sale := newCompletedSale(t)
		now := sale.CompletedAt.Add(time.Hour)

		err := sale.Cancel("returned goods", uuid.Nil, now, window)
		require.NoError(t, err)
		assert.Nil(t, sale.CancelledBy)
	})

	t.Run("window boundary is inclusive", func(t *testing.T) {
		sale := newCompletedSale(t)
		deadline := sale.CompletedAt.Add(window)

		err := sale.Cancel("returned goods", operatorID, deadline, window)
		assert.NoError(t, err)
	})

	t.Run("expired window fails with WINDOW_EXPIRED", func(t *testing.T) {
		sale := newCompletedSale(t)
		expired := sale.CompletedAt.Add(window).Add(time.Second)

		err := sale.Cancel("returned goods", operatorID, expired, window)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrWindowExpired)
		assert.True(t, sale.IsCompleted())
	})

	t.Run("cancelled sale cannot be cancelled again", func(t *testing.T) {
		sale := newCompletedSale(t)
		now := sale.CompletedAt.Add(time.Hour)
		require.NoError(t, sale.Cancel("returned goods", operatorID, now, window))

		err := sale.Cancel("returned goods", operatorID, now, window)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("state checked before justification and window", func(t *testing.T) {
		sale := newCompletedSale(t)
		now := sale.CompletedAt.Add(time.Hour)
		require.NoError(t, sale.Cancel("returned goods", operatorID, now, window))

		// Short justification AND expired window: state failure still wins
		expired := sale.CompletedAt.Add(window).Add(time.Hour)
		err := sale.Cancel("short", operatorID, expired, window)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("justification checked before window", func(t *testing.T) {
		sale := newCompletedSale(t)
		expired := sale.CompletedAt.Add(window).Add(time.Hour)

		err := sale.Cancel("short", operatorID, expired, window)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})
}
