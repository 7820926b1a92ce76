package cashier

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenSession(t *testing.T, openingFloat decimal.Decimal) *Session {
	t.Helper()
	session, err := OpenSession(uuid.New(), uuid.New(), "REG-01", openingFloat)
	require.NoError(t, err)
	return session
}

func TestOpenSession(t *testing.T) {
	tenantID := uuid.New()
	operatorID := uuid.New()

	t.Run("opens session", func(t *testing.T) {
		session, err := OpenSession(tenantID, operatorID, "REG-01", decimal.NewFromInt(100))
		require.NoError(t, err)

		assert.True(t, session.IsOpen())
		assert.Nil(t, session.ClosedAt)
		assert.Nil(t, session.Variance)
	})

	t.Run("rejects empty operator", func(t *testing.T) {
		_, err := OpenSession(tenantID, uuid.Nil, "REG-01", decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects empty register code", func(t *testing.T) {
		_, err := OpenSession(tenantID, operatorID, "", decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects negative opening float", func(t *testing.T) {
		_, err := OpenSession(tenantID, operatorID, "REG-01", decimal.NewFromInt(-10))
		assert.Error(t, err)
	})
}

func TestSession_ExpectedClosingAmount(t *testing.T) {
	session := newOpenSession(t, decimal.NewFromInt(100))

	// 100 float + 350 sales - 50 cash out + 0 cash in = 400
	expected := session.ExpectedClosingAmount(
		decimal.NewFromInt(350),
		decimal.NewFromInt(50),
		decimal.Zero,
	)
	assert.True(t, expected.Equal(decimal.NewFromInt(400)))
}

func TestSession_Close(t *testing.T) {
	t.Run("exact count closes with zero variance", func(t *testing.T) {
		session := newOpenSession(t, decimal.NewFromInt(100))

		// Sales of 100 and 250, one cash out of 50
		saleTotal := decimal.NewFromInt(350)
		cashOut := decimal.NewFromInt(50)
		expected := session.ExpectedClosingAmount(saleTotal, cashOut, decimal.Zero)
		require.True(t, expected.Equal(decimal.NewFromInt(400)))

		breakdown := PaymentBreakdown{PaymentMethodCash: saleTotal}
		err := session.Close(decimal.NewFromInt(400), expected, breakdown, "")
		require.NoError(t, err)

		assert.False(t, session.IsOpen())
		require.NotNil(t, session.Variance)
		assert.True(t, session.Variance.IsZero())
		require.NotNil(t, session.ClosedAt)
		assert.Equal(t, breakdown, session.Breakdown)
	})

	t.Run("variance is counted minus expected, decimal exact", func(t *testing.T) {
		session := newOpenSession(t, decimal.NewFromFloat(100.00))

		expected := decimal.NewFromFloat(400.10)
		counted := decimal.NewFromFloat(398.50)

		err := session.Close(counted, expected, nil, "short drawer")
		require.NoError(t, err)

		require.NotNil(t, session.Variance)
		assert.True(t, session.Variance.Equal(decimal.NewFromFloat(-1.60)))
		assert.Equal(t, "short drawer", session.Notes)
	})

	t.Run("rejects negative counted amount", func(t *testing.T) {
		session := newOpenSession(t, decimal.Zero)
		err := session.Close(decimal.NewFromInt(-1), decimal.Zero, nil, "")
		assert.Error(t, err)
		assert.True(t, session.IsOpen())
	})

	t.Run("closing twice fails", func(t *testing.T) {
		session := newOpenSession(t, decimal.Zero)
		require.NoError(t, session.Close(decimal.Zero, decimal.Zero, nil, ""))

		err := session.Close(decimal.Zero, decimal.Zero, nil, "")
		assert.Error(t, err)
	})
}

func TestPaymentBreakdown_ValueScan(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		original := PaymentBreakdown{
			PaymentMethodCash: decimal.NewFromFloat(350.50),
			PaymentMethodCard: decimal.NewFromInt(120),
		}

		value, err := original.Value()
		require.NoError(t, err)

		var scanned PaymentBreakdown
		require.NoError(t, scanned.Scan(value))

		require.Len(t, scanned, 2)
		assert.True(t, scanned[PaymentMethodCash].Equal(decimal.NewFromFloat(350.50)))
		assert.True(t, scanned[PaymentMethodCard].Equal(decimal.NewFromInt(120)))
	})

	t.Run("nil map stores empty object", func(t *testing.T) {
		var b PaymentBreakdown
		value, err := b.Value()
		require.NoError(t, err)
		assert.Equal(t, "{}", value)
	})

	t.Run("scanning nil yields empty map", func(t *testing.T) {
		var b PaymentBreakdown
		require.NoError(t, b.Scan(nil))
		assert.NotNil(t, b)
		assert.Empty(t, b)
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var b PaymentBreakdown
		assert.Error(t, b.Scan(42))
	})
}
