package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/settlement/internal/domain/cashier"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMockSessionRepository(t *testing.T) (*GormSessionRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormSessionRepository(gormDB), mock, mockDB
}

func openSessionRows(sessionID, tenantID, operatorID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "version", "operator_id", "register_code", "opening_float", "opened_at", "status", "breakdown", "notes"}).
		AddRow(sessionID, tenantID, 1, operatorID, "PDV-01", decimal.NewFromInt(100), time.Date(2026, 8, 15, 8, 0, 0, 0, time.UTC), "OPEN", `{}`, "")
}

func TestGormSessionRepository_FindByIDForTenantLocked(t *testing.T) {
	t.Run("issues FOR UPDATE lock", func(t *testing.T) {
		repo, mock, mockDB := newMockSessionRepository(t)
		defer mockDB.Close()

		sessionID := uuid.New()
		tenantID := uuid.New()
		operatorID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cash_sessions" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, sessionID, 1).
			WillReturnRows(openSessionRows(sessionID, tenantID, operatorID))

		session, err := repo.FindByIDForTenantLocked(context.Background(), tenantID, sessionID)

		assert.NoError(t, err)
		require.NotNil(t, session)
		assert.True(t, session.IsOpen())
		assert.Equal(t, "PDV-01", session.RegisterCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSessionRepository_FindOpenByOperatorAndRegister(t *testing.T) {
	t.Run("finds the open session for the pair", func(t *testing.T) {
		repo, mock, mockDB := newMockSessionRepository(t)
		defer mockDB.Close()

		sessionID := uuid.New()
		tenantID := uuid.New()
		operatorID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cash_sessions" WHERE tenant_id = \$1 AND operator_id = \$2 AND register_code = \$3 AND status = \$4 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, operatorID, "PDV-01", "OPEN", 1).
			WillReturnRows(openSessionRows(sessionID, tenantID, operatorID))

		session, err := repo.FindOpenByOperatorAndRegister(context.Background(), tenantID, operatorID, "PDV-01")

		assert.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, sessionID, session.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no session is open", func(t *testing.T) {
		repo, mock, mockDB := newMockSessionRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		operatorID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cash_sessions" WHERE tenant_id = \$1 AND operator_id = \$2 AND register_code = \$3 AND status = \$4 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, operatorID, "PDV-01", "OPEN", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		session, err := repo.FindOpenByOperatorAndRegister(context.Background(), tenantID, operatorID, "PDV-01")

		assert.Nil(t, session)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSessionRepository_Create(t *testing.T) {
	repo, mock, mockDB := newMockSessionRepository(t)
	defer mockDB.Close()

	session, err := cashier.OpenSession(uuid.New(), uuid.New(), "PDV-01", decimal.NewFromInt(100))
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "cash_sessions"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), session)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
