package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM handle backed by a mocked SQL connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockAccountRepository(t *testing.T) (*GormAccountRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormAccountRepository(gormDB), mock, mockDB
}

func accountRows(accountID, tenantID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "version", "code", "name", "type", "opening_balance", "current_balance", "active"}).
		AddRow(accountID, tenantID, 1, "BANK-001", "Main bank account", "BANK", decimal.NewFromInt(100), decimal.NewFromInt(350), true)
}

func TestGormAccountRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds account within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, accountID, 1).
			WillReturnRows(accountRows(accountID, tenantID))

		account, err := repo.FindByIDForTenant(context.Background(), tenantID, accountID)

		assert.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, accountID, account.ID)
		assert.Equal(t, "BANK-001", account.Code)
		assert.Equal(t, ledger.AccountTypeBank, account.Type)
		assert.True(t, account.CurrentBalance.Equal(decimal.NewFromInt(350)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing account", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, accountID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		account, err := repo.FindByIDForTenant(context.Background(), tenantID, accountID)

		assert.Nil(t, account)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAccountRepository_FindByIDForTenantLocked(t *testing.T) {
	t.Run("issues FOR UPDATE lock", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, accountID, 1).
			WillReturnRows(accountRows(accountID, tenantID))

		account, err := repo.FindByIDForTenantLocked(context.Background(), tenantID, accountID)

		assert.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, accountID, account.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
