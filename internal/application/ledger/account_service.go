package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateAccountInput carries the parameters to open a financial account
type CreateAccountInput struct {
	TenantID       uuid.UUID
	Code           string
	Name           string
	Type           ledger.AccountType
	OpeningBalance decimal.Decimal
}

// AccountService manages financial accounts
type AccountService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(scope TransactionScope, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{scope: scope, logger: logger}
}

// Create opens a new account. The account code is unique per tenant.
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*ledger.Account, error) {
	account, err := ledger.NewAccount(input.TenantID, input.Code, input.Name, input.Type, input.OpeningBalance)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos Repositories) error {
		if err := repos.Accounts().Create(ctx, account); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return shared.NewDomainError("ALREADY_EXISTS", "An account with this code already exists")
			}
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created",
		zap.String("account_id", account.ID.String()),
		zap.String("code", account.Code),
	)

	return account, nil
}

// Get loads an account by ID
func (s *AccountService) Get(ctx context.Context, tenantID, accountID uuid.UUID) (*ledger.Account, error) {
	var account *ledger.Account
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var err error
		account, err = repos.Accounts().FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrAccountNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListEntries returns the full entry log of an account in posting order
func (s *AccountService) ListEntries(ctx context.Context, tenantID, accountID uuid.UUID) ([]*ledger.Entry, error) {
	var entries []*ledger.Entry
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		if _, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, accountID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrAccountNotFound
			}
			return err
		}
		var err error
		entries, err = repos.Entries().ListByAccount(ctx, tenantID, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
