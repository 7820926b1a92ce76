package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormEntryRepository implements ledger.EntryRepository using GORM
type GormEntryRepository struct {
	db *gorm.DB
}

// NewGormEntryRepository creates a new GormEntryRepository
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	return &GormEntryRepository{db: db}
}

// Create inserts a new ledger entry. A unique violation on the
// (tenant, source document, source screen) index is translated to
// shared.ErrAlreadyExists so the posting path can absorb duplicates.
func (r *GormEntryRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	model := models.EntryModelFromDomain(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByIDForTenant finds an entry by ID within a tenant
func (r *GormEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Entry, error) {
	var model models.EntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySource looks up an entry by its idempotency key
func (r *GormEntryRepository) FindBySource(ctx context.Context, tenantID, sourceDocumentID uuid.UUID, sourceScreen ledger.SourceScreen) (*ledger.Entry, error) {
	var model models.EntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_document_id = ? AND source_screen = ?", tenantID, sourceDocumentID, sourceScreen).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByAccountAndDay returns the account's entries dated on the given
// calendar day, in chronological order
func (r *GormEntryRepository) ListByAccountAndDay(ctx context.Context, tenantID, accountID uuid.UUID, day time.Time) ([]*ledger.Entry, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var entryModels []models.EntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND account_id = ? AND entry_date >= ? AND entry_date < ?",
			tenantID, accountID, dayStart, dayEnd).
		Order("entry_date ASC, created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*ledger.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = model.ToDomain()
	}
	return entries, nil
}

// ListByAccount returns all entries for the account in chronological order
func (r *GormEntryRepository) ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]*ledger.Entry, error) {
	var entryModels []models.EntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND account_id = ?", tenantID, accountID).
		Order("entry_date ASC, created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*ledger.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = model.ToDomain()
	}
	return entries, nil
}

// UpdateSnapshot rewrites the balance-before/after cache of an entry
func (r *GormEntryRepository) UpdateSnapshot(ctx context.Context, entry *ledger.Entry) error {
	return r.db.WithContext(ctx).
		Model(&models.EntryModel{}).
		Where("tenant_id = ? AND id = ?", entry.TenantID, entry.ID).
		Updates(map[string]interface{}{
			"balance_before": entry.BalanceBefore,
			"balance_after":  entry.BalanceAfter,
		}).Error
}

// SumByDirection aggregates entry amounts for the account by direction
func (r *GormEntryRepository) SumByDirection(ctx context.Context, tenantID, accountID uuid.UUID, direction ledger.EntryDirection) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}

	if err := r.db.WithContext(ctx).
		Model(&models.EntryModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("tenant_id = ? AND account_id = ? AND direction = ?", tenantID, accountID, direction).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}

	return result.Total, nil
}

// Ensure GormEntryRepository implements ledger.EntryRepository
var _ ledger.EntryRepository = (*GormEntryRepository)(nil)
