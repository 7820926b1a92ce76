package persistence

import (
	"context"
	"errors"

	"github.com/erp/settlement/internal/domain/cashier"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements cashier.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create creates a new sale
func (r *GormSaleRepository) Create(ctx context.Context, sale *cashier.Sale) error {
	model := models.SaleModelFromDomain(sale)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByIDForTenant finds a sale by ID within a tenant
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashier.Sale, error) {
	var model models.SaleModel
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

// FindByIDForTenantLocked finds a sale with an exclusive row lock
func (r *GormSaleRepository) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*cashier.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListBySession returns a session's sales in completion order
func (r *GormSaleRepository) ListBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*cashier.Sale, error) {
	var saleModels []models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("completed_at ASC").
		Find(&saleModels).Error; err != nil {
		return nil, err
	}

	sales := make([]*cashier.Sale, len(saleModels))
	for i, model := range saleModels {
		sales[i] = model.ToDomain()
	}
	return sales, nil
}

// SumCompletedBySession aggregates completed sale totals for a session
func (r *GormSaleRepository) SumCompletedBySession(ctx context.Context, tenantID, sessionID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}

	if err := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Select("COALESCE(SUM(total), 0) as total").
		Where("tenant_id = ? AND session_id = ? AND status = ?", tenantID, sessionID, cashier.SaleStatusCompleted).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}

	return result.Total, nil
}

// SumCompletedByPaymentMethod aggregates completed sale totals for a
// session grouped by payment method
func (r *GormSaleRepository) SumCompletedByPaymentMethod(ctx context.Context, tenantID, sessionID uuid.UUID) (cashier.PaymentBreakdown, error) {
	var rows []struct {
		PaymentMethod cashier.PaymentMethod
		Total         decimal.Decimal
	}

	if err := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Select("payment_method, COALESCE(SUM(total), 0) as total").
		Where("tenant_id = ? AND session_id = ? AND status = ?", tenantID, sessionID, cashier.SaleStatusCompleted).
		Group("payment_method").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	breakdown := make(cashier.PaymentBreakdown, len(rows))
	for _, row := range rows {
		breakdown[row.PaymentMethod] = row.Total
	}
	return breakdown, nil
}

// Save updates an existing sale
func (r *GormSaleRepository) Save(ctx context.Context, sale *cashier.Sale) error {
	model := models.SaleModelFromDomain(sale)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormSaleRepository implements cashier.SaleRepository
var _ cashier.SaleRepository = (*GormSaleRepository)(nil)
