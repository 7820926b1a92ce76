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
)

// GormMovementRepository implements cashier.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create creates a new cash movement
func (r *GormMovementRepository) Create(ctx context.Context, movement *cashier.Movement) error {
	model := models.MovementModelFromDomain(movement)
	return r.db.WithContext(ctx).Create(model).Error
}

// ListBySession returns a session's movements in recording order
func (r *GormMovementRepository) ListBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*cashier.Movement, error) {
	var movementModels []models.MovementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("created_at ASC").
		Find(&movementModels).Error; err != nil {
		return nil, err
	}

	movements := make([]*cashier.Movement, len(movementModels))
	for i, model := range movementModels {
		movements[i] = model.ToDomain()
	}
	return movements, nil
}

// SumBySessionAndKind aggregates movement amounts for a session by kind
func (r *GormMovementRepository) SumBySessionAndKind(ctx context.Context, tenantID, sessionID uuid.UUID, kind cashier.MovementKind) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}

	if err := r.db.WithContext(ctx).
		Model(&models.MovementModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("tenant_id = ? AND session_id = ? AND kind = ?", tenantID, sessionID, kind).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}

	return result.Total, nil
}

// Ensure GormMovementRepository implements cashier.MovementRepository
var _ cashier.MovementRepository = (*GormMovementRepository)(nil)

// GormSuspendedSaleRepository implements cashier.SuspendedSaleRepository using GORM
type GormSuspendedSaleRepository struct {
	db *gorm.DB
}

// NewGormSuspendedSaleRepository creates a new GormSuspendedSaleRepository
func NewGormSuspendedSaleRepository(db *gorm.DB) *GormSuspendedSaleRepository {
	return &GormSuspendedSaleRepository{db: db}
}

// Create parks a cart
func (r *GormSuspendedSaleRepository) Create(ctx context.Context, suspended *cashier.SuspendedSale) error {
	model := models.SuspendedSaleModelFromDomain(suspended)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByIDForTenant finds a parked cart by ID within a tenant
func (r *GormSuspendedSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashier.SuspendedSale, error) {
	var model models.SuspendedSaleModel
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

// ListBySession returns a session's parked carts
func (r *GormSuspendedSaleRepository) ListBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*cashier.SuspendedSale, error) {
	var suspendedModels []models.SuspendedSaleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("suspended_at ASC").
		Find(&suspendedModels).Error; err != nil {
		return nil, err
	}

	suspended := make([]*cashier.SuspendedSale, len(suspendedModels))
	for i, model := range suspendedModels {
		suspended[i] = model.ToDomain()
	}
	return suspended, nil
}

// Delete removes a parked cart (the resume path)
func (r *GormSuspendedSaleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.SuspendedSaleModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSuspendedSaleRepository implements cashier.SuspendedSaleRepository
var _ cashier.SuspendedSaleRepository = (*GormSuspendedSaleRepository)(nil)
