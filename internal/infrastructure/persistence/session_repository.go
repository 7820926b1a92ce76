package persistence

import (
	"context"
	"errors"

	"github.com/erp/settlement/internal/domain/cashier"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSessionRepository implements cashier.SessionRepository using GORM
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Create creates a new session
func (r *GormSessionRepository) Create(ctx context.Context, session *cashier.Session) error {
	model := models.SessionModelFromDomain(session)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByIDForTenant finds a session by ID within a tenant
func (r *GormSessionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashier.Session, error) {
	var model models.SessionModel
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

// FindByIDForTenantLocked finds a session with an exclusive row lock
func (r *GormSessionRepository) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*cashier.Session, error) {
	var model models.SessionModel
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

// FindOpenByOperatorAndRegister returns the open session for an
// operator/register pair, or shared.ErrNotFound
func (r *GormSessionRepository) FindOpenByOperatorAndRegister(ctx context.Context, tenantID, operatorID uuid.UUID, registerCode string) (*cashier.Session, error) {
	var model models.SessionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND operator_id = ? AND register_code = ? AND status = ?",
			tenantID, operatorID, registerCode, cashier.SessionStatusOpen).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save updates an existing session
func (r *GormSessionRepository) Save(ctx context.Context, session *cashier.Session) error {
	model := models.SessionModelFromDomain(session)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormSessionRepository implements cashier.SessionRepository
var _ cashier.SessionRepository = (*GormSessionRepository)(nil)
