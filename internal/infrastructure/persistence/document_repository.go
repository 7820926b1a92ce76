package persistence

import (
	"context"
	"errors"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentRepository implements settlement.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Create creates a new document
func (r *GormDocumentRepository) Create(ctx context.Context, document *settlement.Document) error {
	model := models.DocumentModelFromDomain(document)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByIDForTenant finds a document by ID within a tenant
func (r *GormDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Document, error) {
	var model models.DocumentModel
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

// Save updates an existing document
func (r *GormDocumentRepository) Save(ctx context.Context, document *settlement.Document) error {
	model := models.DocumentModelFromDomain(document)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormDocumentRepository implements settlement.DocumentRepository
var _ settlement.DocumentRepository = (*GormDocumentRepository)(nil)

// GormInstallmentRepository implements settlement.InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// Create creates a new installment
func (r *GormInstallmentRepository) Create(ctx context.Context, installment *settlement.Installment) error {
	model := models.InstallmentModelFromDomain(installment)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByIDForTenant finds an installment by ID within a tenant
func (r *GormInstallmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Installment, error) {
	var model models.InstallmentModel
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

// FindByIDForTenantLocked finds an installment with an exclusive row lock
func (r *GormInstallmentRepository) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Installment, error) {
	var model models.InstallmentModel
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

// ListByDocument returns a document's installments ordered by sequence
func (r *GormInstallmentRepository) ListByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]*settlement.Installment, error) {
	var installmentModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_id = ?", tenantID, documentID).
		Order("sequence ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}

	installments := make([]*settlement.Installment, len(installmentModels))
	for i, model := range installmentModels {
		installments[i] = model.ToDomain()
	}
	return installments, nil
}

// CountByStatus counts a document's installments grouped by status
func (r *GormInstallmentRepository) CountByStatus(ctx context.Context, tenantID, documentID uuid.UUID) (settlement.StatusCounts, error) {
	var rows []struct {
		Status settlement.InstallmentStatus
		Count  int64
	}

	if err := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Select("status, COUNT(*) as count").
		Where("tenant_id = ? AND document_id = ?", tenantID, documentID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return settlement.StatusCounts{}, err
	}

	var counts settlement.StatusCounts
	for _, row := range rows {
		switch row.Status {
		case settlement.InstallmentStatusPending:
			counts.Pending = row.Count
		case settlement.InstallmentStatusSettled:
			counts.Settled = row.Count
		}
	}
	return counts, nil
}

// Save updates an existing installment
func (r *GormInstallmentRepository) Save(ctx context.Context, installment *settlement.Installment) error {
	model := models.InstallmentModelFromDomain(installment)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormInstallmentRepository implements settlement.InstallmentRepository
var _ settlement.InstallmentRepository = (*GormInstallmentRepository)(nil)
