package persistence

import (
	"context"
	"time"

	"github.com/erp/settlement/internal/domain/audit"
	"github.com/erp/settlement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditRecorder implements audit.Recorder by appending rows to the
// audit_logs table. Writes happen outside the caller's business
// transaction: a failed audit insert never rolls back the operation.
type GormAuditRecorder struct {
	db *gorm.DB
}

// NewGormAuditRecorder creates a new GormAuditRecorder
func NewGormAuditRecorder(db *gorm.DB) *GormAuditRecorder {
	return &GormAuditRecorder{db: db}
}

// Record appends an audit entry
func (r *GormAuditRecorder) Record(ctx context.Context, entry audit.Entry) error {
	now := time.Now()
	model := models.AuditLogModelFromDomain(entry)
	model.BaseModel = models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	return r.db.WithContext(ctx).Create(model).Error
}

// Ensure GormAuditRecorder implements audit.Recorder
var _ audit.Recorder = (*GormAuditRecorder)(nil)
