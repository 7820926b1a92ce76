package models

import (
	"github.com/erp/settlement/internal/domain/audit"
	"github.com/google/uuid"
)

// AuditLogModel is the persistence model for audit records. The table is
// append-only; rows are never updated or deleted by the application.
type AuditLogModel struct {
	BaseModel
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Action      string    `gorm:"type:varchar(100);not null;index"`
	EntityType  string    `gorm:"type:varchar(50);not null"`
	EntityID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Description string    `gorm:"type:text"`
	Metadata    JSONMap   `gorm:"type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// AuditLogModelFromDomain creates a persistence model from an audit entry
func AuditLogModelFromDomain(e audit.Entry) *AuditLogModel {
	return &AuditLogModel{
		TenantID:    e.TenantID,
		ActorID:     e.ActorID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
		Metadata:    JSONMap(e.Metadata),
	}
}
