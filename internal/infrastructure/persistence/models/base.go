package models

import (
	"time"

	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantAggregateModel holds the columns every tenant-scoped aggregate has
type TenantAggregateModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	Version   int        `gorm:"not null;default:1"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

func tenantAggregateModelFromDomain(a shared.TenantAggregateRoot) TenantAggregateModel {
	return TenantAggregateModel{
		ID:        a.ID,
		TenantID:  a.TenantID,
		CreatedBy: a.CreatedBy,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (m TenantAggregateModel) toDomain() shared.TenantAggregateRoot {
	root := shared.TenantAggregateRoot{
		TenantID:  m.TenantID,
		CreatedBy: m.CreatedBy,
	}
	root.ID = m.ID
	root.CreatedAt = m.CreatedAt
	root.UpdatedAt = m.UpdatedAt
	root.Version = m.Version
	return root
}
