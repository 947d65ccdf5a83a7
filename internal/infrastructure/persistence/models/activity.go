package models

import (
	"time"

	"github.com/agency/backoffice/internal/domain/activity"
	"github.com/google/uuid"
)

// ActivityLogModel is the persistence model for activity.Log
type ActivityLogModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	Action     string     `gorm:"type:varchar(100);not null"`
	EntityType string     `gorm:"type:varchar(50);not null"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Summary    string     `gorm:"type:varchar(500)"`
	Payload    []byte     `gorm:"type:jsonb"`
	OccurredAt time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ActivityLogModel) TableName() string {
	return "activity_logs"
}

// ActivityLogModelFromDomain maps a log entry to its row
func ActivityLogModelFromDomain(l *activity.Log) *ActivityLogModel {
	return &ActivityLogModel{
		ID:         l.ID,
		TenantID:   l.TenantID,
		ActorID:    l.ActorID,
		Action:     l.Action,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Summary:    l.Summary,
		Payload:    l.Payload,
		OccurredAt: l.OccurredAt,
	}
}

// ToDomain converts the row to a log entry
func (m *ActivityLogModel) ToDomain() activity.Log {
	return activity.Log{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ActorID:    m.ActorID,
		Action:     m.Action,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Summary:    m.Summary,
		Payload:    m.Payload,
		OccurredAt: m.OccurredAt,
	}
}
