package persistence

import (
	"context"

	"github.com/agency/backoffice/internal/domain/activity"
	"github.com/agency/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormActivityLogRepository implements activity.Repository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

var _ activity.Repository = (*GormActivityLogRepository)(nil)

// Save appends a log entry
func (r *GormActivityLogRepository) Save(ctx context.Context, log *activity.Log) error {
	return r.db.WithContext(ctx).Create(models.ActivityLogModelFromDomain(log)).Error
}

// FindAllForTenant returns one page of log entries, newest first by default
func (r *GormActivityLogRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter activity.Filter) ([]activity.Log, error) {
	var rows []models.ActivityLogModel
	query := r.db.WithContext(ctx).Model(&models.ActivityLogModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)
	query = orderAndPage(query, filter.Filter, ActivityLogSortFields, "occurred_at")

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]activity.Log, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// CountForTenant counts log entries matching the filter
func (r *GormActivityLogRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter activity.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ActivityLogModel{}).
		Where("tenant_id = ?", tenantID)
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormActivityLogRepository) applyFilter(query *gorm.DB, filter activity.Filter) *gorm.DB {
	query = searchAny(query, filter.Search, "action", "summary")
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	return query
}
