package persistence

import (
	"context"
	"errors"

	"github.com/agency/backoffice/internal/domain/crm"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/agency/backoffice/internal/infrastructure/logger"
	"github.com/agency/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormContactRepository implements crm.ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

var _ crm.ContactRepository = (*GormContactRepository)(nil)

// FindByIDForTenant finds a contact by ID for a specific tenant
func (r *GormContactRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Contact, error) {
	var model models.ContactModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllForTenant returns one page of contacts matching the filter
func (r *GormContactRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter crm.ContactFilter) ([]crm.Contact, error) {
	var rows []models.ContactModel
	query := r.db.WithContext(ctx).Model(&models.ContactModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)
	query = orderAndPage(query, filter.Filter, ContactSortFields, "name")

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toContacts(rows)
}

// CountForTenant counts contacts matching the filter
func (r *GormContactRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter crm.ContactFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ContactModel{}).
		Where("tenant_id = ?", tenantID)
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListWithReceivables returns every contact holding at least one
// receivable. It feeds the read-only ledger views, so a contact whose
// receivables cannot be decoded is logged and left out instead of failing
// the whole tenant.
func (r *GormContactRepository) ListWithReceivables(ctx context.Context, tenantID uuid.UUID) ([]crm.Contact, error) {
	var rows []models.ContactModel
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if err := withReceivables(query).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]crm.Contact, 0, len(rows))
	for i := range rows {
		c, err := rows[i].ToDomain()
		if err != nil {
			logger.L(ctx).Warn("Skipping contact with unreadable receivables",
				zap.String("contact_id", rows[i].ID.String()),
				zap.Error(err))
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *GormContactRepository) applyFilter(query *gorm.DB, filter crm.ContactFilter) *gorm.DB {
	query = searchAny(query, filter.Search, "name", "email", "phone")
	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if filter.WithReceivable {
		query = withReceivables(query)
	}
	return query
}

func withReceivables(query *gorm.DB) *gorm.DB {
	return query.Where("receivables IS NOT NULL AND receivables <> '[]'")
}

// Save inserts or overwrites a contact without a version check
func (r *GormContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	model, err := models.ContactModelFromDomain(contact)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock inserts a new contact or updates an existing one only if its
// stored version still equals the contact's version
func (r *GormContactRepository) SaveWithLock(ctx context.Context, contact *crm.Contact) error {
	model, err := models.ContactModelFromDomain(contact)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var current models.ContactModel
		err := db.Select("version").Where("id = ? AND tenant_id = ?", contact.ID, contact.TenantID).First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.Create(model).Error
		}
		if err != nil {
			return err
		}

		if err := updateVersioned(db, &models.ContactModel{}, model, contact.ID, contact.Version); err != nil {
			return err
		}
		contact.IncrementVersion()
		return nil
	})
}

// DeleteForTenant hard deletes a contact and its receivables
func (r *GormContactRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ContactModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toContacts(rows []models.ContactModel) ([]crm.Contact, error) {
	out := make([]crm.Contact, 0, len(rows))
	for i := range rows {
		c, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}
