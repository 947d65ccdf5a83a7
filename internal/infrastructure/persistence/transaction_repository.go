package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/agency/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db, now: time.Now}
}

var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)

// FindByIDForTenant finds a transaction by ID for a specific tenant
func (r *GormTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
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

// FindByNumber finds a transaction by its invoice number
func (r *GormTransactionRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant returns one page of transactions matching the filter
func (r *GormTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	var rows []models.TransactionModel
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)
	query = orderAndPage(query, filter.Filter, TransactionSortFields, "date")

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTransactions(rows), nil
}

// CountForTenant counts transactions matching the filter
func (r *GormTransactionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("tenant_id = ?", tenantID)
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListAllForTenant returns the tenant's full history, newest first
func (r *GormTransactionRepository) ListAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]ledger.Transaction, error) {
	var rows []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("date DESC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTransactions(rows), nil
}

func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter ledger.TransactionFilter) *gorm.DB {
	query = searchAny(query, filter.Search,
		"invoice_number", "contact_name", "customer_name", "description", "category")

	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", string(*filter.PaymentMethod))
	}
	if filter.ContactID != nil {
		query = query.Where("contact_id = ?", *filter.ContactID)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}

// Save inserts or overwrites a transaction without a version check
func (r *GormTransactionRepository) Save(ctx context.Context, tx *ledger.Transaction) error {
	return r.db.WithContext(ctx).Save(models.TransactionModelFromDomain(tx)).Error
}

// SaveWithLock inserts a new transaction or updates an existing one only if
// its stored version still equals tx's version. On success the aggregate's
// version is bumped.
func (r *GormTransactionRepository) SaveWithLock(ctx context.Context, tx *ledger.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		model := models.TransactionModelFromDomain(tx)

		var current models.TransactionModel
		err := db.Select("version").Where("id = ? AND tenant_id = ?", tx.ID, tx.TenantID).First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.Create(model).Error
		}
		if err != nil {
			return err
		}

		if err := updateVersioned(db, &models.TransactionModel{}, model, tx.ID, tx.Version); err != nil {
			return err
		}
		tx.IncrementVersion()
		return nil
	})
}

// DeleteForTenant hard deletes a transaction
func (r *GormTransactionRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GenerateNumber returns the next number in the type's monthly sequence,
// e.g. INV-202406-00008. The sequence continues from the highest existing
// number so deleted rows never cause reuse.
func (r *GormTransactionRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID, txType ledger.TransactionType) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", txType.NumberPrefix(), r.now().Format("200601"))

	var last []string
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("tenant_id = ? AND invoice_number LIKE ?", tenantID, prefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &last).Error; err != nil {
		return "", err
	}

	next := 1
	if len(last) > 0 {
		seq, err := strconv.Atoi(strings.TrimPrefix(last[0], prefix))
		if err != nil {
			return "", fmt.Errorf("unparseable document number %q: %w", last[0], err)
		}
		next = seq + 1
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}

// updateVersioned overwrites the row with id if its version is still
// expected, bumping the stored version by one
func updateVersioned(db *gorm.DB, table any, row any, id uuid.UUID, expected int) error {
	result := db.Model(table).
		Where("id = ? AND version = ?", id, expected).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by", "version").
		Updates(row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return db.Model(table).
		Where("id = ?", id).
		UpdateColumn("version", gorm.Expr("version + 1")).Error
}

func toTransactions(rows []models.TransactionModel) []ledger.Transaction {
	out := make([]ledger.Transaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}
