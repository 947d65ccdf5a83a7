package ledger

import (
	"context"
	"time"

	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionFilter extends the shared filter with ledger-specific fields
type TransactionFilter struct {
	shared.Filter
	Type          *TransactionType
	Status        *TransactionStatus
	PaymentMethod *PaymentMethod
	ContactID     *uuid.UUID
	FromDate      *time.Time
	ToDate        *time.Time
}

// TransactionRepository persists transactions
type TransactionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Transaction, error)

	// FindAllForTenant returns a page of transactions matching the filter
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) ([]Transaction, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) (int64, error)

	// ListAllForTenant returns every transaction of the tenant, unpaged.
	// The aggregator needs full history for cash, bank, receivable and
	// overdue figures.
	ListAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Transaction, error)

	Save(ctx context.Context, tx *Transaction) error
	SaveWithLock(ctx context.Context, tx *Transaction) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// GenerateNumber returns the next document number for the type,
	// e.g. INV-202401-00007
	GenerateNumber(ctx context.Context, tenantID uuid.UUID, txType TransactionType) (string, error)
}
