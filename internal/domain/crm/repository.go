package crm

import (
	"context"

	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactFilter extends the shared filter with contact fields
type ContactFilter struct {
	shared.Filter
	Type           *ContactType
	WithReceivable bool
}

// ContactRepository persists contacts and their receivables
type ContactRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Contact, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ContactFilter) ([]Contact, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ContactFilter) (int64, error)

	// ListWithReceivables returns every contact of the tenant that has at
	// least one receivable entry
	ListWithReceivables(ctx context.Context, tenantID uuid.UUID) ([]Contact, error)

	Save(ctx context.Context, contact *Contact) error
	SaveWithLock(ctx context.Context, contact *Contact) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
