package activity

import (
	"context"
	"time"

	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Log is one entry in the tenant's audit trail. Transactions are hard
// deleted, so this is the only record of what they were.
type Log struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	Action     string     `json:"action"`
	EntityType string     `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	Summary    string     `json:"summary"`
	Payload    []byte     `json:"payload,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Filter narrows the log listing
type Filter struct {
	shared.Filter
	EntityType string
	EntityID   *uuid.UUID
	ActorID    *uuid.UUID
}

// Repository persists activity logs
type Repository interface {
	Save(ctx context.Context, log *Log) error
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Log, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) (int64, error)
}
