package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agency/backoffice/internal/domain/activity"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// ListFilter is the activity-log endpoint's query
type ListFilter struct {
	Page       int
	PageSize   int
	Search     string
	EntityType string
	EntityID   *uuid.UUID
	ActorID    *uuid.UUID
	Oldest     bool
}

// LogResponse is the API view of an activity log
type LogResponse struct {
	ID         uuid.UUID       `json:"id"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Summary    string          `json:"summary"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Service lists the audit trail
type Service struct {
	repo activity.Repository
}

// NewService creates a Service
func NewService(repo activity.Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of logs, newest first unless Oldest is set
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]LogResponse, int64, error) {
	domainFilter := activity.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderDir: "desc",
			Search:   filter.Search,
		},
		EntityType: filter.EntityType,
		EntityID:   filter.EntityID,
		ActorID:    filter.ActorID,
	}
	if filter.Oldest {
		domainFilter.OrderDir = "asc"
	}

	logs, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]LogResponse, len(logs))
	for i, l := range logs {
		out[i] = LogResponse{
			ID:         l.ID,
			ActorID:    l.ActorID,
			Action:     l.Action,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Summary:    l.Summary,
			Payload:    json.RawMessage(l.Payload),
			OccurredAt: l.OccurredAt,
		}
	}
	return out, total, nil
}
