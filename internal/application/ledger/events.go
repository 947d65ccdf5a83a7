package ledger

import (
	"context"

	"github.com/agency/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// publishEvents flushes the aggregate's pending events. Delivery failures
// are logged; the write has already been committed.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, log *zap.Logger, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		log.Warn("Failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}
