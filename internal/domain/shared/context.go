package shared

import (
	"context"

	"github.com/google/uuid"
)

type actorKey struct{}

// WithActor stores the acting user on the context so event handlers can
// attribute changes without the aggregate knowing who made them.
func WithActor(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext returns the acting user, if one was stored
func ActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(actorKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
