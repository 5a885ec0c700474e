package audit

import "context"

type actorKey struct{}

// WithActor attaches the authenticated user to ctx for audit records.
func WithActor(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns nil for system-initiated work such as the reconciler.
func ActorFrom(ctx context.Context) *uint {
	id, ok := ctx.Value(actorKey{}).(uint)
	if !ok {
		return nil
	}
	return &id
}
