package requestctx

import (
	"context"

	"github.com/sydney-cole/oscars-ballot/pkg/identity"
)

type ctxKey string

const (
	correlationIDKey ctxKey = "correlation_id"
	identityKey      ctxKey = "identity"
)

// WithCorrelationID returns a new context with the provided correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID fetches the correlation ID from the context, if any.
func CorrelationID(ctx context.Context) string {
	v := ctx.Value(correlationIDKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// WithIdentity stores the verified caller.
func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Identity returns the caller, or the anonymous identity when none was stored.
func Identity(ctx context.Context) identity.Identity {
	id, _ := ctx.Value(identityKey).(identity.Identity)
	return id
}
