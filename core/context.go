package core

import (
	"context"

	"github.com/google/uuid"
)

// Context keys for ranking options
type contextKey string

const sessionIDKey contextKey = "sessionID"

// WithSessionID tags the context with the session that issues ranking requests.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// sessionIDFrom returns the session id of the context, or a fresh one when none is set.
func sessionIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
