package sessiondata

import (
	"context"

	"github.com/google/uuid"
)

type sessionDataKey struct{}

// SessionData scopes one request. SessionID is always set; UserID is uuid.Nil
// when no durable identity could be resolved, which routes personalization
// calls to the session-scoped fallback store.
type SessionData struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
}

func WithSessionData(ctx context.Context, sd *SessionData) context.Context {
	return context.WithValue(ctx, sessionDataKey{}, sd)
}

func GetSessionData(ctx context.Context) *SessionData {
	val := ctx.Value(sessionDataKey{})
	if sd, ok := val.(*SessionData); ok {
		return sd
	}
	return nil
}
