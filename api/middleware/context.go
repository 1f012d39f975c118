package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/pkg/types"
)

type contextKey string

const (
	ctxUserID       contextKey = "user_id"
	ctxGuestSession contextKey = "guest_session_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func GuestSessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxGuestSession).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext derives the request actor. A signed-in user wins over a
// guest session.
func ActorFromContext(ctx context.Context) types.Actor {
	if raw := UserIDFromContext(ctx); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return types.UserActor(id)
		}
	}
	if sessionID := GuestSessionFromContext(ctx); sessionID != "" {
		return types.GuestActor(sessionID)
	}
	return types.Actor{}
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithGuestSession injects the guest session identifier into the context.
func WithGuestSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxGuestSession, sessionID)
}
