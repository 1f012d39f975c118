package types

import "github.com/google/uuid"

// Actor identifies who owns request-scoped state: a signed-in user or an
// anonymous guest session. At most one side is set.
type Actor struct {
	UserID         *uuid.UUID
	GuestSessionID *string
}

// UserActor builds an actor for a signed-in user.
func UserActor(userID uuid.UUID) Actor {
	return Actor{UserID: &userID}
}

// GuestActor builds an actor for an anonymous guest session.
func GuestActor(sessionID string) Actor {
	return Actor{GuestSessionID: &sessionID}
}

// IsUser reports whether the actor is a signed-in user.
func (a Actor) IsUser() bool {
	return a.UserID != nil
}

// IsZero reports whether no identity is attached at all.
func (a Actor) IsZero() bool {
	return a.UserID == nil && (a.GuestSessionID == nil || *a.GuestSessionID == "")
}

// Subject returns a stable string key for the actor, used to namespace
// per-actor redis state.
func (a Actor) Subject() string {
	if a.UserID != nil {
		return a.UserID.String()
	}
	if a.GuestSessionID != nil {
		return *a.GuestSessionID
	}
	return ""
}
