package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/pkg/logger"
)

const (
	guestSessionHeader = "X-Guest-Session"
	guestSessionCookie = "giftly_guest_session"
)

// GuestSession resolves the anonymous session identifier carried by the
// request, minting a fresh one when none is presented. The id is echoed back
// on both the response header and a long-lived cookie so browser and mobile
// clients can persist it.
func GuestSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := guestSessionID(r)
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(guestSessionHeader, sessionID)
			http.SetCookie(w, &http.Cookie{
				Name:     guestSessionCookie,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   30 * 24 * 60 * 60,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := WithGuestSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithGuestSession(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func guestSessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(guestSessionHeader)); id != "" {
		return id
	}
	if cookie, err := r.Cookie(guestSessionCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
