// Package middleware resolves the request identity and gates admin routes.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/storefront/internal/identity"
	"github.com/abgdnv/storefront/pkg/token"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/google/uuid"
)

const bearerPrefix = "Bearer "

// ResolveIdentity returns a middleware that attaches an identity to every request.
// A valid bearer token yields a user identity; otherwise the request runs under a
// guest identity tied to the session cookie, minting the cookie when absent.
// An Authorization header that fails verification is rejected, not downgraded.
func ResolveIdentity(secret, cookieName string, logger *slog.Logger) func(next http.Handler) http.Handler {
	mLogger := logger.With("component", "identity")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				id, ok := resolveUser(w, r, secret, authHeader, mLogger)
				if !ok {
					return
				}
				next.ServeHTTP(w, r.WithContext(identity.NewContext(r.Context(), id)))
				return
			}

			id := resolveGuest(w, r, cookieName)
			next.ServeHTTP(w, r.WithContext(identity.NewContext(r.Context(), id)))
		})
	}
}

func resolveUser(w http.ResponseWriter, r *http.Request, secret, authHeader string, logger *slog.Logger) (identity.Identity, bool) {
	raw, found := strings.CutPrefix(authHeader, bearerPrefix)
	if !found {
		web.RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: malformed Authorization header")
		return identity.Identity{}, false
	}

	subject, isAdmin, err := token.Parse(secret, raw)
	if err != nil {
		logger.WarnContext(r.Context(), "Token verification failed", "error", err)
		web.RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: invalid token")
		return identity.Identity{}, false
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		logger.WarnContext(r.Context(), "Token subject is not a valid user id", "subject", subject)
		web.RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: invalid token")
		return identity.Identity{}, false
	}

	return identity.Identity{Kind: identity.KindUser, ID: userID, Admin: isAdmin}, true
}

func resolveGuest(w http.ResponseWriter, r *http.Request, cookieName string) identity.Identity {
	if cookie, err := r.Cookie(cookieName); err == nil {
		if sessionID, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
			return identity.Identity{Kind: identity.KindGuest, ID: sessionID}
		}
	}

	// First contact: mint a session-scoped cookie for this guest.
	sessionID := uuid.New()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    sessionID.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return identity.Identity{Kind: identity.KindGuest, ID: sessionID}
}

// RequireAdmin rejects requests whose identity is not an authenticated admin.
func RequireAdmin(logger *slog.Logger) func(next http.Handler) http.Handler {
	mLogger := logger.With("component", "admin_gate")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identity.FromContext(r.Context())
			if !ok || id.Kind != identity.KindUser {
				web.RespondError(w, mLogger, http.StatusUnauthorized, "Unauthorized: authentication required")
				return
			}
			if !id.Admin {
				web.RespondError(w, mLogger, http.StatusForbidden, "Forbidden: admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
