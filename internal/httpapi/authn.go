package httpapi

import (
	"errors"
	"net/http"

	"windspire.org/internal/auth"
)

const authHeader = "Authorization"

// Entry points reachable without a session. Everything else under /api
// requires a valid bearer token.
var publicPaths = []string{
	"/healthz",
	"/readyz",
	"/metrics",
	"/api/auth/firebase",
	"/api/auth/login",
	"/api/auth/callback",
	"/api/auth/refresh",
}

// withAuth authenticates every non-public request: it extracts the
// bearer token, validates it, and attaches the caller's identity to the
// context. Missing, malformed, expired, and forged tokens all map to
// 401 with distinct messages.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := auth.ExtractBearerToken(r.Header.Get(authHeader))
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := a.tokens.Validate(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				writeError(w, r, http.StatusUnauthorized, "token expired")
			case errors.Is(err, auth.ErrInvalidToken):
				writeError(w, r, http.StatusUnauthorized, "invalid token")
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), auth.IdentityFromClaims(claims, token))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// identity pulls the authenticated caller or writes 401.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	}
	return id, ok
}
