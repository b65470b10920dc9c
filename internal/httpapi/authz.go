package httpapi

import (
	"net/http"

	"windspire.org/internal/auth"
)

type ownMode bool

const (
	// exactOnly requires the exact grant (or the admin role).
	exactOnly ownMode = false
	// allowOwn additionally lets callers through on any own-scoped
	// grant. This is a coarse scope check, not a per-resource ownership
	// proof; the handler still only sees what the store returns.
	allowOwn ownMode = true
)

// requirePermission authorizes an authenticated request:
// admin role passes unconditionally, then the exact grant, then, when
// the route allows it, any own-scoped grant. Everything else is 403.
func (a *API) requirePermission(perm auth.Permission, mode ownMode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identity(w, r)
			if !ok {
				return
			}
			if !a.authorized(id, perm, mode) {
				writeError(w, r, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *API) authorized(id auth.Identity, perm auth.Permission, mode ownMode) bool {
	if id.IsAdmin() {
		return true
	}
	if id.Permissions.Has(perm) {
		return true
	}
	return mode == allowOwn && id.Permissions.HasOwnScoped()
}
