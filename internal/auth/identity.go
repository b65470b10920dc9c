package auth

import (
	"context"
	"slices"
	"strings"
)

// Role names seeded into the database.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID      string
	Email       string
	Name        string
	Roles       []string
	Permissions PermissionSet
	// Token is the raw bearer token the identity was built from, kept so
	// handlers can hand it back (refresh, echo).
	Token string
}

// HasRole reports membership in the named role.
func (id Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return id.HasRole(RoleAdmin)
}

// Can reports whether the identity may perform p. Admins may do
// anything; everyone else needs the exact grant.
func (id Identity) Can(p Permission) bool {
	if id.IsAdmin() {
		return true
	}
	return id.Permissions.Has(p)
}

type ctxKey string

const identityKey ctxKey = "auth_identity"

// ContextWithIdentity attaches the authenticated caller to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// ExtractBearerToken pulls the token out of an Authorization header.
// Only the literal "Bearer " scheme is recognized; anything else is
// reported as absent, not as an error.
func ExtractBearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := header[len(prefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
