package auth

import (
	"fmt"
	"strings"
)

// Scope narrows a permission to the caller's own records.
type Scope string

const (
	ScopeAny Scope = "any"
	ScopeOwn Scope = "own"
)

// Permission is a structured grant. Stored permission names use the
// resource:action or resource:action_own form; parsing happens once at
// the boundary and every check afterwards is set membership.
type Permission struct {
	Resource string
	Action   string
	Scope    Scope
}

// Grants used by the route table.
var (
	PermUsersRead     = Permission{Resource: "users", Action: "read", Scope: ScopeAny}
	PermUsersWrite    = Permission{Resource: "users", Action: "write", Scope: ScopeAny}
	PermUsersDelete   = Permission{Resource: "users", Action: "delete", Scope: ScopeAny}
	PermUsersReadOwn  = Permission{Resource: "users", Action: "read", Scope: ScopeOwn}
	PermUsersWriteOwn = Permission{Resource: "users", Action: "write", Scope: ScopeOwn}

	PermCountriesRead   = Permission{Resource: "countries", Action: "read", Scope: ScopeAny}
	PermCountriesWrite  = Permission{Resource: "countries", Action: "write", Scope: ScopeAny}
	PermCountriesDelete = Permission{Resource: "countries", Action: "delete", Scope: ScopeAny}

	PermBoatsRead   = Permission{Resource: "boats", Action: "read", Scope: ScopeAny}
	PermBoatsWrite  = Permission{Resource: "boats", Action: "write", Scope: ScopeAny}
	PermBoatsDelete = Permission{Resource: "boats", Action: "delete", Scope: ScopeAny}
)

// ParsePermission converts a stored permission name into a Permission.
func ParsePermission(name string) (Permission, error) {
	name = strings.TrimSpace(name)
	resource, action, ok := strings.Cut(name, ":")
	if !ok || resource == "" || action == "" {
		return Permission{}, fmt.Errorf("malformed permission %q", name)
	}
	scope := ScopeAny
	if rest, found := strings.CutSuffix(action, "_own"); found {
		if rest == "" {
			return Permission{}, fmt.Errorf("malformed permission %q", name)
		}
		action = rest
		scope = ScopeOwn
	}
	return Permission{Resource: resource, Action: action, Scope: scope}, nil
}

// String renders the stored name form.
func (p Permission) String() string {
	if p.Scope == ScopeOwn {
		return p.Resource + ":" + p.Action + "_own"
	}
	return p.Resource + ":" + p.Action
}

// PermissionSet supports O(1) membership checks on structured grants.
type PermissionSet map[Permission]struct{}

// NewPermissionSet parses stored names into a set. Names that do not
// parse are dropped rather than failing the whole login.
func NewPermissionSet(names []string) PermissionSet {
	set := make(PermissionSet, len(names))
	for _, name := range names {
		p, err := ParsePermission(name)
		if err != nil {
			continue
		}
		set[p] = struct{}{}
	}
	return set
}

// Has reports exact membership.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// HasOwnScoped reports whether any own-scoped grant is present.
func (s PermissionSet) HasOwnScoped() bool {
	for p := range s {
		if p.Scope == ScopeOwn {
			return true
		}
	}
	return false
}

// Names returns the stored-name form of every grant, for token claims.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for p := range s {
		names = append(names, p.String())
	}
	return names
}
