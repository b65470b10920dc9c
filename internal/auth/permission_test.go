package auth

import "testing"

func TestParsePermission(t *testing.T) {
	cases := []struct {
		name string
		want Permission
		ok   bool
	}{
		{"users:read", Permission{Resource: "users", Action: "read", Scope: ScopeAny}, true},
		{"users:read_own", Permission{Resource: "users", Action: "read", Scope: ScopeOwn}, true},
		{"boats:delete", Permission{Resource: "boats", Action: "delete", Scope: ScopeAny}, true},
		{" countries:write ", Permission{Resource: "countries", Action: "write", Scope: ScopeAny}, true},
		{"users", Permission{}, false},
		{"users:", Permission{}, false},
		{":read", Permission{}, false},
		{"users:_own", Permission{}, false},
		{"", Permission{}, false},
	}
	for _, tc := range cases {
		got, err := ParsePermission(tc.name)
		if tc.ok && err != nil {
			t.Fatalf("%q: unexpected error %v", tc.name, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q: expected error", tc.name)
			}
			continue
		}
		if got != tc.want {
			t.Fatalf("%q: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestPermissionStringRoundTrip(t *testing.T) {
	for _, name := range []string{"users:read", "users:write_own", "boats:delete"} {
		p, err := ParsePermission(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		if p.String() != name {
			t.Fatalf("round trip %q: got %q", name, p.String())
		}
	}
}

func TestPermissionSetMembership(t *testing.T) {
	set := NewPermissionSet([]string{"users:read_own", "boats:read", "bogus"})
	if len(set) != 2 {
		t.Fatalf("expected unparseable names dropped, got %d entries", len(set))
	}
	if !set.Has(PermBoatsRead) {
		t.Fatalf("expected boats:read membership")
	}
	if set.Has(PermBoatsWrite) {
		t.Fatalf("did not expect boats:write membership")
	}
	if set.Has(PermUsersRead) {
		t.Fatalf("own-scoped grant must not satisfy the any-scoped check")
	}
	if !set.Has(PermUsersReadOwn) {
		t.Fatalf("expected users:read_own membership")
	}
}

func TestHasOwnScoped(t *testing.T) {
	own := NewPermissionSet([]string{"users:read_own"})
	if !own.HasOwnScoped() {
		t.Fatalf("expected own-scoped grant detected")
	}
	any := NewPermissionSet([]string{"users:read", "boats:read"})
	if any.HasOwnScoped() {
		t.Fatalf("no own-scoped grant present")
	}
}
