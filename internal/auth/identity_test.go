package auth

import (
	"context"
	"testing"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc123", "abc123", true},
		{"Bearer ", "", false},
		{"bearer abc123", "", false},
		{"Basic abc123", "", false},
		{"abc123", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		token, ok := ExtractBearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Fatalf("header %q: got (%q, %v), want (%q, %v)", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

func TestCanAdminBypass(t *testing.T) {
	admin := Identity{Roles: []string{RoleAdmin}, Permissions: NewPermissionSet(nil)}
	if !admin.Can(PermUsersDelete) {
		t.Fatalf("admin must pass every check")
	}
}

func TestCanExactGrant(t *testing.T) {
	id := Identity{Roles: []string{RoleUser}, Permissions: NewPermissionSet([]string{"boats:read"})}
	if !id.Can(PermBoatsRead) {
		t.Fatalf("expected boats:read allowed")
	}
	if id.Can(PermBoatsWrite) {
		t.Fatalf("expected boats:write denied")
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	want := Identity{UserID: "user-1", Email: "skipper@example.com"}
	ctx := ContextWithIdentity(context.Background(), want)
	got, ok := IdentityFromContext(ctx)
	if !ok {
		t.Fatalf("expected identity in context")
	}
	if got.UserID != want.UserID || got.Email != want.Email {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatalf("empty context must not carry an identity")
	}
}
