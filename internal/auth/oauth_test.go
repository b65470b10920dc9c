package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newGoogleFixture(t *testing.T) (*GoogleOAuth, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostFormValue("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":             "g-123",
			"email":          "skipper@example.com",
			"verified_email": true,
			"name":           "Ola Nordmann",
			"given_name":     "Ola",
			"family_name":    "Nordmann",
			"picture":        "https://example.com/ola.png",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := NewGoogleOAuth("client-id", "client-secret", "https://app.example.com/callback").
		WithEndpoints(srv.URL+"/auth", srv.URL+"/token", srv.URL+"/userinfo")
	return g, srv
}

func TestAuthorizationURL(t *testing.T) {
	g, srv := newGoogleFixture(t)

	url, state := g.AuthorizationURL()
	if state == "" {
		t.Fatalf("expected a state value")
	}
	if !strings.HasPrefix(url, srv.URL+"/auth") {
		t.Fatalf("unexpected auth url %q", url)
	}
	if !strings.Contains(url, "state="+state) {
		t.Fatalf("state missing from url %q", url)
	}
	if !strings.Contains(url, "client_id=client-id") {
		t.Fatalf("client id missing from url %q", url)
	}
}

func TestExchange(t *testing.T) {
	g, _ := newGoogleFixture(t)

	token, err := g.Exchange(context.Background(), "good-code", "state-1", "state-1")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if token != "access-123" {
		t.Fatalf("unexpected access token %q", token)
	}
}

func TestExchangeStateMismatch(t *testing.T) {
	g, _ := newGoogleFixture(t)

	if _, err := g.Exchange(context.Background(), "good-code", "state-1", "state-2"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, err := g.Exchange(context.Background(), "good-code", "state-1", ""); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for empty expected state, got %v", err)
	}
}

func TestExchangeBadCode(t *testing.T) {
	g, _ := newGoogleFixture(t)

	if _, err := g.Exchange(context.Background(), "bad-code", "state-1", "state-1"); !errors.Is(err, ErrTokenExchange) {
		t.Fatalf("expected ErrTokenExchange, got %v", err)
	}
}

func TestUserInfo(t *testing.T) {
	g, _ := newGoogleFixture(t)

	profile, err := g.UserInfo(context.Background(), "access-123")
	if err != nil {
		t.Fatalf("userinfo: %v", err)
	}
	if profile.ProviderID != "g-123" || profile.Provider != ProviderGoogle {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.GivenName != "Ola" || profile.FamilyName != "Nordmann" {
		t.Fatalf("unexpected names %+v", profile)
	}
	if !profile.EmailVerified {
		t.Fatalf("expected verified email")
	}
}

func TestUserInfoBadToken(t *testing.T) {
	g, _ := newGoogleFixture(t)

	if _, err := g.UserInfo(context.Background(), "wrong"); !errors.Is(err, ErrUserInfo) {
		t.Fatalf("expected ErrUserInfo, got %v", err)
	}
}

func TestStateStoreSingleUse(t *testing.T) {
	store := NewStateStore(time.Minute)
	store.Put("state-1")

	if !store.Consume("state-1") {
		t.Fatalf("expected live state consumed")
	}
	if store.Consume("state-1") {
		t.Fatalf("state must be single use")
	}
	if store.Consume("never-issued") {
		t.Fatalf("unknown state must not consume")
	}
}

func TestStateStoreExpiry(t *testing.T) {
	store := NewStateStore(time.Minute)
	base := time.Now()
	store.now = func() time.Time { return base }
	store.Put("state-1")

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	if store.Consume("state-1") {
		t.Fatalf("expired state must not consume")
	}
}
