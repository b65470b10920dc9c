package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleOAuth drives the authorization-code flow against Google.
type GoogleOAuth struct {
	cfg         *oauth2.Config
	userInfoURL string
	client      *http.Client
}

// NewGoogleOAuth constructs the adapter with Google's endpoints and the
// openid/email/profile scopes.
func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	return &GoogleOAuth{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
		},
		userInfoURL: googleUserInfoURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoints overrides provider URLs. Tests only.
func (g *GoogleOAuth) WithEndpoints(authURL, tokenURL, userInfoURL string) *GoogleOAuth {
	g.cfg.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	g.userInfoURL = userInfoURL
	return g
}

// AuthorizationURL returns the consent-page URL and the CSRF state baked
// into it. The caller is responsible for remembering the state until the
// provider redirects back.
func (g *GoogleOAuth) AuthorizationURL() (string, string) {
	state := uuid.NewString()
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), state
}

// Exchange verifies the CSRF state and trades the authorization code for
// an access token.
func (g *GoogleOAuth) Exchange(ctx context.Context, code, state, expectedState string) (string, error) {
	if expectedState == "" || state != expectedState {
		return "", ErrInvalidState
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	return tok.AccessToken, nil
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// UserInfo fetches the profile behind the access token.
func (g *GoogleOAuth) UserInfo(ctx context.Context, accessToken string) (ExternalProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return ExternalProfile{}, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := g.client.Do(req)
	if err != nil {
		return ExternalProfile{}, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ExternalProfile{}, fmt.Errorf("%w: status %d", ErrUserInfo, resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return ExternalProfile{}, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	return ExternalProfile{
		ProviderID:    info.ID,
		Provider:      ProviderGoogle,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
		DisplayName:   info.Name,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
		Picture:       info.Picture,
	}, nil
}

// StateStore remembers issued OAuth states until the provider redirects
// back. States are single use and expire.
type StateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	states map[string]time.Time
}

// NewStateStore constructs a store whose states live for ttl.
func NewStateStore(ttl time.Duration) *StateStore {
	return &StateStore{
		ttl:    ttl,
		now:    time.Now,
		states: make(map[string]time.Time),
	}
}

// Put records a freshly issued state.
func (s *StateStore) Put(state string) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for st, exp := range s.states {
		if now.After(exp) {
			delete(s.states, st)
		}
	}
	s.states[state] = now.Add(s.ttl)
}

// Consume removes the state and reports whether it was live.
func (s *StateStore) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)
	return s.now().Before(exp)
}
