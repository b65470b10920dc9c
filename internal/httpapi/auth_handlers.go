package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"windspire.org/internal/audit"
	"windspire.org/internal/auth"
)

type firebaseLoginRequest struct {
	IDToken string `json:"id_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      any       `json:"user"`
}

// handleFirebaseLogin trades a verified Firebase ID token for a local
// session token, creating or linking the account on first contact.
func (a *API) handleFirebaseLogin(w http.ResponseWriter, r *http.Request) {
	var req firebaseLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		writeError(w, r, http.StatusBadRequest, "id_token is required")
		return
	}

	profile, err := a.firebase.VerifyIDToken(r.Context(), req.IDToken)
	if err != nil {
		handleVerifyError(w, r, err)
		return
	}
	a.issueSession(w, r, profile, "auth.login.firebase")
}

// handleGoogleLogin starts the authorization-code flow.
func (a *API) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, state := a.google.AuthorizationURL()
	a.states.Put(state)
	writeData(w, http.StatusOK, map[string]any{
		"authorization_url": authURL,
		"state":             state,
	})
}

// handleGoogleCallback finishes the code flow and sends the browser to
// the frontend with the session token.
func (a *API) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeError(w, r, http.StatusBadRequest, "code and state are required")
		return
	}
	if !a.states.Consume(state) {
		writeError(w, r, http.StatusBadRequest, "invalid oauth state")
		return
	}

	accessToken, err := a.google.Exchange(r.Context(), code, state, state)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to exchange authorization code")
		return
	}
	profile, err := a.google.UserInfo(r.Context(), accessToken)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to get user information")
		return
	}

	user, ident, err := a.login.Resolve(r.Context(), profile)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	token, _, err := a.tokens.Issue(ident)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to generate authentication token")
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.login.google", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})

	redirect := a.cfg.FrontendCallbackURL + "?token=" + url.QueryEscape(token)
	http.Redirect(w, r, redirect, http.StatusFound)
}

// handleRefresh issues a fresh token carrying the old claims snapshot.
func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	claims, err := a.tokens.Validate(req.RefreshToken)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	token, _, err := a.tokens.Refresh(claims)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to refresh token")
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(a.tokens.TTL().Seconds()),
	})
}

// handleLogout acknowledges the logout; tokens are stateless and simply
// dropped client-side.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.logout", map[string]any{
		"email": id.Email,
	})
	writeData(w, http.StatusOK, map[string]any{
		"message": "Successfully logged out",
	})
}

// handleMe echoes the identity inside the session token.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"id":          id.UserID,
		"email":       id.Email,
		"name":        id.Name,
		"roles":       id.Roles,
		"permissions": id.Permissions.Names(),
	})
}

func (a *API) issueSession(w http.ResponseWriter, r *http.Request, profile auth.ExternalProfile, event string) {
	user, ident, err := a.login.Resolve(r.Context(), profile)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	token, expiresAt, err := a.tokens.Issue(ident)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to generate authentication token")
		return
	}
	_ = audit.LogEvent(r.Context(), event, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	writeData(w, http.StatusOK, sessionResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      user,
	})
}

func handleVerifyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		writeError(w, r, http.StatusUnauthorized, "token expired")
	case errors.Is(err, auth.ErrInvalidIssuer):
		writeError(w, r, http.StatusUnauthorized, "invalid token issuer")
	case errors.Is(err, auth.ErrInvalidAudience):
		writeError(w, r, http.StatusUnauthorized, "invalid token audience")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, "invalid token")
	default:
		writeError(w, r, http.StatusInternalServerError, "verification error")
	}
}
