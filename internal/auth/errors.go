package auth

import "errors"

var (
	// ErrInvalidToken covers malformed tokens, bad signatures, and wrong
	// issuer or audience on session tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is distinct so callers can tell a stale session from
	// a forged one.
	ErrExpiredToken = errors.New("token expired")

	// Firebase ID-token verification failures.
	ErrInvalidIssuer   = errors.New("invalid token issuer")
	ErrInvalidAudience = errors.New("invalid token audience")

	// Google code-flow failures.
	ErrInvalidState  = errors.New("invalid oauth state")
	ErrTokenExchange = errors.New("oauth token exchange failed")
	ErrUserInfo      = errors.New("oauth userinfo request failed")
)
