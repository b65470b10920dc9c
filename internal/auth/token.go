package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a windspire session token.
type SessionClaims struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// TokenService signs and validates HS256 session tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService with the given signing
// secret, issuer claim, and token lifetime.
func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a session token for the identity. The permission snapshot
// is embedded in the claims; later role changes do not affect tokens
// already in flight.
func (s *TokenService) Issue(id Identity) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	perms := id.Permissions.Names()
	slices.Sort(perms)
	claims := &SessionClaims{
		Email:       id.Email,
		Name:        id.Name,
		Roles:       id.Roles,
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Validate parses and verifies a session token. Expiry is reported as
// ErrExpiredToken; every other failure maps to ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// Refresh issues a new token carrying the old claims snapshot with a
// fresh issue and expiry time. Roles and permissions are deliberately
// not re-read; changes take effect on natural expiry.
func (s *TokenService) Refresh(claims *SessionClaims) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	fresh := &SessionClaims{
		Email:       claims.Email,
		Name:        claims.Name,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, fresh).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// IdentityFromClaims rebuilds the request identity from validated claims.
func IdentityFromClaims(claims *SessionClaims, rawToken string) Identity {
	return Identity{
		UserID:      claims.Subject,
		Email:       claims.Email,
		Name:        claims.Name,
		Roles:       claims.Roles,
		Permissions: NewPermissionSet(claims.Permissions),
		Token:       rawToken,
	}
}
