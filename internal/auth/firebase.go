package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Google publishes the x509 certificates that sign Firebase ID
	// tokens here, keyed by kid.
	firebaseCertsURL     = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	firebaseIssuerPrefix = "https://securetoken.google.com/"

	defaultCertsTTL = time.Hour
)

type firebaseClaims struct {
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

func (c *firebaseClaims) profile() ExternalProfile {
	providerID := c.UserID
	if providerID == "" {
		providerID = c.Subject
	}
	return ExternalProfile{
		ProviderID:    providerID,
		Provider:      ProviderFirebase,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		DisplayName:   c.Name,
		Picture:       c.Picture,
	}
}

// FirebaseVerifier validates Firebase ID tokens against Google's
// published signing certificates.
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client
	now       func() time.Time

	mu         sync.Mutex
	keys       map[string]*rsa.PublicKey
	keysExpire time.Time
}

// NewFirebaseVerifier constructs a verifier for the given Firebase
// project.
func NewFirebaseVerifier(projectID string) *FirebaseVerifier {
	return &FirebaseVerifier{
		projectID: projectID,
		certsURL:  firebaseCertsURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		now:       time.Now,
	}
}

// WithCertsURL overrides the certificate endpoint. Tests only.
func (v *FirebaseVerifier) WithCertsURL(url string) *FirebaseVerifier {
	v.certsURL = url
	return v
}

// WithClock overrides the time source. Tests only.
func (v *FirebaseVerifier) WithClock(now func() time.Time) *FirebaseVerifier {
	v.now = now
	return v
}

// VerifyIDToken checks the token's signature, issuer, audience, and
// expiry and returns the verified external profile.
func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (ExternalProfile, error) {
	claims := &firebaseClaims{}
	if skipFirebaseSignature {
		return v.verifyUnsigned(idToken, claims)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(firebaseIssuerPrefix+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithTimeFunc(v.now),
	)
	_, err := parser.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header missing kid")
		}
		return v.publicKey(ctx, kid)
	})
	if err != nil {
		return ExternalProfile{}, mapFirebaseError(err)
	}
	return claims.profile(), nil
}

func mapFirebaseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrInvalidIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrInvalidAudience
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}

// verifyUnsigned accepts the token without a signature check but still
// enforces issuer, audience, and expiry. Compiled in only under the
// devauth build tag.
func (v *FirebaseVerifier) verifyUnsigned(idToken string, claims *firebaseClaims) (ExternalProfile, error) {
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return ExternalProfile{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	now := v.now().UTC()
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return ExternalProfile{}, ErrExpiredToken
	}
	if claims.Issuer != firebaseIssuerPrefix+v.projectID {
		return ExternalProfile{}, ErrInvalidIssuer
	}
	audOK := false
	for _, aud := range claims.Audience {
		if aud == v.projectID {
			audOK = true
			break
		}
	}
	if !audOK {
		return ExternalProfile{}, ErrInvalidAudience
	}
	return claims.profile(), nil
}

func (v *FirebaseVerifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.now().Before(v.keysExpire) {
		if key, ok := v.keys[kid]; ok {
			return key, nil
		}
	}
	if err := v.refreshKeysLocked(ctx); err != nil {
		return nil, err
	}
	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no certificate for kid %q", kid)
	}
	return key, nil
}

func (v *FirebaseVerifier) refreshKeysLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return fmt.Errorf("fetch firebase certs: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch firebase certs: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch firebase certs: status %d", resp.StatusCode)
	}
	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("decode firebase certs: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := parseCertPublicKey(certPEM)
		if err != nil {
			return fmt.Errorf("parse cert %s: %w", kid, err)
		}
		keys[kid] = key
	}
	v.keys = keys
	v.keysExpire = v.now().Add(certsTTL(resp.Header.Get("Cache-Control")))
	return nil
}

func parseCertPublicKey(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, errors.New("no PEM block")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("certificate key is not RSA")
	}
	return key, nil
}

// certsTTL reads max-age out of a Cache-Control header, falling back to
// a fixed TTL.
func certsTTL(cacheControl string) time.Duration {
	for _, part := range strings.Split(cacheControl, ",") {
		part = strings.TrimSpace(part)
		if after, ok := strings.CutPrefix(part, "max-age="); ok {
			if secs, err := strconv.Atoi(after); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return defaultCertsTTL
}
