package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testProject = "windspire-test"

type firebaseFixture struct {
	key   *rsa.PrivateKey
	certs *httptest.Server
}

func newFirebaseFixture(t *testing.T) *firebaseFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		json.NewEncoder(w).Encode(map[string]string{"kid1": string(certPEM)})
	}))
	t.Cleanup(srv.Close)
	return &firebaseFixture{key: key, certs: srv}
}

func (f *firebaseFixture) signToken(t *testing.T, kid string, claims *firebaseClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(f.key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validFirebaseClaims() *firebaseClaims {
	return &firebaseClaims{
		Name:          "Ola Nordmann",
		UserID:        "fb-uid-1",
		Email:         "skipper@example.com",
		EmailVerified: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "fb-uid-1",
			Issuer:    firebaseIssuerPrefix + testProject,
			Audience:  jwt.ClaimStrings{testProject},
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifyIDToken(t *testing.T) {
	fx := newFirebaseFixture(t)
	v := NewFirebaseVerifier(testProject).WithCertsURL(fx.certs.URL)

	token := fx.signToken(t, "kid1", validFirebaseClaims())
	profile, err := v.VerifyIDToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if profile.ProviderID != "fb-uid-1" {
		t.Fatalf("unexpected provider id %q", profile.ProviderID)
	}
	if profile.Provider != ProviderFirebase {
		t.Fatalf("unexpected provider %q", profile.Provider)
	}
	if profile.Email != "skipper@example.com" || !profile.EmailVerified {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestVerifyIDTokenExpired(t *testing.T) {
	fx := newFirebaseFixture(t)
	v := NewFirebaseVerifier(testProject).WithCertsURL(fx.certs.URL)

	claims := validFirebaseClaims()
	claims.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token := fx.signToken(t, "kid1", claims)

	if _, err := v.VerifyIDToken(context.Background(), token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyIDTokenWrongIssuer(t *testing.T) {
	fx := newFirebaseFixture(t)
	v := NewFirebaseVerifier(testProject).WithCertsURL(fx.certs.URL)

	claims := validFirebaseClaims()
	claims.Issuer = firebaseIssuerPrefix + "another-project"
	token := fx.signToken(t, "kid1", claims)

	if _, err := v.VerifyIDToken(context.Background(), token); !errors.Is(err, ErrInvalidIssuer) {
		t.Fatalf("expected ErrInvalidIssuer, got %v", err)
	}
}

func TestVerifyIDTokenWrongAudience(t *testing.T) {
	fx := newFirebaseFixture(t)
	v := NewFirebaseVerifier(testProject).WithCertsURL(fx.certs.URL)

	claims := validFirebaseClaims()
	claims.Audience = jwt.ClaimStrings{"another-project"}
	token := fx.signToken(t, "kid1", claims)

	if _, err := v.VerifyIDToken(context.Background(), token); !errors.Is(err, ErrInvalidAudience) {
		t.Fatalf("expected ErrInvalidAudience, got %v", err)
	}
}

func TestVerifyIDTokenUnknownKid(t *testing.T) {
	fx := newFirebaseFixture(t)
	v := NewFirebaseVerifier(testProject).WithCertsURL(fx.certs.URL)

	token := fx.signToken(t, "kid-unknown", validFirebaseClaims())
	if _, err := v.VerifyIDToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyIDTokenGarbage(t *testing.T) {
	fx := newFirebaseFixture(t)
	v := NewFirebaseVerifier(testProject).WithCertsURL(fx.certs.URL)

	if _, err := v.VerifyIDToken(context.Background(), "not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCertsTTL(t *testing.T) {
	cases := []struct {
		header string
		want   time.Duration
	}{
		{"public, max-age=19832, must-revalidate", 19832 * time.Second},
		{"max-age=60", time.Minute},
		{"no-store", defaultCertsTTL},
		{"", defaultCertsTTL},
		{"max-age=0", defaultCertsTTL},
	}
	for _, tc := range cases {
		if got := certsTTL(tc.header); got != tc.want {
			t.Fatalf("certsTTL(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}
