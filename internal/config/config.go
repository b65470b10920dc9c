package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries every runtime setting the service reads from the
// environment. It is loaded once in main and passed by value.
type Config struct {
	Addr string

	PGDSN string

	JWTSecret string
	JWTIssuer string
	JWTExpiry time.Duration

	FirebaseProjectID string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	// Where the OAuth callback sends the browser once a session token
	// has been issued.
	FrontendCallbackURL string

	CORSOrigins []string
	CORSMethods []string
	CORSHeaders []string

	RateBurst     int
	RatePerSecond float64

	MigrationsDir string
	SeedsDir      string
}

// Load reads configuration from WINDSPIRE_* environment variables and
// validates the settings the server cannot run without.
func Load() (Config, error) {
	cfg := Config{
		Addr:                envOr("WINDSPIRE_ADDR", ":8080"),
		PGDSN:               os.Getenv("WINDSPIRE_PG_DSN"),
		JWTSecret:           os.Getenv("WINDSPIRE_JWT_SECRET"),
		JWTIssuer:           envOr("WINDSPIRE_JWT_ISSUER", "windspire"),
		FirebaseProjectID:   os.Getenv("WINDSPIRE_FIREBASE_PROJECT_ID"),
		GoogleClientID:      os.Getenv("WINDSPIRE_GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("WINDSPIRE_GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:   envOr("WINDSPIRE_GOOGLE_REDIRECT_URI", "http://localhost:8080/api/auth/callback"),
		FrontendCallbackURL: envOr("WINDSPIRE_FRONTEND_CALLBACK_URL", "http://localhost:5173/auth/callback"),
		CORSOrigins:         envList("WINDSPIRE_CORS_ORIGINS", "*"),
		CORSMethods:         envList("WINDSPIRE_CORS_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
		CORSHeaders:         envList("WINDSPIRE_CORS_HEADERS", "Authorization,Content-Type,X-Request-Id"),
		MigrationsDir:       envOr("WINDSPIRE_MIGRATIONS_DIR", "migrations"),
		SeedsDir:            envOr("WINDSPIRE_SEEDS_DIR", "seeds"),
	}

	hours, err := envInt("WINDSPIRE_JWT_EXPIRY_HOURS", 24)
	if err != nil {
		return Config{}, err
	}
	if hours <= 0 {
		return Config{}, fmt.Errorf("WINDSPIRE_JWT_EXPIRY_HOURS must be positive, got %d", hours)
	}
	cfg.JWTExpiry = time.Duration(hours) * time.Hour

	cfg.RateBurst, err = envInt("WINDSPIRE_RATE_BURST", 60)
	if err != nil {
		return Config{}, err
	}
	perSecond := envOr("WINDSPIRE_RATE_PER_SECOND", "30")
	cfg.RatePerSecond, err = strconv.ParseFloat(perSecond, 64)
	if err != nil {
		return Config{}, fmt.Errorf("WINDSPIRE_RATE_PER_SECOND: %w", err)
	}

	if cfg.PGDSN == "" {
		return Config{}, fmt.Errorf("WINDSPIRE_PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("WINDSPIRE_JWT_SECRET is required")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envList(key, fallback string) []string {
	raw := envOr(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
