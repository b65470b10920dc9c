package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"windspire.org/internal/auth"
	"windspire.org/internal/config"
	"windspire.org/internal/directory"
	"windspire.org/internal/fleet"
	"windspire.org/internal/httpapi"
	"windspire.org/internal/migrate"
	"windspire.org/internal/obs"
	"windspire.org/internal/store/pg"
)

// Overridden at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := pg.Open(cfg.PGDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	// Apply pending migrations and seeds before serving.
	mgr := migrate.NewManager(store.DB(), cfg.MigrationsDir, cfg.SeedsDir)
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 60*time.Second)
	if err := mgr.Up(startupCtx); err != nil {
		cancelStartup()
		log.Fatalf("migrate: %v", err)
	}
	if err := mgr.Seed(startupCtx); err != nil {
		cancelStartup()
		log.Fatalf("seed: %v", err)
	}
	cancelStartup()

	api := httpapi.New(httpapi.Deps{
		Config:    cfg,
		Tokens:    auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry),
		Login:     auth.NewLoginService(store),
		Firebase:  auth.NewFirebaseVerifier(cfg.FirebaseProjectID),
		Google:    auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI),
		Directory: directory.NewService(store),
		Fleet:     fleet.NewService(store),
		Ready:     httpapi.ReadyProbe{DB: store.DB()},
		Version:   version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting windspire-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
