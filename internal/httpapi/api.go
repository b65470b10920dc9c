// Package httpapi is the HTTP layer: routing, middleware, and the JSON
// envelope every response uses.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"windspire.org/internal/auth"
	"windspire.org/internal/config"
	"windspire.org/internal/directory"
	"windspire.org/internal/fleet"
	"windspire.org/internal/obs"
)

// ReadyProbe reports whether the service can reach its database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	cfg        config.Config
	tokens     *auth.TokenService
	login      *auth.LoginService
	firebase   *auth.FirebaseVerifier
	google     *auth.GoogleOAuth
	states     *auth.StateStore
	directory  *directory.Service
	fleet      *fleet.Service
	readyProbe ReadyProbe
	version    string
}

// Deps bundles the services the API routes to.
type Deps struct {
	Config    config.Config
	Tokens    *auth.TokenService
	Login     *auth.LoginService
	Firebase  *auth.FirebaseVerifier
	Google    *auth.GoogleOAuth
	Directory *directory.Service
	Fleet     *fleet.Service
	Ready     ReadyProbe
	Version   string
}

// New builds the router. Every /api route except the auth entry points
// sits behind bearer authentication; mutating routes additionally carry
// a permission requirement.
func New(d Deps) *API {
	a := &API{
		mux:        http.NewServeMux(),
		cfg:        d.Config,
		tokens:     d.Tokens,
		login:      d.Login,
		firebase:   d.Firebase,
		google:     d.Google,
		states:     auth.NewStateStore(10 * time.Minute),
		directory:  d.Directory,
		fleet:      d.Fleet,
		readyProbe: d.Ready,
		version:    d.Version,
	}

	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.Handle("GET /metrics", obs.Handler())

	// auth
	a.mux.HandleFunc("POST /api/auth/firebase", a.handleFirebaseLogin)
	a.mux.HandleFunc("GET /api/auth/login", a.handleGoogleLogin)
	a.mux.HandleFunc("GET /api/auth/callback", a.handleGoogleCallback)
	a.mux.HandleFunc("POST /api/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("POST /api/auth/logout", a.handleLogout)
	a.mux.HandleFunc("GET /api/auth/me", a.handleMe)

	// users
	a.handle("GET /api/users", a.handleListUsers, auth.PermUsersRead, allowOwn)
	a.handle("GET /api/users/{id}", a.handleGetUser, auth.PermUsersRead, allowOwn)
	a.handle("GET /api/users/{id}/profile", a.handleUserProfile, auth.PermUsersRead, allowOwn)
	a.handle("GET /api/users/{id}/boats", a.handleUserBoats, auth.PermBoatsRead, allowOwn)
	a.handle("POST /api/users", a.handleCreateUser, auth.PermUsersWrite, exactOnly)
	a.handle("PUT /api/users/{id}", a.handleUpdateUser, auth.PermUsersWrite, allowOwn)
	a.handle("DELETE /api/users/{id}", a.handleDeleteUser, auth.PermUsersDelete, exactOnly)

	// countries
	a.handle("GET /api/countries", a.handleListCountries, auth.PermCountriesRead, exactOnly)
	a.handle("GET /api/countries/{id}", a.handleGetCountry, auth.PermCountriesRead, exactOnly)
	a.handle("GET /api/countries/code/{code}", a.handleGetCountryByCode, auth.PermCountriesRead, exactOnly)
	a.handle("POST /api/countries", a.handleCreateCountry, auth.PermCountriesWrite, exactOnly)
	a.handle("PUT /api/countries/{id}", a.handleUpdateCountry, auth.PermCountriesWrite, exactOnly)
	a.handle("DELETE /api/countries/{id}", a.handleDeleteCountry, auth.PermCountriesDelete, exactOnly)

	// boats
	a.handle("GET /api/boats", a.handleListBoats, auth.PermBoatsRead, exactOnly)
	a.handle("GET /api/boats/{id}", a.handleGetBoat, auth.PermBoatsRead, exactOnly)
	a.handle("POST /api/boats", a.handleCreateBoat, auth.PermBoatsWrite, exactOnly)
	a.mux.HandleFunc("POST /api/boats/my", a.handleCreateMyBoat)
	a.handle("PUT /api/boats/{id}", a.handleUpdateBoat, auth.PermBoatsWrite, exactOnly)
	a.handle("DELETE /api/boats/{id}", a.handleDeleteBoat, auth.PermBoatsDelete, exactOnly)

	// ownership links require a session but no specific grant
	a.mux.HandleFunc("GET /api/boats/{id}/owners", a.handleBoatOwners)
	a.mux.HandleFunc("POST /api/boats/{boatID}/owners/{userID}", a.handleAddOwner)
	a.mux.HandleFunc("DELETE /api/boats/{boatID}/owners/{userID}", a.handleRemoveOwner)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

func (a *API) handle(pattern string, h http.HandlerFunc, perm auth.Permission, mode ownMode) {
	a.mux.Handle(pattern, a.requirePermission(perm, mode)(h))
}

// Handler wraps the router in the middleware chain.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.cfg.RateBurst, a.cfg.RatePerSecond)
	h = CORS(h, a.cfg.CORSOrigins, a.cfg.CORSMethods, a.cfg.CORSHeaders)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// Healthz is the liveness probe.
func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "windspire-api",
		"version": a.version,
	})
}

// Ready is the readiness probe; it pings the database.
func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
