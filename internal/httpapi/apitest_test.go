package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"windspire.org/internal/auth"
	"windspire.org/internal/config"
	"windspire.org/internal/directory"
	"windspire.org/internal/fleet"
)

// memDirStore is an in-memory directory.Store for handler tests.
type memDirStore struct {
	users     map[string]directory.User
	countries map[string]directory.Country
	roles     map[string][]string
	perms     map[string][]string
	nextID    int
}

func newMemDirStore() *memDirStore {
	return &memDirStore{
		users:     make(map[string]directory.User),
		countries: make(map[string]directory.Country),
		roles:     make(map[string][]string),
		perms:     make(map[string][]string),
	}
}

func (m *memDirStore) newID() string {
	m.nextID++
	return "id-" + string(rune('a'+m.nextID-1))
}

func (m *memDirStore) Users(context.Context) ([]directory.UserWithCountry, error) {
	var out []directory.UserWithCountry
	for _, u := range m.users {
		out = append(out, directory.UserWithCountry{User: u})
	}
	return out, nil
}

func (m *memDirStore) User(_ context.Context, id string) (directory.User, error) {
	u, ok := m.users[id]
	if !ok {
		return directory.User{}, directory.ErrNotFound
	}
	return u, nil
}

func (m *memDirStore) UserByEmail(_ context.Context, email string) (directory.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return directory.User{}, directory.ErrNotFound
}

func (m *memDirStore) UserByProvider(_ context.Context, providerID, providerName string) (directory.User, error) {
	for _, u := range m.users {
		if u.ProviderID == providerID && u.ProviderName == providerName {
			return u, nil
		}
	}
	return directory.User{}, directory.ErrNotFound
}

func (m *memDirStore) CreateUser(_ context.Context, in directory.UserCreate) (directory.User, error) {
	if _, err := m.UserByEmail(context.Background(), in.Email); err == nil {
		return directory.User{}, directory.ErrConflict
	}
	u := directory.User{
		ID:        m.newID(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		CountryID: in.CountryID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memDirStore) CreateFederatedUser(_ context.Context, in directory.FederatedUserCreate) (directory.User, error) {
	u := directory.User{
		ID:           m.newID(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		CountryID:    in.CountryID,
		ProviderID:   in.ProviderID,
		ProviderName: in.ProviderName,
		AvatarURL:    in.AvatarURL,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memDirStore) UpdateUser(_ context.Context, id string, in directory.UserUpdate) (directory.User, error) {
	u, ok := m.users[id]
	if !ok {
		return directory.User{}, directory.ErrNotFound
	}
	u.FirstName, u.LastName, u.Email, u.Phone, u.CountryID = in.FirstName, in.LastName, in.Email, in.Phone, in.CountryID
	m.users[id] = u
	return u, nil
}

func (m *memDirStore) DeleteUser(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return directory.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memDirStore) LinkProvider(_ context.Context, userID, providerID, providerName, avatarURL string) error {
	u, ok := m.users[userID]
	if !ok {
		return directory.ErrNotFound
	}
	u.ProviderID, u.ProviderName, u.AvatarURL = providerID, providerName, avatarURL
	m.users[userID] = u
	return nil
}

func (m *memDirStore) UpdateUserNames(_ context.Context, userID, firstName, lastName string) error {
	u, ok := m.users[userID]
	if !ok {
		return directory.ErrNotFound
	}
	u.FirstName, u.LastName = firstName, lastName
	m.users[userID] = u
	return nil
}

func (m *memDirStore) RolesAndPermissions(_ context.Context, userID string) ([]string, []string, error) {
	return m.roles[userID], m.perms[userID], nil
}

func (m *memDirStore) AssignRoleByName(_ context.Context, userID, role string) error {
	m.roles[userID] = append(m.roles[userID], role)
	return nil
}

func (m *memDirStore) DefaultCountry(context.Context) (directory.Country, error) {
	for _, c := range m.countries {
		if c.IsoAlpha2 == "NO" {
			return c, nil
		}
	}
	for _, c := range m.countries {
		return c, nil
	}
	return directory.Country{}, directory.ErrNotFound
}

func (m *memDirStore) Countries(context.Context) ([]directory.Country, error) {
	var out []directory.Country
	for _, c := range m.countries {
		out = append(out, c)
	}
	return out, nil
}

func (m *memDirStore) Country(_ context.Context, id string) (directory.Country, error) {
	c, ok := m.countries[id]
	if !ok {
		return directory.Country{}, directory.ErrNotFound
	}
	return c, nil
}

func (m *memDirStore) CountryByCode(_ context.Context, code string) (directory.Country, error) {
	for _, c := range m.countries {
		if c.IsoAlpha2 == code || c.IsoAlpha3 == code {
			return c, nil
		}
	}
	return directory.Country{}, directory.ErrNotFound
}

func (m *memDirStore) CreateCountry(_ context.Context, in directory.CountryCreate) (directory.Country, error) {
	for _, c := range m.countries {
		if c.IsoAlpha2 == in.IsoAlpha2 {
			return directory.Country{}, directory.ErrConflict
		}
	}
	c := directory.Country{ID: m.newID(), IsoName: in.IsoName, IsoAlpha2: in.IsoAlpha2, IsoAlpha3: in.IsoAlpha3}
	m.countries[c.ID] = c
	return c, nil
}

func (m *memDirStore) UpdateCountry(_ context.Context, id string, in directory.CountryUpdate) (directory.Country, error) {
	c, ok := m.countries[id]
	if !ok {
		return directory.Country{}, directory.ErrNotFound
	}
	c.IsoName, c.IsoAlpha2, c.IsoAlpha3 = in.IsoName, in.IsoAlpha2, in.IsoAlpha3
	m.countries[id] = c
	return c, nil
}

func (m *memDirStore) DeleteCountry(_ context.Context, id string) error {
	if _, ok := m.countries[id]; !ok {
		return directory.ErrNotFound
	}
	delete(m.countries, id)
	return nil
}

// memFleetStore is an in-memory fleet.Store.
type memFleetStore struct {
	boats  map[string]fleet.Boat
	owners map[string][]string
	nextID int
}

func newMemFleetStore() *memFleetStore {
	return &memFleetStore{
		boats:  make(map[string]fleet.Boat),
		owners: make(map[string][]string),
	}
}

func (m *memFleetStore) Boats(context.Context) ([]fleet.Boat, error) {
	var out []fleet.Boat
	for _, b := range m.boats {
		out = append(out, b)
	}
	return out, nil
}

func (m *memFleetStore) Boat(_ context.Context, id string) (fleet.Boat, error) {
	b, ok := m.boats[id]
	if !ok {
		return fleet.Boat{}, fleet.ErrNotFound
	}
	return b, nil
}

func (m *memFleetStore) CreateBoat(_ context.Context, in fleet.BoatCreate) (fleet.Boat, error) {
	m.nextID++
	b := fleet.Boat{
		ID:         "boat-" + string(rune('a'+m.nextID-1)),
		Name:       in.Name,
		Brand:      in.Brand,
		Model:      in.Model,
		SailNumber: in.SailNumber,
		CountryID:  in.CountryID,
	}
	m.boats[b.ID] = b
	return b, nil
}

func (m *memFleetStore) UpdateBoat(_ context.Context, id string, in fleet.BoatUpdate) (fleet.Boat, error) {
	if _, ok := m.boats[id]; !ok {
		return fleet.Boat{}, fleet.ErrNotFound
	}
	b := fleet.Boat{ID: id, Name: in.Name, Brand: in.Brand, Model: in.Model, SailNumber: in.SailNumber, CountryID: in.CountryID}
	m.boats[id] = b
	return b, nil
}

func (m *memFleetStore) DeleteBoat(_ context.Context, id string) error {
	if _, ok := m.boats[id]; !ok {
		return fleet.ErrNotFound
	}
	delete(m.boats, id)
	return nil
}

func (m *memFleetStore) AddOwner(_ context.Context, boatID, userID string) error {
	if _, ok := m.boats[boatID]; !ok {
		return fleet.ErrNotFound
	}
	m.owners[boatID] = append(m.owners[boatID], userID)
	return nil
}

func (m *memFleetStore) RemoveOwner(_ context.Context, boatID, userID string) error {
	kept := m.owners[boatID][:0]
	removed := false
	for _, id := range m.owners[boatID] {
		if id == userID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	m.owners[boatID] = kept
	if !removed {
		return fleet.ErrNotFound
	}
	return nil
}

func (m *memFleetStore) OwnersForBoat(_ context.Context, boatID string) ([]fleet.Owner, error) {
	var out []fleet.Owner
	for _, id := range m.owners[boatID] {
		out = append(out, fleet.Owner{UserID: id})
	}
	return out, nil
}

func (m *memFleetStore) BoatsForUser(_ context.Context, userID string) ([]fleet.Boat, error) {
	var out []fleet.Boat
	for boatID, owners := range m.owners {
		for _, id := range owners {
			if id == userID {
				out = append(out, m.boats[boatID])
			}
		}
	}
	return out, nil
}

// fixture wires a full API over the in-memory stores.
type fixture struct {
	api     *API
	handler http.Handler
	tokens  *auth.TokenService
	dir     *memDirStore
	flt     *memFleetStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := newMemDirStore()
	flt := newMemFleetStore()
	dir.countries["country-no"] = directory.Country{ID: "country-no", IsoName: "Norway", IsoAlpha2: "NO", IsoAlpha3: "NOR"}

	tokens := auth.NewTokenService("test-secret", "windspire", time.Hour)
	cfg := config.Config{
		JWTSecret:           "test-secret",
		JWTIssuer:           "windspire",
		JWTExpiry:           time.Hour,
		FrontendCallbackURL: "http://localhost:5173/auth/callback",
		CORSOrigins:         []string{"*"},
		CORSMethods:         []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSHeaders:         []string{"Authorization", "Content-Type"},
		RateBurst:           1000,
		RatePerSecond:       1000,
	}
	api := New(Deps{
		Config:    cfg,
		Tokens:    tokens,
		Login:     auth.NewLoginService(dir),
		Firebase:  auth.NewFirebaseVerifier("windspire-test"),
		Google:    auth.NewGoogleOAuth("client-id", "client-secret", "http://localhost/callback"),
		Directory: directory.NewService(dir),
		Fleet:     fleet.NewService(flt),
		Version:   "test",
	})
	return &fixture{
		api:     api,
		handler: api.Handler(),
		tokens:  tokens,
		dir:     dir,
		flt:     flt,
	}
}

// token mints a session token for the given roles and permission names.
func (f *fixture) token(t *testing.T, userID string, roles, perms []string) string {
	t.Helper()
	token, _, err := f.tokens.Issue(auth.Identity{
		UserID:      userID,
		Email:       userID + "@example.com",
		Roles:       roles,
		Permissions: auth.NewPermissionSet(perms),
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (f *fixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rr.Body.String())
	}
	return env
}
