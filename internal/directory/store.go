package directory

import "context"

// UserStore is the persistence contract for accounts. Implementations
// translate driver errors into the package sentinels: missing rows to
// ErrNotFound, unique violations to ErrConflict, and broken foreign
// keys to ErrNotFound.
type UserStore interface {
	Users(ctx context.Context) ([]UserWithCountry, error)
	User(ctx context.Context, id string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByProvider(ctx context.Context, providerID, providerName string) (User, error)
	CreateUser(ctx context.Context, in UserCreate) (User, error)
	CreateFederatedUser(ctx context.Context, in FederatedUserCreate) (User, error)
	UpdateUser(ctx context.Context, id string, in UserUpdate) (User, error)
	DeleteUser(ctx context.Context, id string) error
	LinkProvider(ctx context.Context, userID, providerID, providerName, avatarURL string) error
	UpdateUserNames(ctx context.Context, userID, firstName, lastName string) error

	RolesAndPermissions(ctx context.Context, userID string) (roles, permissions []string, err error)
	AssignRoleByName(ctx context.Context, userID, role string) error
	DefaultCountry(ctx context.Context) (Country, error)
}

// CountryStore is the persistence contract for the reference table.
type CountryStore interface {
	Countries(ctx context.Context) ([]Country, error)
	Country(ctx context.Context, id string) (Country, error)
	CountryByCode(ctx context.Context, code string) (Country, error)
	CreateCountry(ctx context.Context, in CountryCreate) (Country, error)
	UpdateCountry(ctx context.Context, id string, in CountryUpdate) (Country, error)
	DeleteCountry(ctx context.Context, id string) error
}

// Store is everything the directory service needs from Postgres.
type Store interface {
	UserStore
	CountryStore
}
