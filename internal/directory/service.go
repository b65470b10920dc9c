package directory

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service validates directory input and delegates persistence to the
// store. All normalization (trimming, case folding) happens here so the
// store only ever sees clean values.
type Service struct {
	store Store
}

// NewService constructs a Service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Users lists every account joined with its country name.
func (s *Service) Users(ctx context.Context) ([]UserWithCountry, error) {
	return s.store.Users(ctx)
}

// User fetches a single account.
func (s *Service) User(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.User(ctx, id)
}

// CreateUser validates and persists a directly created account.
func (s *Service) CreateUser(ctx context.Context, in UserCreate) (User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.CountryID = strings.TrimSpace(in.CountryID)
	if err := validateUserFields(in.FirstName, in.LastName, in.Email, in.Phone, in.CountryID); err != nil {
		return User{}, err
	}
	return s.store.CreateUser(ctx, in)
}

// UpdateUser validates and fully replaces an account's mutable fields.
func (s *Service) UpdateUser(ctx context.Context, id string, in UserUpdate) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.CountryID = strings.TrimSpace(in.CountryID)
	if err := validateUserFields(in.FirstName, in.LastName, in.Email, in.Phone, in.CountryID); err != nil {
		return User{}, err
	}
	return s.store.UpdateUser(ctx, id, in)
}

// DeleteUser removes an account. Ownership links cascade in the schema.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.DeleteUser(ctx, id)
}

func validateUserFields(firstName, lastName, email, phone, countryID string) error {
	if len(firstName) < 2 {
		return fmt.Errorf("%w: first name must be at least 2 characters", ErrInvalidInput)
	}
	if len(lastName) < 1 {
		return fmt.Errorf("%w: last name is required", ErrInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if phone != "" && len(phone) < 3 {
		return fmt.Errorf("%w: phone must be at least 3 characters", ErrInvalidInput)
	}
	if countryID == "" {
		return fmt.Errorf("%w: country id is required", ErrInvalidInput)
	}
	return nil
}

// Countries lists the reference table.
func (s *Service) Countries(ctx context.Context) ([]Country, error) {
	return s.store.Countries(ctx)
}

// Country fetches one row by id.
func (s *Service) Country(ctx context.Context, id string) (Country, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Country{}, fmt.Errorf("%w: country id is required", ErrInvalidInput)
	}
	return s.store.Country(ctx, id)
}

// CountryByCode fetches one row by alpha-2 or alpha-3 code. Malformed
// codes are rejected before any query so they are distinguishable from
// a code that simply is not in the table.
func (s *Service) CountryByCode(ctx context.Context, code string) (Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !isCountryCode(code) {
		return Country{}, fmt.Errorf("%w: country code must be 2 or 3 letters", ErrInvalidInput)
	}
	return s.store.CountryByCode(ctx, code)
}

// CreateCountry validates and persists a reference row.
func (s *Service) CreateCountry(ctx context.Context, in CountryCreate) (Country, error) {
	var err error
	in.IsoName, in.IsoAlpha2, in.IsoAlpha3, err = normalizeCountryFields(in.IsoName, in.IsoAlpha2, in.IsoAlpha3)
	if err != nil {
		return Country{}, err
	}
	return s.store.CreateCountry(ctx, in)
}

// UpdateCountry validates and replaces a reference row.
func (s *Service) UpdateCountry(ctx context.Context, id string, in CountryUpdate) (Country, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Country{}, fmt.Errorf("%w: country id is required", ErrInvalidInput)
	}
	var err error
	in.IsoName, in.IsoAlpha2, in.IsoAlpha3, err = normalizeCountryFields(in.IsoName, in.IsoAlpha2, in.IsoAlpha3)
	if err != nil {
		return Country{}, err
	}
	return s.store.UpdateCountry(ctx, id, in)
}

// DeleteCountry removes a reference row. Rows referenced by users or
// boats fail on the foreign key and surface as conflict.
func (s *Service) DeleteCountry(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: country id is required", ErrInvalidInput)
	}
	return s.store.DeleteCountry(ctx, id)
}

func normalizeCountryFields(name, alpha2, alpha3 string) (string, string, string, error) {
	name = strings.TrimSpace(name)
	alpha2 = strings.ToUpper(strings.TrimSpace(alpha2))
	alpha3 = strings.ToUpper(strings.TrimSpace(alpha3))
	if name == "" {
		return "", "", "", fmt.Errorf("%w: iso name is required", ErrInvalidInput)
	}
	if len(alpha2) != 2 || !isCountryCode(alpha2) {
		return "", "", "", fmt.Errorf("%w: iso alpha-2 must be 2 letters", ErrInvalidInput)
	}
	if len(alpha3) != 3 || !isCountryCode(alpha3) {
		return "", "", "", fmt.Errorf("%w: iso alpha-3 must be 3 letters", ErrInvalidInput)
	}
	return name, alpha2, alpha3, nil
}

func isCountryCode(code string) bool {
	if len(code) != 2 && len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
