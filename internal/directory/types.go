// Package directory holds the user and country domain: types, input
// validation, and the storage contract the Postgres layer implements.
package directory

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// Country is a reference row from the ISO table.
type Country struct {
	ID        string `json:"id"`
	IsoName   string `json:"iso_name"`
	IsoAlpha2 string `json:"iso_alpha_2"`
	IsoAlpha3 string `json:"iso_alpha_3"`
}

// User is a registered account. Provider fields are set once the account
// has been linked to a federated identity.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	CountryID    string    `json:"country_id"`
	ProviderID   string    `json:"provider_id,omitempty"`
	ProviderName string    `json:"provider_name,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserWithCountry carries the joined country name for list views.
type UserWithCountry struct {
	User
	IsoName string `json:"iso_name,omitempty"`
}

// UserCreate is the input for a directly created user.
type UserCreate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CountryID string `json:"country_id"`
}

// UserUpdate replaces every mutable user field.
type UserUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CountryID string `json:"country_id"`
}

// FederatedUserCreate is the input when a login creates the account.
type FederatedUserCreate struct {
	FirstName    string
	LastName     string
	Email        string
	CountryID    string
	ProviderID   string
	ProviderName string
	AvatarURL    string
}

// CountryCreate is the input for a new reference row.
type CountryCreate struct {
	IsoName   string `json:"iso_name"`
	IsoAlpha2 string `json:"iso_alpha_2"`
	IsoAlpha3 string `json:"iso_alpha_3"`
}

// CountryUpdate replaces every country field.
type CountryUpdate struct {
	IsoName   string `json:"iso_name"`
	IsoAlpha2 string `json:"iso_alpha_2"`
	IsoAlpha3 string `json:"iso_alpha_3"`
}
