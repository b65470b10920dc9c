// Package fleet holds the boat and ownership domain.
package fleet

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// Boat is a registered vessel.
type Boat struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Brand      string `json:"brand,omitempty"`
	Model      string `json:"model,omitempty"`
	SailNumber string `json:"sail_number,omitempty"`
	CountryID  string `json:"country_id,omitempty"`
}

// BoatCreate is the input for a new boat.
type BoatCreate struct {
	Name       string `json:"name"`
	Brand      string `json:"brand,omitempty"`
	Model      string `json:"model,omitempty"`
	SailNumber string `json:"sail_number,omitempty"`
	CountryID  string `json:"country_id,omitempty"`
}

// BoatUpdate replaces every mutable boat field.
type BoatUpdate struct {
	Name       string `json:"name"`
	Brand      string `json:"brand,omitempty"`
	Model      string `json:"model,omitempty"`
	SailNumber string `json:"sail_number,omitempty"`
	CountryID  string `json:"country_id,omitempty"`
}

// Owner is a boat owner with enough user detail for the owners view.
type Owner struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CountryID string `json:"country_id"`
	IsoName   string `json:"iso_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
