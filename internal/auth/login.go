package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"windspire.org/internal/directory"
	"windspire.org/internal/obs"
)

// Provider names stored on linked accounts.
const (
	ProviderGoogle   = "google"
	ProviderFirebase = "firebase"
)

// ExternalProfile is a verified identity returned by a federation
// adapter, either the Google code flow or a Firebase ID token.
type ExternalProfile struct {
	ProviderID    string
	Provider      string
	Email         string
	EmailVerified bool
	DisplayName   string
	GivenName     string
	FamilyName    string
	Picture       string
}

// UserDirectory is what login resolution needs from the user store.
type UserDirectory interface {
	UserByProvider(ctx context.Context, providerID, providerName string) (directory.User, error)
	UserByEmail(ctx context.Context, email string) (directory.User, error)
	CreateFederatedUser(ctx context.Context, in directory.FederatedUserCreate) (directory.User, error)
	LinkProvider(ctx context.Context, userID, providerID, providerName, avatarURL string) error
	UpdateUserNames(ctx context.Context, userID, firstName, lastName string) error
	AssignRoleByName(ctx context.Context, userID, role string) error
	RolesAndPermissions(ctx context.Context, userID string) (roles, permissions []string, err error)
	DefaultCountry(ctx context.Context) (directory.Country, error)
}

// LoginService turns a verified external profile into a local account
// with its role and permission set.
type LoginService struct {
	users UserDirectory
}

// NewLoginService constructs a LoginService over the user store.
func NewLoginService(users UserDirectory) *LoginService {
	return &LoginService{users: users}
}

// Resolve finds or creates the account behind the profile:
//
//  1. match on (provider id, provider name), refreshing names from the
//     provider when they drifted;
//  2. else match on email and link the provider onto the account;
//  3. else create the account with the default country and the user
//     role.
//
// Two first logins racing on the same email lose deterministically: the
// second insert hits the unique constraint and surfaces ErrConflict.
func (s *LoginService) Resolve(ctx context.Context, profile ExternalProfile) (directory.User, Identity, error) {
	if profile.ProviderID == "" || profile.Provider == "" {
		return directory.User{}, Identity{}, fmt.Errorf("%w: profile is missing provider identity", directory.ErrInvalidInput)
	}
	if profile.Email == "" {
		return directory.User{}, Identity{}, fmt.Errorf("%w: profile is missing email", directory.ErrInvalidInput)
	}
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))

	user, err := s.users.UserByProvider(ctx, profile.ProviderID, profile.Provider)
	switch {
	case err == nil:
		s.refreshNames(ctx, &user, profile)
	case errors.Is(err, directory.ErrNotFound):
		user, err = s.resolveByEmail(ctx, profile)
		if err != nil {
			return directory.User{}, Identity{}, err
		}
	default:
		return directory.User{}, Identity{}, err
	}

	roles, permNames, err := s.users.RolesAndPermissions(ctx, user.ID)
	if err != nil {
		return directory.User{}, Identity{}, err
	}
	identity := Identity{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        strings.TrimSpace(user.FirstName + " " + user.LastName),
		Roles:       roles,
		Permissions: NewPermissionSet(permNames),
	}
	return user, identity, nil
}

func (s *LoginService) resolveByEmail(ctx context.Context, profile ExternalProfile) (directory.User, error) {
	user, err := s.users.UserByEmail(ctx, profile.Email)
	if err == nil {
		if user.ProviderID == "" || user.ProviderName == "" {
			if err := s.users.LinkProvider(ctx, user.ID, profile.ProviderID, profile.Provider, profile.Picture); err != nil {
				return directory.User{}, err
			}
			user.ProviderID = profile.ProviderID
			user.ProviderName = profile.Provider
			user.AvatarURL = profile.Picture
		}
		return user, nil
	}
	if !errors.Is(err, directory.ErrNotFound) {
		return directory.User{}, err
	}
	return s.createAccount(ctx, profile)
}

func (s *LoginService) createAccount(ctx context.Context, profile ExternalProfile) (directory.User, error) {
	country, err := s.users.DefaultCountry(ctx)
	if err != nil {
		return directory.User{}, err
	}
	firstName, lastName := profileNames(profile)
	user, err := s.users.CreateFederatedUser(ctx, directory.FederatedUserCreate{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        profile.Email,
		CountryID:    country.ID,
		ProviderID:   profile.ProviderID,
		ProviderName: profile.Provider,
		AvatarURL:    profile.Picture,
	})
	if err != nil {
		return directory.User{}, err
	}
	if err := s.users.AssignRoleByName(ctx, user.ID, RoleUser); err != nil {
		return directory.User{}, err
	}
	return user, nil
}

// refreshNames follows the provider's display name when it has drifted
// from the stored one. A failed update does not fail the login.
func (s *LoginService) refreshNames(ctx context.Context, user *directory.User, profile ExternalProfile) {
	firstName, lastName := profileNames(profile)
	if profile.DisplayName == "" && profile.GivenName == "" {
		return
	}
	if firstName == user.FirstName && lastName == user.LastName {
		return
	}
	if err := s.users.UpdateUserNames(ctx, user.ID, firstName, lastName); err != nil {
		obs.LogError("login name refresh failed", map[string]any{"user_id": user.ID, "error": err.Error()})
		return
	}
	user.FirstName = firstName
	user.LastName = lastName
}

// profileNames prefers the provider's structured names and falls back
// to splitting the display name on whitespace: first token, remainder
// rejoined.
func profileNames(profile ExternalProfile) (string, string) {
	firstName := strings.TrimSpace(profile.GivenName)
	lastName := strings.TrimSpace(profile.FamilyName)
	if firstName != "" || lastName != "" {
		return firstName, lastName
	}
	fields := strings.Fields(profile.DisplayName)
	switch len(fields) {
	case 0:
		// Nothing usable from the provider; derive a readable stand-in
		// from the email local part.
		local, _, _ := strings.Cut(profile.Email, "@")
		if local == "" {
			local = "member"
		}
		return local, "member"
	case 1:
		return fields[0], fields[0]
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
