package fleet

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"windspire.org/internal/obs"
)

// Sail numbers are a three-letter national prefix and one to five
// digits, e.g. NOR123.
var sailNumberPattern = regexp.MustCompile(`^[A-Z]{3}\d{1,5}$`)

// Service validates fleet input and delegates persistence to the store.
type Service struct {
	store Store
}

// NewService constructs a Service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Boats lists every boat.
func (s *Service) Boats(ctx context.Context) ([]Boat, error) {
	return s.store.Boats(ctx)
}

// Boat fetches a single boat.
func (s *Service) Boat(ctx context.Context, id string) (Boat, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Boat{}, fmt.Errorf("%w: boat id is required", ErrInvalidInput)
	}
	return s.store.Boat(ctx, id)
}

// CreateBoat validates and persists a boat with no owner.
func (s *Service) CreateBoat(ctx context.Context, in BoatCreate) (Boat, error) {
	normalized, err := normalizeBoatFields(in.Name, in.Brand, in.Model, in.SailNumber, in.CountryID)
	if err != nil {
		return Boat{}, err
	}
	in.Name, in.Brand, in.Model, in.SailNumber, in.CountryID = normalized.name, normalized.brand, normalized.model, normalized.sailNumber, normalized.countryID
	return s.store.CreateBoat(ctx, in)
}

// CreateOwnedBoat creates a boat and assigns ownerID as its owner. The
// two writes are separate statements: if the assignment fails the boat
// still exists and the failure is only logged. Callers see the created
// boat either way.
func (s *Service) CreateOwnedBoat(ctx context.Context, in BoatCreate, ownerID string) (Boat, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Boat{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	boat, err := s.CreateBoat(ctx, in)
	if err != nil {
		return Boat{}, err
	}
	if err := s.store.AddOwner(ctx, boat.ID, ownerID); err != nil {
		obs.LogError("owner assignment after boat create failed", map[string]any{
			"boat_id": boat.ID,
			"user_id": ownerID,
			"error":   err.Error(),
		})
	}
	return boat, nil
}

// UpdateBoat validates and fully replaces a boat's mutable fields.
func (s *Service) UpdateBoat(ctx context.Context, id string, in BoatUpdate) (Boat, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Boat{}, fmt.Errorf("%w: boat id is required", ErrInvalidInput)
	}
	normalized, err := normalizeBoatFields(in.Name, in.Brand, in.Model, in.SailNumber, in.CountryID)
	if err != nil {
		return Boat{}, err
	}
	in.Name, in.Brand, in.Model, in.SailNumber, in.CountryID = normalized.name, normalized.brand, normalized.model, normalized.sailNumber, normalized.countryID
	return s.store.UpdateBoat(ctx, id, in)
}

// DeleteBoat removes a boat. Ownership links cascade in the schema.
func (s *Service) DeleteBoat(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: boat id is required", ErrInvalidInput)
	}
	return s.store.DeleteBoat(ctx, id)
}

// AddOwner links userID as an owner of boatID. Duplicate pairs are a
// no-op at the store level.
func (s *Service) AddOwner(ctx context.Context, boatID, userID string) error {
	boatID, userID = strings.TrimSpace(boatID), strings.TrimSpace(userID)
	if boatID == "" || userID == "" {
		return fmt.Errorf("%w: boat id and user id are required", ErrInvalidInput)
	}
	return s.store.AddOwner(ctx, boatID, userID)
}

// RemoveOwner unlinks userID from boatID.
func (s *Service) RemoveOwner(ctx context.Context, boatID, userID string) error {
	boatID, userID = strings.TrimSpace(boatID), strings.TrimSpace(userID)
	if boatID == "" || userID == "" {
		return fmt.Errorf("%w: boat id and user id are required", ErrInvalidInput)
	}
	return s.store.RemoveOwner(ctx, boatID, userID)
}

// OwnersForBoat lists the owners of a boat with their country name.
func (s *Service) OwnersForBoat(ctx context.Context, boatID string) ([]Owner, error) {
	boatID = strings.TrimSpace(boatID)
	if boatID == "" {
		return nil, fmt.Errorf("%w: boat id is required", ErrInvalidInput)
	}
	return s.store.OwnersForBoat(ctx, boatID)
}

// BoatsForUser lists the boats a user owns.
func (s *Service) BoatsForUser(ctx context.Context, userID string) ([]Boat, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.BoatsForUser(ctx, userID)
}

type boatFields struct {
	name, brand, model, sailNumber, countryID string
}

func normalizeBoatFields(name, brand, model, sailNumber, countryID string) (boatFields, error) {
	f := boatFields{
		name:       strings.TrimSpace(name),
		brand:      strings.TrimSpace(brand),
		model:      strings.TrimSpace(model),
		sailNumber: strings.ToUpper(strings.TrimSpace(sailNumber)),
		countryID:  strings.TrimSpace(countryID),
	}
	if len(f.name) < 2 {
		return boatFields{}, fmt.Errorf("%w: boat name must be at least 2 characters", ErrInvalidInput)
	}
	if f.sailNumber != "" && !sailNumberPattern.MatchString(f.sailNumber) {
		return boatFields{}, fmt.Errorf("%w: sail number must match a 3-letter prefix and 1-5 digits", ErrInvalidInput)
	}
	return f, nil
}
