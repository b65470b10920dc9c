package fleet

import "context"

// Store is the persistence contract for boats and ownership links.
// Implementations map missing rows to ErrNotFound, duplicate pairs and
// unique violations to ErrConflict, and broken foreign keys to
// ErrNotFound.
type Store interface {
	Boats(ctx context.Context) ([]Boat, error)
	Boat(ctx context.Context, id string) (Boat, error)
	CreateBoat(ctx context.Context, in BoatCreate) (Boat, error)
	UpdateBoat(ctx context.Context, id string, in BoatUpdate) (Boat, error)
	DeleteBoat(ctx context.Context, id string) error

	AddOwner(ctx context.Context, boatID, userID string) error
	RemoveOwner(ctx context.Context, boatID, userID string) error
	OwnersForBoat(ctx context.Context, boatID string) ([]Owner, error)
	BoatsForUser(ctx context.Context, userID string) ([]Boat, error)
}
