package httpapi

import (
	"net/http"

	"windspire.org/internal/audit"
	"windspire.org/internal/fleet"
)

func (a *API) handleListBoats(w http.ResponseWriter, r *http.Request) {
	boats, err := a.fleet.Boats(r.Context())
	if err != nil {
		handleFleetError(w, r, err)
		return
	}
	if boats == nil {
		boats = []fleet.Boat{}
	}
	writeData(w, http.StatusOK, boats)
}

func (a *API) handleGetBoat(w http.ResponseWriter, r *http.Request) {
	boat, err := a.fleet.Boat(r.Context(), r.PathValue("id"))
	if err != nil {
		handleFleetError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, boat)
}

func (a *API) handleCreateBoat(w http.ResponseWriter, r *http.Request) {
	var req fleet.BoatCreate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	boat, err := a.fleet.CreateBoat(r.Context(), req)
	if err != nil {
		handleFleetError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "fleet.boat.create", map[string]any{
		"target_id": boat.ID,
		"name":      boat.Name,
	})
	writeData(w, http.StatusCreated, boat)
}

// handleCreateMyBoat creates a boat and assigns the caller as its
// owner. Any authenticated user may register their own boat.
func (a *API) handleCreateMyBoat(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req fleet.BoatCreate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	boat, err := a.fleet.CreateOwnedBoat(r.Context(), req, id.UserID)
	if err != nil {
		handleFleetError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "fleet.boat.create_owned", map[string]any{
		"target_id": boat.ID,
		"name":      boat.Name,
	})
	writeData(w, http.StatusCreated, boat)
}

func (a *API) handleUpdateBoat(w http.ResponseWriter, r *http.Request) {
	var req fleet.BoatUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	boat, err := a.fleet.UpdateBoat(r.Context(), r.PathValue("id"), req)
	if err != nil {
		handleFleetError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "fleet.boat.update", map[string]any{
		"target_id": boat.ID,
	})
	writeData(w, http.StatusOK, boat)
}

func (a *API) handleDeleteBoat(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.fleet.DeleteBoat(r.Context(), id); err != nil {
		handleFleetError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "fleet.boat.delete", map[string]any{
		"target_id": id,
	})
	writeData(w, http.StatusOK, map[string]any{
		"message": "Boat deleted",
	})
}

func (a *API) handleBoatOwners(w http.ResponseWriter, r *http.Request) {
	if _, ok := identity(w, r); !ok {
		return
	}
	owners, err := a.fleet.OwnersForBoat(r.Context(), r.PathValue("id"))
	if err != nil {
		handleFleetError(w, r, err)
		return
	}
	if owners == nil {
		owners = []fleet.Owner{}
	}
	writeData(w, http.StatusOK, owners)
}

func (a *API) handleAddOwner(w http.ResponseWriter, r *http.Request) {
	if _, ok := identity(w, r); !ok {
		return
	}
	boatID, userID := r.PathValue("boatID"), r.PathValue("userID")
	if err := a.fleet.AddOwner(r.Context(), boatID, userID); err != nil {
		handleFleetError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "fleet.owner.add", map[string]any{
		"boat_id":   boatID,
		"target_id": userID,
	})
	writeData(w, http.StatusCreated, map[string]any{
		"message": "Owner added",
	})
}

func (a *API) handleRemoveOwner(w http.ResponseWriter, r *http.Request) {
	if _, ok := identity(w, r); !ok {
		return
	}
	boatID, userID := r.PathValue("boatID"), r.PathValue("userID")
	if err := a.fleet.RemoveOwner(r.Context(), boatID, userID); err != nil {
		handleFleetError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "fleet.owner.remove", map[string]any{
		"boat_id":   boatID,
		"target_id": userID,
	})
	writeData(w, http.StatusOK, map[string]any{
		"message": "Owner removed",
	})
}
