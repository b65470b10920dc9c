package httpapi

import (
	"net/http"

	"windspire.org/internal/audit"
	"windspire.org/internal/directory"
	"windspire.org/internal/fleet"
	"windspire.org/internal/obs"
)

type userProfileResponse struct {
	User      directory.User `json:"user"`
	Boats     []fleet.Boat   `json:"boats"`
	BoatCount int            `json:"boat_count"`
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.directory.Users(r.Context())
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	if users == nil {
		users = []directory.UserWithCountry{}
	}
	writeData(w, http.StatusOK, users)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.directory.User(r.Context(), r.PathValue("id"))
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

// handleUserProfile joins the account with its boats. A failed boats
// load degrades to an empty list so the profile still renders.
func (a *API) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user, err := a.directory.User(r.Context(), id)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	boats, err := a.fleet.BoatsForUser(r.Context(), id)
	if err != nil {
		obs.LogError("profile boats load failed", map[string]any{
			"user_id": id,
			"error":   err.Error(),
		})
		boats = nil
	}
	if boats == nil {
		boats = []fleet.Boat{}
	}
	writeData(w, http.StatusOK, userProfileResponse{
		User:      user,
		Boats:     boats,
		BoatCount: len(boats),
	})
}

func (a *API) handleUserBoats(w http.ResponseWriter, r *http.Request) {
	boats, err := a.fleet.BoatsForUser(r.Context(), r.PathValue("id"))
	if err != nil {
		handleFleetError(w, r, err)
		return
	}
	if boats == nil {
		boats = []fleet.Boat{}
	}
	writeData(w, http.StatusOK, boats)
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req directory.UserCreate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := a.directory.CreateUser(r.Context(), req)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.user.create", map[string]any{
		"target_id": user.ID,
		"email":     user.Email,
	})
	writeData(w, http.StatusCreated, user)
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req directory.UserUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := a.directory.UpdateUser(r.Context(), r.PathValue("id"), req)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.user.update", map[string]any{
		"target_id": user.ID,
	})
	writeData(w, http.StatusOK, user)
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.directory.DeleteUser(r.Context(), id); err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.user.delete", map[string]any{
		"target_id": id,
	})
	writeData(w, http.StatusOK, map[string]any{
		"message": "User deleted",
	})
}
