package httpapi

import (
	"net/http"

	"windspire.org/internal/audit"
	"windspire.org/internal/directory"
)

func (a *API) handleListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := a.directory.Countries(r.Context())
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	if countries == nil {
		countries = []directory.Country{}
	}
	writeData(w, http.StatusOK, countries)
}

func (a *API) handleGetCountry(w http.ResponseWriter, r *http.Request) {
	country, err := a.directory.Country(r.Context(), r.PathValue("id"))
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, country)
}

func (a *API) handleGetCountryByCode(w http.ResponseWriter, r *http.Request) {
	country, err := a.directory.CountryByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, country)
}

func (a *API) handleCreateCountry(w http.ResponseWriter, r *http.Request) {
	var req directory.CountryCreate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	country, err := a.directory.CreateCountry(r.Context(), req)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.country.create", map[string]any{
		"target_id": country.ID,
		"alpha_2":   country.IsoAlpha2,
	})
	writeData(w, http.StatusCreated, country)
}

func (a *API) handleUpdateCountry(w http.ResponseWriter, r *http.Request) {
	var req directory.CountryUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	country, err := a.directory.UpdateCountry(r.Context(), r.PathValue("id"), req)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.country.update", map[string]any{
		"target_id": country.ID,
	})
	writeData(w, http.StatusOK, country)
}

func (a *API) handleDeleteCountry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.directory.DeleteCountry(r.Context(), id); err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.country.delete", map[string]any{
		"target_id": id,
	})
	writeData(w, http.StatusOK, map[string]any{
		"message": "Country deleted",
	})
}
