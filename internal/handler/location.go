package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carcare-backend/internal/domain"
	"carcare-backend/internal/repository"
	"carcare-backend/internal/server/authctx"
)

type LocationHandler struct {
	Repo repository.LocationRepository
}

func (h LocationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/locations", h.list)
	r.Get("/locations/{id}", h.get)
}

func (h LocationHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/locations", h.create)
	r.Put("/locations/{id}", h.update)
	r.Delete("/locations/{id}", h.remove)
	r.Post("/locations/{id}/restore", h.restore)
	r.Delete("/locations/{id}/permanent", h.removePermanently)
}

type locationRequest struct {
	LocationName string                 `json:"locationName"`
	LocationType string                 `json:"locationType"`
	CarTypes     []domain.CarTypePrices `json:"carTypes"`
}

// validate enforces the price-table write rules: unique non-empty car type
// names and non-negative prices.
func (req locationRequest) validate() bool {
	if req.LocationName == "" || !domain.ValidLocationType(domain.LocationType(req.LocationType)) {
		return false
	}
	seen := make(map[string]struct{}, len(req.CarTypes))
	for _, ct := range req.CarTypes {
		if ct.Name == "" {
			return false
		}
		if _, dup := seen[ct.Name]; dup {
			return false
		}
		seen[ct.Name] = struct{}{}
		prices := []*float64{
			ct.Wash.Outside, ct.Wash.Inside, ct.Wash.OutInside,
			ct.Wash.Motorrad, ct.Wash.Turnaround, ct.Wash.QuickTurnaround,
			ct.Transfer.HZP, ct.Transfer.HBP, ct.Transfer.APDT,
			ct.Transfer.Base, ct.Transfer.PerKm,
		}
		for _, p := range prices {
			if p != nil && *p < 0 {
				return false
			}
		}
	}
	return true
}

func (h LocationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !req.validate() {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	user := authctx.FromContext(r.Context())
	loc := domain.Location{
		LocationName: req.LocationName,
		LocationType: domain.LocationType(req.LocationType),
		CarTypes:     req.CarTypes,
	}
	if user != nil {
		loc.CreatedBy = user.ID
	}
	created, err := h.Repo.Create(r.Context(), loc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, locationPayload(*created, 0))
}

func (h LocationHandler) list(w http.ResponseWriter, r *http.Request) {
	locations, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]map[string]any, 0, len(locations))
	for _, lc := range locations {
		items = append(items, locationPayload(lc.Location, lc.UsersCount))
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": items})
}

func (h LocationHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	loc, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locationPayload(*loc, 0))
}

func (h LocationHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !req.validate() {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	loc, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	loc.LocationName = req.LocationName
	loc.LocationType = domain.LocationType(req.LocationType)
	loc.CarTypes = req.CarTypes

	updated, err := h.Repo.Update(r.Context(), *loc)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locationPayload(*updated, 0))
}

func (h LocationHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h LocationHandler) restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Restore(r.Context(), id); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h LocationHandler) removePermanently(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.DeletePermanently(r.Context(), id); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func locationPayload(l domain.Location, userCount int64) map[string]any {
	return map[string]any{
		"id":           l.ID,
		"locationName": l.LocationName,
		"locationType": l.LocationType,
		"carTypes":     l.CarTypes,
		"userCount":    userCount,
		"createdAt":    l.CreatedAt,
	}
}
