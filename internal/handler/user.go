package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"carcare-backend/internal/domain"
	"carcare-backend/internal/repository"
)

type UserHandler struct {
	Repo     repository.UserRepository
	PageSize int
}

func (h UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.list)
	r.Get("/users/{id}", h.get)
	r.Put("/users/{id}", h.update)
	r.Delete("/users/{id}", h.softDelete)
	r.Post("/users/{id}/restore", h.restore)
	r.Delete("/users/{id}/permanent", h.deletePermanently)
}

func (h UserHandler) list(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r, h.PageSize)
	filter := repository.UserFilter{
		Search:  r.URL.Query().Get("search"),
		Deleted: r.URL.Query().Get("deleted") == "true",
		Page:    page,
		Limit:   limit,
	}
	if roles := r.URL.Query().Get("roles"); roles != "" {
		filter.Roles = strings.Split(roles, ",")
	}
	if active := r.URL.Query().Get("active"); active != "" {
		v := active == "true"
		filter.Active = &v
	}

	users, total, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]map[string]any, 0, len(users))
	for _, u := range users {
		items = append(items, userPayload(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users":      items,
		"total":      total,
		"numOfPages": repository.NumPages(total, limit),
	})
}

func (h UserHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	user, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userPayload(*user))
}

func (h UserHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		FirstName   string  `json:"firstName"`
		LastName    string  `json:"lastName"`
		Email       string  `json:"email"`
		Phone       string  `json:"phone"`
		Street      string  `json:"street"`
		PostalCode  string  `json:"postalCode"`
		Place       string  `json:"place"`
		AHV         string  `json:"ahv"`
		Description string  `json:"description"`
		Role        string  `json:"role"`
		HourlyPay   float64 `json:"hourlyPay"`
		LocationID  *int64  `json:"locationId"`
		Active      bool    `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	role := domain.UserRole(req.Role)
	if req.FirstName == "" || req.Email == "" || !domain.ValidRole(role) {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	user, err := h.Repo.Update(r.Context(), id, repository.UpdateUserParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       strings.ToLower(req.Email),
		Phone:       req.Phone,
		Street:      req.Street,
		PostalCode:  req.PostalCode,
		Place:       req.Place,
		AHV:         req.AHV,
		Description: req.Description,
		Role:        role,
		HourlyPay:   req.HourlyPay,
		LocationID:  req.LocationID,
		Active:      req.Active,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailInUse) {
			writeError(w, http.StatusConflict, "email already in use")
			return
		}
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userPayload(*user))
}

func (h UserHandler) softDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.SoftDelete(r.Context(), id); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h UserHandler) restore(w http.ResponseWriter, r *http.Request) {
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

// deletePermanently only removes users that are already soft-deleted.
func (h UserHandler) deletePermanently(w http.ResponseWriter, r *http.Request) {
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

func userPayload(u domain.User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"firstName":   u.FirstName,
		"lastName":    u.LastName,
		"fullName":    u.FullName(),
		"email":       u.Email,
		"phone":       u.Phone,
		"street":      u.Street,
		"postalCode":  u.PostalCode,
		"place":       u.Place,
		"ahv":         u.AHV,
		"description": u.Description,
		"role":        u.Role,
		"hourlyPay":   u.HourlyPay,
		"locationId":  u.LocationID,
		"active":      u.Active,
		"createdAt":   u.CreatedAt,
		"deletedAt":   u.DeletedAt,
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
