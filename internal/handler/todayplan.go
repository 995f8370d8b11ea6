package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carcare-backend/internal/domain"
	"carcare-backend/internal/repository"
	"carcare-backend/internal/server/authctx"
)

// TodayPlanHandler exposes the single shared daily staffing plan.
type TodayPlanHandler struct {
	Repo repository.TodayPlanRepository
}

func (h TodayPlanHandler) RegisterRoutes(r chi.Router) {
	r.Get("/today-plan", h.get)
}

func (h TodayPlanHandler) RegisterManagerRoutes(r chi.Router) {
	r.Put("/today-plan", h.upsert)
}

func (h TodayPlanHandler) get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Repo.Get(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"todayPlan": nil})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"todayPlan": map[string]any{
		"id":           plan.ID,
		"users":        plan.Users,
		"createdBy":    plan.AuthorName,
		"lastModified": plan.UpdatedAt,
	}})
}

// upsert replaces the plan; the first write creates it.
func (h TodayPlanHandler) upsert(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Users map[string]any `json:"users"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(req.Users) == 0 {
		writeError(w, http.StatusBadRequest, "missing users")
		return
	}

	plan, err := h.Repo.Get(r.Context())
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := h.Repo.Create(r.Context(), req.Users, user.ID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
		return
	}

	if err := h.Repo.Update(r.Context(), plan.ID, req.Users, user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
