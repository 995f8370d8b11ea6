package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"carcare-backend/internal/ports"
)

// HealthHandler exposes a readiness probe that pings the database.
type HealthHandler struct {
	DB ports.HealthChecker
}

func (h HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

func (h HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	database := "up"
	status := http.StatusOK
	if err := h.DB.Health(ctx); err != nil {
		database = "down"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]string{
		"database": database,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
