package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"

	"carcare-backend/internal/config"
	"carcare-backend/internal/domain"
	"carcare-backend/internal/handler"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	users handler.UserHandler,
	locations handler.LocationHandler,
	sessions handler.SessionHandler,
	washes handler.CarWashHandler,
	transfers handler.CarTransferHandler,
	payrolls handler.PayrollHandler,
	dashboard handler.DashboardHandler,
	todayPlan handler.TodayPlanHandler,
	docs handler.DocsHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	docs.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// every signed-in employee
		pr.Group(func(ur chi.Router) {
			auth.RegisterProtectedRoutes(ur)
			sessions.RegisterRoutes(ur)
			washes.RegisterRoutes(ur)
			transfers.RegisterRoutes(ur)
			locations.RegisterRoutes(ur)
			todayPlan.RegisterRoutes(ur)
		})
		// back office (manager/admin)
		pr.Group(func(mr chi.Router) {
			mr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager))
			users.RegisterRoutes(mr)
			sessions.RegisterManagerRoutes(mr)
			washes.RegisterManagerRoutes(mr)
			transfers.RegisterManagerRoutes(mr)
			dashboard.RegisterRoutes(mr)
			todayPlan.RegisterManagerRoutes(mr)
		})
		// accounting (accountant/manager/admin)
		pr.Group(func(ar chi.Router) {
			ar.Use(RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleAccountant))
			payrolls.RegisterRoutes(ar)
		})
		// admin only
		pr.Group(func(adm chi.Router) {
			adm.Use(RequireRole(domain.RoleAdmin))
			auth.RegisterAdminRoutes(adm)
			locations.RegisterAdminRoutes(adm)
		})
	})

	return r
}
