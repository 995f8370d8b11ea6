package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"carcare-backend/internal/config"
	"carcare-backend/internal/db"
	"carcare-backend/internal/handler"
	"carcare-backend/internal/mailer"
	"carcare-backend/internal/repository"
	"carcare-backend/internal/server"
	"carcare-backend/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		logger.Error("failed to migrate schema", "err", err)
		os.Exit(1)
	}

	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	locationRepo := repository.LocationRepository{DB: pg}
	sessionRepo := repository.SessionRepository{DB: pg}
	washRepo := repository.CarWashRepository{DB: pg}
	transferRepo := repository.CarTransferRepository{DB: pg}
	payrollRepo := repository.PayrollRepository{DB: pg}
	todayPlanRepo := repository.TodayPlanRepository{DB: pg}
	dashboardRepo := repository.DashboardRepository{DB: pg}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Mailer: mail, Logger: logger}
	sessionSvc := service.SessionService{Sessions: sessionRepo, Users: userRepo}
	pricingSvc := service.PricingService{Locations: locationRepo, Washes: washRepo, Transfers: transferRepo}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	userHandler := handler.UserHandler{Repo: userRepo, PageSize: cfg.PageSize}
	locationHandler := handler.LocationHandler{Repo: locationRepo}
	sessionHandler := handler.SessionHandler{Service: &sessionSvc, Repo: sessionRepo, PageSize: cfg.PageSize}
	washHandler := handler.CarWashHandler{Service: &pricingSvc, Repo: washRepo, PageSize: cfg.PageSize}
	transferHandler := handler.CarTransferHandler{Service: &pricingSvc, Repo: transferRepo, PageSize: cfg.PageSize}
	payrollHandler := handler.PayrollHandler{Repo: payrollRepo, Users: userRepo, Mailer: mail, Logger: logger, PageSize: cfg.PageSize}
	dashboardHandler := handler.DashboardHandler{Repo: dashboardRepo}
	todayPlanHandler := handler.TodayPlanHandler{Repo: todayPlanRepo}
	docsHandler := handler.DocsHandler{OpenAPIPath: "api/openapi.yaml"}

	router := server.NewRouter(cfg, logger,
		healthHandler,
		authHandler,
		userHandler,
		locationHandler,
		sessionHandler,
		washHandler,
		transferHandler,
		payrollHandler,
		dashboardHandler,
		todayPlanHandler,
		docsHandler,
	)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}
