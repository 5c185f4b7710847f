package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/agrwalh/aidfusion-auth/config"
	"github.com/agrwalh/aidfusion-auth/db"
	"github.com/agrwalh/aidfusion-auth/internal/auth/handler"
	repo "github.com/agrwalh/aidfusion-auth/internal/auth/repository/postgres"
	"github.com/agrwalh/aidfusion-auth/internal/auth/service"
	"github.com/agrwalh/aidfusion-auth/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	ctx := context.Background()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error(ctx, "migrations failed", "err", err)
		os.Exit(1)
	}

	dbPool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		logger.Error(ctx, "database connection failed", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	userRepo := repo.NewPostgresRepository(dbPool)
	twoFactorRepo := repo.NewTwoFactorRepository(dbPool)

	sessionService := service.NewSessionService(cfg.JWTSecret, cfg.SessionLifetime)
	twoFactorService := service.NewTwoFactorService(twoFactorRepo, cfg.TOTPIssuer)
	userService := service.NewUserService(userRepo, twoFactorService, sessionService, logger)

	authHandler := handler.NewAuthHandler(userService, sessionService, cfg.IsProduction())
	twoFactorHandler := handler.NewTwoFactorHandler(twoFactorService)
	adminHandler := handler.NewAdminHandler(userService)

	app := fiber.New()
	handler.RegisterRoutes(app, sessionService, authHandler, twoFactorHandler, adminHandler)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logger.Info(ctx, "shutting down")
		_ = app.Shutdown()
	}()

	logger.Info(ctx, "starting server", "port", cfg.Port, "env", cfg.Env)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error(ctx, "server stopped", "err", err)
		os.Exit(1)
	}
}
