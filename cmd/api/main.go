package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"finobs/internal/auth"
	"finobs/internal/config"
	"finobs/internal/database"
	"finobs/internal/database/migration"
	handlers "finobs/internal/http/handler"
	"finobs/internal/http/middleware"
	"finobs/internal/otel"
	"finobs/internal/repository/postgres"
	"finobs/internal/service"
	"finobs/internal/storage"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	// Tracing is optional; a failed exporter setup must not block startup.
	shutdownTracing, err := otel.Init(context.Background(), time.UTC)
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	// PostgreSQL connection (pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(context.Background(), db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	// Repositories and services
	profileRepo := postgres.NewProfilePostgres(db)
	docRepo := postgres.NewDocumentPostgres(db)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authSvc := service.NewAuthService(profileRepo, tokens, log)
	dashSvc := service.NewDashboardService(
		auth.ContextProvider{},
		objStore,
		profileRepo,
		docRepo,
		service.UploadPolicy{
			MaxDocuments:      cfg.Upload.MaxDocuments,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
		},
		log,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Global middleware: request id, structured request logs, traces, metrics.
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up metrics")
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, authSvc, dashSvc, middleware.Auth(tokens))

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("starting server")

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
