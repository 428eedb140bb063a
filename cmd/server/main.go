package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/regsite/registry-backend/internal/config"
	"github.com/regsite/registry-backend/internal/database"
	"github.com/regsite/registry-backend/internal/handler"
	"github.com/regsite/registry-backend/internal/logger"
	"github.com/regsite/registry-backend/internal/repository"
	"github.com/regsite/registry-backend/internal/router"
	"github.com/regsite/registry-backend/internal/service"
	"github.com/regsite/registry-backend/internal/validator"
	"github.com/regsite/registry-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Registry Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Pools for co-located peer registries, opened lazily per schema.
	schemaPools := database.NewSchemaPools(cfg, log)
	defer schemaPools.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	surveyRepo := repository.NewSurveyRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	statusRepo := repository.NewUserSurveyRepository(pool)
	consentRepo := repository.NewConsentRepository(pool)
	registryRepo := repository.NewRegistryRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	txRunner := &service.PgxTxRunner{Pool: pool}

	authService := service.NewAuthService(cfg, userRepo)
	answerService := service.NewAnswerService(surveyRepo, answerRepo, statusRepo, consentRepo, txRunner, rdb, cfg, log)
	consentService := service.NewConsentService(consentRepo)
	searchService := service.NewSearchService(answerRepo, userRepo)
	federationService := service.NewFederationService(
		registryRepo,
		searchService,
		&service.PgxSchemaStores{Pools: schemaPools},
		service.NewHTTPRemoteClient(),
		cfg,
		log,
	)
	exportService := service.NewExportService(rdb, cfg)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userRepo),
		Answer:   handler.NewAnswerHandler(answerService, exportService),
		Consent:  handler.NewConsentHandler(consentService),
		Cohort:   handler.NewCohortHandler(searchService, federationService),
		Registry: handler.NewRegistryHandler(registryRepo),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	exportWorker := worker.NewExportWorker(answerService, rdb, cfg, log)
	go exportWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
